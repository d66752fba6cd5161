// Package credential persists the OAuth2 token that authorises uploads.
package credential

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// ErrNotFound is returned by Load when nothing has been cached yet.
var ErrNotFound = errors.New("credential not found")

type Store interface {
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, token *oauth2.Token) error
}
