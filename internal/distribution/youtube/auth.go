package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	ytapi "google.golang.org/api/youtube/v3"

	"uptube/internal/credential"
	"uptube/internal/distribution"
)

var ErrNoClientCredentials = errors.New("YouTube OAuth client credentials are not configured")

var errAuthorizationDisabled = errors.New("no usable YouTube credential cached and interactive authorization is disabled; run `uptube auth youtube`")

var scopes = []string{ytapi.YoutubeUploadScope}

// Authorizer obtains a fresh token through user consent.
type Authorizer interface {
	Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error)
}

type TokenState int

const (
	TokenMissing TokenState = iota
	TokenValid
	TokenRefreshable
	TokenExpired
)

func (s TokenState) String() string {
	switch s {
	case TokenValid:
		return "valid"
	case TokenRefreshable:
		return "expired, refreshable"
	case TokenExpired:
		return "expired"
	default:
		return "missing"
	}
}

// Auth owns the token lifecycle: reuse a valid cached token, refresh an
// expired one, fall back to the Authorizer, and persist whatever changed.
type Auth struct {
	config     *oauth2.Config
	store      credential.Store
	authorizer Authorizer

	mu sync.Mutex
}

// OAuthConfig prefers a Google client-secret JSON document and falls back to
// a bare client id and secret.
func OAuthConfig(secretJSON []byte, clientID, clientSecret string) (*oauth2.Config, error) {
	if len(secretJSON) > 0 {
		config, err := google.ConfigFromJSON(secretJSON, scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse client secret: %w", err)
		}
		return config, nil
	}

	if clientID == "" || clientSecret == "" {
		return nil, ErrNoClientCredentials
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}, nil
}

// NewAuth accepts a nil config, in which case every token request fails with
// ErrNoClientCredentials. A nil authorizer disables interactive consent.
func NewAuth(config *oauth2.Config, store credential.Store, authorizer Authorizer) *Auth {
	return &Auth{
		config:     config,
		store:      store,
		authorizer: authorizer,
	}
}

func (a *Auth) Client(ctx context.Context) (*http.Client, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}

	return a.config.Client(ctx, token), nil
}

// Token returns a usable token, refreshing or running consent as needed. The
// lock is held through consent so concurrent callers share one flow.
func (a *Auth) Token(ctx context.Context) (*oauth2.Token, error) {
	if a.config == nil {
		return nil, distribution.NewError(distribution.KindAuth, ErrNoClientCredentials)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	token, err := a.store.Load(ctx)
	switch {
	case err == nil && token.Valid():
		return token, nil
	case err == nil && token.RefreshToken != "":
		token, err = a.refresh(ctx, token)
	case err == nil || errors.Is(err, credential.ErrNotFound):
		token, err = a.authorize(ctx)
	default:
		return nil, distribution.NewError(distribution.KindAuth, err)
	}
	if err != nil {
		return nil, err
	}

	if err := a.save(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Authorize runs the interactive flow regardless of what is cached.
func (a *Auth) Authorize(ctx context.Context) (*oauth2.Token, error) {
	if a.config == nil {
		return nil, distribution.NewError(distribution.KindAuth, ErrNoClientCredentials)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	token, err := a.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.save(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// State reports what a call to Token would do, without any network traffic.
func (a *Auth) State(ctx context.Context) (TokenState, error) {
	token, err := a.store.Load(ctx)
	switch {
	case errors.Is(err, credential.ErrNotFound):
		return TokenMissing, nil
	case err != nil:
		return TokenMissing, err
	case token.Valid():
		return TokenValid, nil
	case token.RefreshToken != "":
		return TokenRefreshable, nil
	default:
		return TokenExpired, nil
	}
}

func (a *Auth) refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	slog.Debug("Refreshing YouTube token")

	refreshed, err := a.config.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, distribution.Errorf(distribution.KindAuth, "failed to refresh token: %w", err)
	}
	return refreshed, nil
}

func (a *Auth) authorize(ctx context.Context) (*oauth2.Token, error) {
	if a.authorizer == nil {
		return nil, distribution.NewError(distribution.KindAuth, errAuthorizationDisabled)
	}

	slog.Info("Starting interactive YouTube authorization")

	token, err := a.authorizer.Authorize(ctx, a.config)
	if err != nil {
		return nil, distribution.Errorf(distribution.KindAuth, "authorization failed: %w", err)
	}
	return token, nil
}

func (a *Auth) save(ctx context.Context, token *oauth2.Token) error {
	if err := a.store.Save(ctx, token); err != nil {
		return distribution.NewError(distribution.KindIO, err)
	}
	return nil
}
