package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"golang.org/x/oauth2"
)

var _ Authorizer = (*LocalServerFlow)(nil)

// LocalServerFlow is the installed-app consent flow: a loopback server on an
// ephemeral port receives the authorization code after the user approves
// access in a browser.
type LocalServerFlow struct {
	Host    string
	Timeout time.Duration
	OpenURL func(url string) error
}

func NewLocalServerFlow(host string, timeout time.Duration) *LocalServerFlow {
	return &LocalServerFlow{
		Host:    host,
		Timeout: timeout,
		OpenURL: browser.OpenURL,
	}
}

func (f *LocalServerFlow) Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(f.Host, "0"))
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	oauthConfig := *config
	oauthConfig.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

	state := uuid.NewString()
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler:           callbackHandler(state, codeChan, errChan),
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			trySend(errChan, err)
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	slog.Info("Open this URL to authorize YouTube uploads", "url", authURL)

	if f.OpenURL != nil {
		if err := f.OpenURL(authURL); err != nil {
			slog.Debug("Failed to open browser", "error", err)
		}
	}

	select {
	case code := <-codeChan:
		token, err := oauthConfig.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange code: %w", err)
		}
		return token, nil

	case err := <-errChan:
		return nil, err

	case <-ctx.Done():
		return nil, fmt.Errorf("authentication timed out: %w", ctx.Err())
	}
}

func callbackHandler(state string, codeChan chan<- string, errChan chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		query := r.URL.Query()

		if reason := query.Get("error"); reason != "" {
			trySend(errChan, fmt.Errorf("authorization denied: %s", reason))
			_, _ = fmt.Fprint(w, "<html><body><h1>Error</h1><p>Authorization was denied.</p></body></html>")
			return
		}

		if query.Get("state") != state {
			trySend(errChan, errors.New("state mismatch in callback"))
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}

		code := query.Get("code")
		if code == "" {
			trySend(errChan, errors.New("no code in callback"))
			_, _ = fmt.Fprint(w, "<html><body><h1>Error</h1><p>No authorization code received.</p></body></html>")
			return
		}

		trySend(codeChan, code)
		_, _ = fmt.Fprint(w, "<html><body><h1>Success!</h1><p>You can close this window.</p></body></html>")
	})
}

func trySend[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}
