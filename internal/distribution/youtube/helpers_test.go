package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/oauth2"

	"uptube/internal/credential"
)

type memStore struct {
	mu      sync.Mutex
	token   *oauth2.Token
	loadErr error
	saveErr error
	saves   int
}

func (s *memStore) Load(_ context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.token == nil {
		return nil, credential.ErrNotFound
	}
	copied := *s.token
	return &copied, nil
}

func (s *memStore) Save(_ context.Context, token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	copied := *token
	s.token = &copied
	s.saves++
	return nil
}

type fakeAuthorizer struct {
	token *oauth2.Token
	err   error
	calls int
}

func (f *fakeAuthorizer) Authorize(_ context.Context, _ *oauth2.Config) (*oauth2.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

type tokenServer struct {
	*httptest.Server
	hits atomic.Int32
}

// newTokenServer fakes Google's token endpoint for refresh and code exchange.
func newTokenServer(t *testing.T) (*tokenServer, *oauth2.Config) {
	t.Helper()

	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.FormValue("grant_type") == "refresh_token" && r.FormValue("refresh_token") == "good-refresh":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "refreshed-token",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		case r.FormValue("grant_type") == "authorization_code" && r.FormValue("code") == "test-code":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "exchanged-token",
				"refresh_token": "exchanged-refresh",
				"token_type":    "Bearer",
				"expires_in":    3600,
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
		}
	}))
	t.Cleanup(ts.Close)

	config := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   ts.URL + "/auth",
			TokenURL:  ts.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: scopes,
	}

	return ts, config
}
