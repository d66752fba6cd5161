package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"uptube/internal/credential"
	"uptube/internal/distribution"
	"uptube/internal/distribution/youtube"
	"uptube/internal/server"
	"uptube/internal/storage"
	"uptube/pkg/config"
)

type BuildResult struct {
	Server  *server.Server
	Auth    *youtube.Auth
	Storage *storage.LocalStorage

	closers []func() error
}

func (r *BuildResult) Close() error {
	var errs []error
	for _, closeFn := range r.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// TokenLocation names the token cache without opening it.
func TokenLocation(cfg *config.Config) string {
	if cfg.Token.Bucket == "" {
		return cfg.TokenPath
	}
	return "gs://" + cfg.Token.Bucket + "/" + cfg.Token.Object
}

// TokenStore is where the OAuth token lives: a GCS object when a bucket is
// configured, otherwise a local file. The returned func releases the store.
func TokenStore(ctx context.Context, cfg *config.Config) (credential.Store, func() error, error) {
	if cfg.Token.Bucket == "" {
		return credential.NewFileStore(cfg.TokenPath), func() error { return nil }, nil
	}

	store, err := credential.NewGCSStore(ctx, cfg.Token.Bucket, cfg.Token.Object)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// BuildAuth wires the token lifecycle. Missing client credentials are not
// fatal here; every token request reports them instead.
func BuildAuth(ctx context.Context, cfg *config.Config, interactive bool) (*youtube.Auth, func() error, error) {
	oauthConfig, err := youtube.OAuthConfig(cfg.ClientSecretJSON, cfg.YouTubeClientID, cfg.YouTubeClientSecret)
	switch {
	case errors.Is(err, youtube.ErrNoClientCredentials):
		slog.Warn("YouTube client credentials not configured; uploads will fail until they are",
			"client_secret_file", cfg.ClientSecretFile,
		)
	case err != nil:
		return nil, nil, err
	}

	store, closeFn, err := TokenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("Using token store", "location", TokenLocation(cfg))

	var authorizer youtube.Authorizer
	if interactive {
		authorizer = youtube.NewLocalServerFlow(cfg.YouTube.CallbackHost, cfg.YouTube.AuthTimeout)
	}

	return youtube.NewAuth(oauthConfig, store, authorizer), closeFn, nil
}

func BuildService(ctx context.Context, cfg *config.Config) (*BuildResult, error) {
	auth, closeAuth, err := BuildAuth(ctx, cfg, cfg.InteractiveAuth())
	if err != nil {
		return nil, err
	}
	result := &BuildResult{Auth: auth, closers: []func() error{closeAuth}}

	localStorage := storage.NewLocalStorage(cfg.Server.UploadDir)
	if err := localStorage.EnsureDirectories(); err != nil {
		_ = result.Close()
		return nil, err
	}
	result.Storage = localStorage

	client := youtube.NewClient(auth, youtube.ClientOptions{
		MimeType:   cfg.YouTube.MimeType,
		CategoryID: cfg.YouTube.CategoryID,
		Tags:       cfg.YouTube.Tags,
	})

	defaultPrivacy := distribution.Privacy(cfg.YouTube.DefaultPrivacy)
	if !defaultPrivacy.Valid() {
		_ = result.Close()
		return nil, fmt.Errorf("invalid default privacy %q", cfg.YouTube.DefaultPrivacy)
	}

	result.Server = server.New(server.Options{
		Addr:              cfg.Addr(),
		Uploader:          client,
		Storage:           localStorage,
		DefaultTitle:      cfg.YouTube.DefaultTitle,
		DefaultPrivacy:    defaultPrivacy,
		MaxUploadBytes:    cfg.MaxUploadBytes(),
		ExposeErrors:      cfg.ExposeErrors(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	})

	return result, nil
}
