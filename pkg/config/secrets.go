package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// accessSecret is swapped out in tests.
var accessSecret = accessSecretVersion

// loadClientSecret resolves the OAuth client-secret JSON. A named secret in
// Secret Manager wins over the local file; a missing local file is not an
// error since the client id and secret may come from the environment.
func loadClientSecret(ctx context.Context, cfg *Config) error {
	if cfg.ClientSecretName != "" {
		name, err := secretVersionName(cfg.GCPProject, cfg.ClientSecretName)
		if err != nil {
			return err
		}

		data, err := accessSecret(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to fetch client secret: %w", err)
		}
		cfg.ClientSecretJSON = data
		return nil
	}

	data, err := os.ReadFile(cfg.ClientSecretFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("No client secret file found", "path", cfg.ClientSecretFile)
			return nil
		}
		return fmt.Errorf("failed to read client secret file: %w", err)
	}

	cfg.ClientSecretJSON = data
	return nil
}

func secretVersionName(project, secret string) (string, error) {
	if strings.HasPrefix(secret, "projects/") {
		if strings.Contains(secret, "/versions/") {
			return secret, nil
		}
		return secret + "/versions/latest", nil
	}

	if project == "" {
		return "", fmt.Errorf("GOOGLE_CLOUD_PROJECT must be set to resolve secret %q", secret)
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, secret), nil
}

func accessSecretVersion(ctx context.Context, name string) ([]byte, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", name, err)
	}

	return resp.GetPayload().GetData(), nil
}
