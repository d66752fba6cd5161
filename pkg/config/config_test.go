package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configEnv = []string{
	"HOST", "PORT", "YOUTUBE_CLIENT_SECRET_FILE", "YOUTUBE_CLIENT_SECRET_NAME",
	"YOUTUBE_CLIENT_ID", "YOUTUBE_CLIENT_SECRET", "GOOGLE_CLOUD_PROJECT",
	"YOUTUBE_TOKEN_PATH", "UPLOAD_DIR", "TOKEN_BUCKET",
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	orig, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(orig) })
	_ = os.Chdir(tmp)

	for _, key := range configEnv {
		t.Setenv(key, "")
	}
	return tmp
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr() != "0.0.0.0:5000" {
		t.Errorf("Addr() = %q, want 0.0.0.0:5000", cfg.Addr())
	}
	if cfg.TokenPath != defaultTokenPath {
		t.Errorf("TokenPath = %q, want %q", cfg.TokenPath, defaultTokenPath)
	}
	if cfg.Server.UploadDir != defaultUploadDir {
		t.Errorf("Server.UploadDir = %q, want %q", cfg.Server.UploadDir, defaultUploadDir)
	}
	if cfg.YouTube.DefaultTitle != "Untitled Video" {
		t.Errorf("YouTube.DefaultTitle = %q, want Untitled Video", cfg.YouTube.DefaultTitle)
	}
	if cfg.YouTube.DefaultPrivacy != "public" {
		t.Errorf("YouTube.DefaultPrivacy = %q, want public", cfg.YouTube.DefaultPrivacy)
	}
	if cfg.YouTube.MimeType != "video/mp4" {
		t.Errorf("YouTube.MimeType = %q, want video/mp4", cfg.YouTube.MimeType)
	}
	if !cfg.ExposeErrors() {
		t.Error("ExposeErrors() = false, want true")
	}
	if !cfg.InteractiveAuth() {
		t.Error("InteractiveAuth() = false, want true")
	}
	if cfg.MaxUploadBytes() != 0 {
		t.Errorf("MaxUploadBytes() = %d, want 0", cfg.MaxUploadBytes())
	}
	if cfg.HasClientCredentials() {
		t.Error("HasClientCredentials() = true without any credentials")
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PORT", "8080")
	t.Setenv("YOUTUBE_CLIENT_ID", "id")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "secret")
	t.Setenv("YOUTUBE_TOKEN_PATH", "/var/lib/uptube/token.json")
	t.Setenv("UPLOAD_DIR", "/tmp/incoming")
	t.Setenv("TOKEN_BUCKET", "tokens")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q, want 0.0.0.0:8080", cfg.Addr())
	}
	if cfg.TokenPath != "/var/lib/uptube/token.json" {
		t.Errorf("TokenPath = %q", cfg.TokenPath)
	}
	if cfg.Server.UploadDir != "/tmp/incoming" {
		t.Errorf("Server.UploadDir = %q, want /tmp/incoming", cfg.Server.UploadDir)
	}
	if cfg.Token.Bucket != "tokens" {
		t.Errorf("Token.Bucket = %q, want tokens", cfg.Token.Bucket)
	}
	if !cfg.HasClientCredentials() {
		t.Error("HasClientCredentials() = false with id and secret set")
	}
	if cfg.ClientSecretSource() != "environment" {
		t.Errorf("ClientSecretSource() = %q, want environment", cfg.ClientSecretSource())
	}
}

func TestLoadFromYAML(t *testing.T) {
	tmp := chdirTemp(t)

	yaml := `
server:
  upload_dir: ./incoming
  max_upload_mb: 64
  expose_errors: false
youtube:
  default_privacy: private
  interactive_auth: false
  auth_timeout: 2m
  tags: [demo, upload]
token:
  object: tokens/channel.json
`
	_ = os.WriteFile(filepath.Join(tmp, "config.yaml"), []byte(yaml), 0644)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.UploadDir != "./incoming" {
		t.Errorf("Server.UploadDir = %q, want ./incoming", cfg.Server.UploadDir)
	}
	if cfg.MaxUploadBytes() != 64<<20 {
		t.Errorf("MaxUploadBytes() = %d, want %d", cfg.MaxUploadBytes(), 64<<20)
	}
	if cfg.ExposeErrors() {
		t.Error("ExposeErrors() = true, want false")
	}
	if cfg.InteractiveAuth() {
		t.Error("InteractiveAuth() = true, want false")
	}
	if cfg.YouTube.DefaultPrivacy != "private" {
		t.Errorf("YouTube.DefaultPrivacy = %q, want private", cfg.YouTube.DefaultPrivacy)
	}
	if cfg.YouTube.AuthTimeout != 2*time.Minute {
		t.Errorf("YouTube.AuthTimeout = %v, want 2m", cfg.YouTube.AuthTimeout)
	}
	if len(cfg.YouTube.Tags) != 2 {
		t.Errorf("YouTube.Tags = %v, want 2 tags", cfg.YouTube.Tags)
	}
	if cfg.Token.Object != "tokens/channel.json" {
		t.Errorf("Token.Object = %q", cfg.Token.Object)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmp := chdirTemp(t)
	_ = os.WriteFile(filepath.Join(tmp, "config.yaml"), []byte("server: [unterminated"), 0644)

	if _, err := Load(context.Background()); err == nil {
		t.Error("Load() should fail on malformed config.yaml")
	}
}

func TestYAMLIgnoresEnvironmentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
host: 10.0.0.1
port: "9999"
clientsecretfile: other.json
clientsecretjson: e30=
tokenpath: /tmp/token.json
server:
  upload_dir: ./incoming
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{}
	if err := loadYAMLConfig(cfg, path); err != nil {
		t.Fatalf("loadYAMLConfig() error: %v", err)
	}

	if cfg.Host != "" || cfg.Port != "" || cfg.ClientSecretFile != "" || cfg.TokenPath != "" {
		t.Errorf("environment-only fields decoded from YAML: %+v", cfg)
	}
	if len(cfg.ClientSecretJSON) != 0 {
		t.Errorf("ClientSecretJSON = %q, want empty", cfg.ClientSecretJSON)
	}
	if cfg.Server.UploadDir != "./incoming" {
		t.Errorf("Server.UploadDir = %q, want ./incoming", cfg.Server.UploadDir)
	}
}

func TestLoadClientSecretFile(t *testing.T) {
	tmp := chdirTemp(t)

	secret := `{"installed":{"client_id":"abc","client_secret":"xyz"}}`
	_ = os.WriteFile(filepath.Join(tmp, "client_secret.json"), []byte(secret), 0600)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if string(cfg.ClientSecretJSON) != secret {
		t.Errorf("ClientSecretJSON = %q, want %q", cfg.ClientSecretJSON, secret)
	}
	if cfg.ClientSecretSource() != "client_secret.json" {
		t.Errorf("ClientSecretSource() = %q, want client_secret.json", cfg.ClientSecretSource())
	}
}

func TestLoadClientSecretFromSecretManager(t *testing.T) {
	chdirTemp(t)

	orig := accessSecret
	t.Cleanup(func() { accessSecret = orig })

	var requested string
	accessSecret = func(_ context.Context, name string) ([]byte, error) {
		requested = name
		return []byte(`{"installed":{}}`), nil
	}

	t.Setenv("GOOGLE_CLOUD_PROJECT", "demo")
	t.Setenv("YOUTUBE_CLIENT_SECRET_NAME", "youtube-client")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if requested != "projects/demo/secrets/youtube-client/versions/latest" {
		t.Errorf("requested secret = %q", requested)
	}
	if string(cfg.ClientSecretJSON) != `{"installed":{}}` {
		t.Errorf("ClientSecretJSON = %q", cfg.ClientSecretJSON)
	}
}

func TestLoadSecretManagerFailure(t *testing.T) {
	chdirTemp(t)

	orig := accessSecret
	t.Cleanup(func() { accessSecret = orig })
	accessSecret = func(context.Context, string) ([]byte, error) {
		return nil, errors.New("permission denied")
	}

	t.Setenv("YOUTUBE_CLIENT_SECRET_NAME", "projects/demo/secrets/youtube-client")

	if _, err := Load(context.Background()); err == nil {
		t.Error("Load() should fail when the secret cannot be fetched")
	}
}

func TestSecretVersionName(t *testing.T) {
	tests := []struct {
		name    string
		project string
		secret  string
		want    string
		wantErr bool
	}{
		{
			name:    "shortName",
			project: "demo",
			secret:  "client",
			want:    "projects/demo/secrets/client/versions/latest",
		},
		{
			name:   "fullNameWithoutVersion",
			secret: "projects/p/secrets/client",
			want:   "projects/p/secrets/client/versions/latest",
		},
		{
			name:   "fullNameWithVersion",
			secret: "projects/p/secrets/client/versions/3",
			want:   "projects/p/secrets/client/versions/3",
		},
		{
			name:    "shortNameWithoutProject",
			secret:  "client",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := secretVersionName(tt.project, tt.secret)
			if (err != nil) != tt.wantErr {
				t.Fatalf("secretVersionName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("secretVersionName() = %q, want %q", got, tt.want)
			}
		})
	}
}
