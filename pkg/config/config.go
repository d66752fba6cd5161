package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath        = "config.yaml"
	defaultHost              = "0.0.0.0"
	defaultPort              = "5000"
	defaultClientSecretFile  = "client_secret.json"
	defaultTokenPath         = "token.json"
	defaultTokenObject       = "token.json"
	defaultUploadDir         = "uploads"
	defaultReadHeaderTimeout = 10 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
	defaultMimeType          = "video/mp4"
	defaultTitle             = "Untitled Video"
	defaultPrivacy           = "public"
	defaultCallbackHost      = "127.0.0.1"
	defaultAuthTimeout       = 5 * time.Minute
)

type Config struct {
	Host                string `yaml:"-"`
	Port                string `yaml:"-"`
	ClientSecretFile    string `yaml:"-"`
	ClientSecretName    string `yaml:"-"`
	ClientSecretJSON    []byte `yaml:"-"`
	YouTubeClientID     string `yaml:"-"`
	YouTubeClientSecret string `yaml:"-"`
	GCPProject          string `yaml:"-"`
	TokenPath           string `yaml:"-"`

	Server  ServerConfig  `yaml:"server"`
	YouTube YouTubeConfig `yaml:"youtube"`
	Token   TokenConfig   `yaml:"token"`
}

type ServerConfig struct {
	UploadDir         string        `yaml:"upload_dir"`
	MaxUploadMB       int64         `yaml:"max_upload_mb"`
	ExposeErrors      *bool         `yaml:"expose_errors"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type YouTubeConfig struct {
	MimeType        string        `yaml:"mime_type"`
	DefaultTitle    string        `yaml:"default_title"`
	DefaultPrivacy  string        `yaml:"default_privacy"`
	CategoryID      string        `yaml:"category_id"`
	Tags            []string      `yaml:"tags"`
	InteractiveAuth *bool         `yaml:"interactive_auth"`
	CallbackHost    string        `yaml:"callback_host"`
	AuthTimeout     time.Duration `yaml:"auth_timeout"`
}

// TokenConfig selects where the OAuth token cache lives. An empty Bucket
// keeps it on local disk at Config.TokenPath.
type TokenConfig struct {
	Bucket string `yaml:"bucket"`
	Object string `yaml:"object"`
}

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := loadYAMLConfig(cfg, defaultConfigPath); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := loadClientSecret(ctx, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("No config.yaml found, using defaults")
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Host = os.Getenv("HOST")
	cfg.Port = os.Getenv("PORT")
	cfg.ClientSecretFile = os.Getenv("YOUTUBE_CLIENT_SECRET_FILE")
	cfg.ClientSecretName = os.Getenv("YOUTUBE_CLIENT_SECRET_NAME")
	cfg.YouTubeClientID = os.Getenv("YOUTUBE_CLIENT_ID")
	cfg.YouTubeClientSecret = os.Getenv("YOUTUBE_CLIENT_SECRET")
	cfg.GCPProject = os.Getenv("GOOGLE_CLOUD_PROJECT")
	cfg.TokenPath = os.Getenv("YOUTUBE_TOKEN_PATH")

	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		cfg.Server.UploadDir = dir
	}
	if bucket := os.Getenv("TOKEN_BUCKET"); bucket != "" {
		cfg.Token.Bucket = bucket
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.ClientSecretFile == "" {
		cfg.ClientSecretFile = defaultClientSecretFile
	}
	if cfg.TokenPath == "" {
		cfg.TokenPath = defaultTokenPath
	}
	applyServerDefaults(cfg)
	applyYouTubeDefaults(cfg)
	applyTokenDefaults(cfg)
}

func applyServerDefaults(cfg *Config) {
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = defaultUploadDir
	}
	if cfg.Server.ExposeErrors == nil {
		expose := true
		cfg.Server.ExposeErrors = &expose
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}
}

func applyYouTubeDefaults(cfg *Config) {
	if cfg.YouTube.MimeType == "" {
		cfg.YouTube.MimeType = defaultMimeType
	}
	if cfg.YouTube.DefaultTitle == "" {
		cfg.YouTube.DefaultTitle = defaultTitle
	}
	if cfg.YouTube.DefaultPrivacy == "" {
		cfg.YouTube.DefaultPrivacy = defaultPrivacy
	}
	if cfg.YouTube.InteractiveAuth == nil {
		interactive := true
		cfg.YouTube.InteractiveAuth = &interactive
	}
	if cfg.YouTube.CallbackHost == "" {
		cfg.YouTube.CallbackHost = defaultCallbackHost
	}
	if cfg.YouTube.AuthTimeout == 0 {
		cfg.YouTube.AuthTimeout = defaultAuthTimeout
	}
}

func applyTokenDefaults(cfg *Config) {
	if cfg.Token.Object == "" {
		cfg.Token.Object = defaultTokenObject
	}
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) ExposeErrors() bool {
	return c.Server.ExposeErrors == nil || *c.Server.ExposeErrors
}

func (c *Config) InteractiveAuth() bool {
	return c.YouTube.InteractiveAuth == nil || *c.YouTube.InteractiveAuth
}

// MaxUploadBytes is zero when uploads are unbounded.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

func (c *Config) HasClientCredentials() bool {
	return len(c.ClientSecretJSON) > 0 || (c.YouTubeClientID != "" && c.YouTubeClientSecret != "")
}

// ClientSecretSource describes where the OAuth client credentials came from.
func (c *Config) ClientSecretSource() string {
	switch {
	case c.ClientSecretName != "" && len(c.ClientSecretJSON) > 0:
		return "secret manager (" + c.ClientSecretName + ")"
	case len(c.ClientSecretJSON) > 0:
		return c.ClientSecretFile
	case c.YouTubeClientID != "" && c.YouTubeClientSecret != "":
		return "environment"
	default:
		return ""
	}
}
