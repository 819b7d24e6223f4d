// Package config loads the onda server configuration.
// Order: Default -> YAML file -> ApplyEnvOverrides -> Validate.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage backends
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// MinJWTSecretLength is the shortest accepted HS256 secret in production.
const MinJWTSecretLength = 32

// Config holds the server configuration.
type Config struct {
	Env      string         `yaml:"env"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
	Logging  LoggingConfig  `yaml:"logging"`
	Retreat  RetreatConfig  `yaml:"retreat"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	BaseURL         string        `yaml:"base_url"` // public URL used in emails
	StaticDir       string        `yaml:"static_dir"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       int           `yaml:"rate_limit"` // requests per second per IP
	SlowRequest     time.Duration `yaml:"slow_request"`
}

// DatabaseConfig selects the SQL driver and DSN.
type DatabaseConfig struct {
	Driver    string        `yaml:"driver"` // sqlite or pgx
	DSN       string        `yaml:"dsn"`
	SlowQuery time.Duration `yaml:"slow_query"`
}

// StorageConfig selects where attachments are stored.
type StorageConfig struct {
	Backend  string   `yaml:"backend"`
	LocalDir string   `yaml:"local_dir"`
	S3       S3Config `yaml:"s3"`
}

// S3Config configures an S3-compatible object store.
type S3Config struct {
	Region     string `yaml:"region"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	PathStyle  bool   `yaml:"path_style"`
	DisableSSL bool   `yaml:"disable_ssl"`
	PublicURL  string `yaml:"public_url"`
}

// AuthConfig holds secrets and the seeded administrator.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	CSRFKey       string        `yaml:"csrf_key"` // 64 hex characters
	AdminEmail    string        `yaml:"admin_email"`
	AdminName     string        `yaml:"admin_name"`
	AdminPassword string        `yaml:"admin_password"`
}

// EmailConfig configures Resend delivery. An empty ResendKey logs emails instead.
type EmailConfig struct {
	ResendKey string `yaml:"resend_key"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
}

// LoggingConfig configures slog output and file rotation.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`   // empty logs to stderr only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// RetreatConfig sets the timezone the countdown is measured in.
type RetreatConfig struct {
	Timezone string `yaml:"timezone"`
}

// Default returns the development configuration.
func Default() *Config {
	return &Config{
		Env: EnvDevelopment,
		Server: ServerConfig{
			Addr:            ":8080",
			BaseURL:         "http://localhost:8080",
			StaticDir:       "static",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       10,
			SlowRequest:     200 * time.Millisecond,
		},
		Database: DatabaseConfig{
			Driver:    "sqlite",
			DSN:       "onda.db",
			SlowQuery: 50 * time.Millisecond,
		},
		Storage: StorageConfig{
			Backend:  StorageLocal,
			LocalDir: "uploads",
			S3:       S3Config{Region: "us-east-1", PathStyle: true},
		},
		Auth: AuthConfig{
			TokenTTL:   12 * time.Hour,
			AdminEmail: "admin@retiroonda.org",
			AdminName:  "Administrador",
		},
		Email: EmailConfig{
			From: "Retiro Onda <nao-responda@retiroonda.org>",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Retreat: RetreatConfig{Timezone: "America/Sao_Paulo"},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path and ONDA_* variables.
// PRE: none
// POST: the returned config passes Validate
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides overlays ONDA_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	setString(&c.Env, "ONDA_ENV")

	setString(&c.Server.Addr, "ONDA_ADDR")
	setString(&c.Server.BaseURL, "ONDA_BASE_URL")
	setString(&c.Server.StaticDir, "ONDA_STATIC_DIR")
	setInt(&c.Server.RateLimit, "ONDA_RATE_LIMIT")
	setDuration(&c.Server.SlowRequest, "ONDA_SLOW_REQUEST")

	setString(&c.Database.Driver, "ONDA_DB_DRIVER")
	setString(&c.Database.DSN, "ONDA_DB_DSN")
	setDuration(&c.Database.SlowQuery, "ONDA_SLOW_QUERY")

	setString(&c.Storage.Backend, "ONDA_STORAGE_BACKEND")
	setString(&c.Storage.LocalDir, "ONDA_UPLOAD_DIR")
	setString(&c.Storage.S3.Region, "ONDA_S3_REGION")
	setString(&c.Storage.S3.Endpoint, "ONDA_S3_ENDPOINT")
	setString(&c.Storage.S3.AccessKey, "ONDA_S3_ACCESS_KEY")
	setString(&c.Storage.S3.SecretKey, "ONDA_S3_SECRET_KEY")
	setBool(&c.Storage.S3.PathStyle, "ONDA_S3_PATH_STYLE")
	setString(&c.Storage.S3.PublicURL, "ONDA_S3_PUBLIC_URL")

	setString(&c.Auth.JWTSecret, "ONDA_JWT_SECRET")
	setDuration(&c.Auth.TokenTTL, "ONDA_TOKEN_TTL")
	setString(&c.Auth.CSRFKey, "ONDA_CSRF_KEY")
	setString(&c.Auth.AdminEmail, "ONDA_ADMIN_EMAIL")
	setString(&c.Auth.AdminName, "ONDA_ADMIN_NAME")
	setString(&c.Auth.AdminPassword, "ONDA_ADMIN_PASSWORD")

	setString(&c.Email.ResendKey, "ONDA_RESEND_KEY")
	setString(&c.Email.From, "ONDA_RESEND_FROM")
	setString(&c.Email.ReplyTo, "ONDA_REPLY_TO")

	setString(&c.Logging.Level, "ONDA_LOG_LEVEL")
	setString(&c.Logging.Format, "ONDA_LOG_FORMAT")
	setString(&c.Logging.File, "ONDA_LOG_FILE")

	setString(&c.Retreat.Timezone, "ONDA_TIMEZONE")
}

// Validate checks the configuration.
// PRE: none
// POST: returns the joined list of every problem found
func (c *Config) Validate() error {
	var errs []error
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("env must be %q or %q", EnvDevelopment, EnvProduction))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.RateLimit < 1 {
		errs = append(errs, errors.New("server.rate_limit must be positive"))
	}
	if !slices.Contains([]string{"sqlite", "pgx"}, c.Database.Driver) {
		errs = append(errs, fmt.Errorf("database.driver %q must be sqlite or pgx", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}

	switch c.Storage.Backend {
	case StorageLocal:
		if c.Storage.LocalDir == "" {
			errs = append(errs, errors.New("storage.local_dir is required for the local backend"))
		}
	case StorageS3:
		if c.Storage.S3.Region == "" {
			errs = append(errs, errors.New("storage.s3.region is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q must be local or s3", c.Storage.Backend))
	}

	if c.Auth.CSRFKey != "" {
		if _, err := c.CSRFKeyBytes(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.IsProduction() {
		if len(c.Auth.JWTSecret) < MinJWTSecretLength {
			errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d characters in production", MinJWTSecretLength))
		}
		if c.Auth.CSRFKey == "" {
			errs = append(errs, errors.New("auth.csrf_key is required in production"))
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level))
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("logging.format %q must be text or json", c.Logging.Format))
	}
	if _, err := time.LoadLocation(c.Retreat.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("retreat.timezone: %w", err))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFKeyBytes decodes the hex CSRF key. It returns nil, nil when no key is configured.
func (c *Config) CSRFKeyBytes() ([]byte, error) {
	if c.Auth.CSRFKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.Auth.CSRFKey)
	if err != nil || len(key) != 32 {
		return nil, errors.New("auth.csrf_key must be 64 hex characters (32 bytes)")
	}
	return key, nil
}

// Location returns the retreat timezone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Retreat.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
