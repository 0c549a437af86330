package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Server
	ServerAddr string `env:"SERVER_ADDR" envDefault:":3000"`
	BaseURL    string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	SiteTitle  string `env:"SITE_TITLE" envDefault:"Team Hub"`

	// Database. Empty selects the in-memory store.
	DatabaseURL string `env:"DATABASE_URL"`

	// Redis backs the rate limiter when set.
	RedisURL string `env:"REDIS_URL"`

	// Bearer tokens are HS256 JWTs signed with this secret.
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-me-in-production-min-32-chars"`
	JWTIssuer string `env:"JWT_ISSUER"`

	// CORS
	CORSOrigins string `env:"CORS_ORIGINS"` // Comma-separated allowed origins

	// Rate limiting, requests per minute per client.
	RateLimit int `env:"RATE_LIMIT" envDefault:"120"`

	// Email
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"teamhub@localhost"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Team Hub"`
	SMTPTLS      string `env:"SMTP_TLS" envDefault:"starttls"` // tls, starttls or none

	EmailNotifySubmitted bool `env:"EMAIL_NOTIFY_SUBMITTED" envDefault:"true"`
	EmailNotifyReviewed  bool `env:"EMAIL_NOTIFY_REVIEWED" envDefault:"true"`

	// Pending-proposal digest. Zero disables it.
	DigestInterval time.Duration `env:"DIGEST_INTERVAL" envDefault:"24h"`
	// Proposals younger than this are left out of the digest.
	DigestMinAge time.Duration `env:"DIGEST_MIN_AGE" envDefault:"24h"`
}

// DefaultEnvFiles are loaded, in order, when present.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Load reads .env files when they exist and then parses the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func (c *Config) validate() error {
	switch c.SMTPTLS {
	case "tls", "starttls", "none":
	default:
		return fmt.Errorf("SMTP_TLS must be tls, starttls or none, got %q", c.SMTPTLS)
	}
	if !c.IsDev() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters outside development")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT must not be negative")
	}
	return nil
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true when an SMTP host is configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != ""
}

// AllowedOrigins splits CORSOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
