package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the gateway
type Config struct {
	// Backend
	APIBase        string        `env:"API_BASE"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`

	// Auth0 (optional). When unset, identity comes from the X-Clerk-User-Id header only.
	Auth0Domain   string `env:"AUTH0_DOMAIN"`
	Auth0Audience string `env:"AUTH0_AUDIENCE"`

	// Server
	Port        string   `env:"PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	Env         string   `env:"ENV" envDefault:"development"`

	// Sessions
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	AdvisorRetryDelay time.Duration `env:"ADVISOR_RETRY_DELAY" envDefault:"750ms"`

	// Limits
	MaxUploadBytes     int64 `env:"MAX_UPLOAD_BYTES" envDefault:"26214400"`
	RateLimitPerMinute int   `env:"RATE_LIMIT_PER_MINUTE" envDefault:"300"`
	RateLimitBurst     int   `env:"RATE_LIMIT_BURST" envDefault:"30"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// JWTEnabled reports whether Bearer token validation is configured
func (c *Config) JWTEnabled() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

// IsProduction reports whether the gateway runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.APIBase == "" {
		return fmt.Errorf("API_BASE is required")
	}
	u, err := url.Parse(c.APIBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE must be an absolute URL")
	}
	if (c.Auth0Domain == "") != (c.Auth0Audience == "") {
		return fmt.Errorf("AUTH0_DOMAIN and AUTH0_AUDIENCE must be set together")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}
