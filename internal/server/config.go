// Package server provides configuration helpers that define runtime defaults
// and validation for the FluxChat relay.
package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// RateLimitConfig defines the parameters for per-connection message rate limiting.
type RateLimitConfig struct {
	Burst          int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1s"`
}

// Config holds the relay configuration including transport security controls.
type Config struct {
	Port           string   `env:"SERVER_PORT" envDefault:":8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	MaxMessageSize int64    `env:"MAX_MESSAGE_SIZE" envDefault:"4096"`
	RateLimit      RateLimitConfig
}

// NewConfig returns a Config populated with default values for all settings.
func NewConfig() Config {
	return Config{
		Port: ":8080",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize: 4096,
		RateLimit: RateLimitConfig{
			Burst:          10,
			RefillInterval: time.Second,
		},
	}
}

// NewConfigFromEnv builds a Config from environment variables, falling back to
// defaults for anything unset.
func NewConfigFromEnv() (Config, error) {
	cfg := NewConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.sanitized(), nil
}

// sanitized clamps nonsensical values back to defaults.
func (c Config) sanitized() Config {
	if c.Port == "" {
		c.Port = ":8080"
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 4096
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 10
	}
	if c.RateLimit.RefillInterval <= 0 {
		c.RateLimit.RefillInterval = time.Second
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"http://localhost:8080"}
	}
	return c
}
