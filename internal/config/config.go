// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the server configuration from YPNG_ environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinJWTSecretLength is the minimum length of the token signing secret.
// HS256 keys shorter than the hash output weaken the signature.
const MinJWTSecretLength = 32

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"DB_PATH" envDefault:"./data/ypng.db"`
	ServerHost string `env:"SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"SERVER_PORT" envDefault:"8080"`
	Env        string `env:"ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"UPLOADS_DIR" envDefault:"./uploads"`

	// Identity
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	// Cache configuration
	RedisURL     string `env:"REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"CACHE_PREFIX" envDefault:"ypng:"`   // Redis key prefix
	CacheTTL     int    `env:"CACHE_TTL" envDefault:"300"`        // Listing cache TTL in seconds
	CacheMaxSize int    `env:"CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Outbound signals (notifications, billing, platform sync)
	SignalEndpoint string `env:"SIGNAL_ENDPOINT"`
	SignalSecret   string `env:"SIGNAL_SECRET"`
	SignalWorkers  int    `env:"SIGNAL_WORKERS" envDefault:"3"`

	// HTTP surface
	CORSOrigins       []string `env:"CORS_ORIGINS" envSeparator:","`
	RegistrationRate  float64  `env:"REGISTRATION_RATE" envDefault:"0.2"` // Creates per second per client
	RegistrationBurst int      `env:"REGISTRATION_BURST" envDefault:"5"`
	GeoIPDBPath       string   `env:"GEOIP_DB_PATH"` // Optional GeoLite2-Country database for login auditing

	// Retention of the activity log and delivered signals
	ActivityRetentionDays int `env:"ACTIVITY_RETENTION_DAYS" envDefault:"90"`
	SignalRetentionDays   int `env:"SIGNAL_RETENTION_DAYS" envDefault:"30"`

	// Seeding configuration
	DoSeed bool `env:"DO_SEED" envDefault:"false"` // Seed the standard membership types
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// SignalsEnabled reports whether signals are delivered rather than only logged.
func (c Config) SignalsEnabled() bool {
	return c.SignalEndpoint != ""
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load parses YPNG_ environment variables and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "YPNG_"}); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("YPNG_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("YPNG_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(c.JWTSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.JWTSecret == weak {
			return errors.New("YPNG_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	switch c.Env {
	case "development", "production":
	default:
		return fmt.Errorf("YPNG_ENV must be development or production, got %q", c.Env)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("YPNG_TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("YPNG_SERVER_PORT out of range: %d", c.ServerPort)
	}

	if c.SignalEndpoint != "" {
		u, err := url.Parse(c.SignalEndpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("YPNG_SIGNAL_ENDPOINT must be an http(s) URL, got %q", c.SignalEndpoint)
		}
		if c.SignalSecret == "" {
			return errors.New("YPNG_SIGNAL_SECRET is required when YPNG_SIGNAL_ENDPOINT is set")
		}
	}

	if c.RegistrationRate <= 0 || c.RegistrationBurst <= 0 {
		return errors.New("YPNG_REGISTRATION_RATE and YPNG_REGISTRATION_BURST must be positive")
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
