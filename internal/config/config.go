// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads festivo settings from FESTIVO_ environment variables.
package config

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/hkdf"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath          string        `env:"FESTIVO_DB_PATH" envDefault:"./data/festivo.db"`
	DBDriver        string        `env:"FESTIVO_DB_DRIVER" envDefault:"sqlite"` // sqlite (pure Go) or sqlite3 (cgo)
	SessionSecret   string        `env:"FESTIVO_SESSION_SECRET,required"`
	SessionLifetime time.Duration `env:"FESTIVO_SESSION_LIFETIME" envDefault:"8760h"`
	ServerHost      string        `env:"FESTIVO_SERVER_HOST" envDefault:"localhost"`
	ServerPort      int           `env:"FESTIVO_SERVER_PORT" envDefault:"8080"`
	Env             string        `env:"FESTIVO_ENV" envDefault:"development"`
	LogLevel        string        `env:"FESTIVO_LOG_LEVEL" envDefault:"info"`
	RequestTimeout  time.Duration `env:"FESTIVO_REQUEST_TIMEOUT" envDefault:"30s"`

	// Cache configuration
	RedisURL     string `env:"FESTIVO_REDIS_URL"`                          // Optional Redis URL for shared code lookups
	CachePrefix  string `env:"FESTIVO_CACHE_PREFIX" envDefault:"festivo:"` // Redis key prefix
	CacheTTL     int    `env:"FESTIVO_CACHE_TTL" envDefault:"3600"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"FESTIVO_CACHE_MAX_SIZE" envDefault:"10000"`  // Max memory cache entries

	// GeoIP configuration
	GeoIPDBPath string `env:"FESTIVO_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Unlock throttling per festival, tier and client IP
	LoginThrottle     bool          `env:"FESTIVO_LOGIN_THROTTLE" envDefault:"false"`
	LoginMaxAttempts  int           `env:"FESTIVO_LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginLockout      time.Duration `env:"FESTIVO_LOGIN_LOCKOUT" envDefault:"15m"`
	APIRateLimit      float64       `env:"FESTIVO_API_RATE_LIMIT" envDefault:"20"` // requests per second per IP, 0 disables
	APIRateLimitBurst int           `env:"FESTIVO_API_RATE_BURST" envDefault:"40"`

	// Retention of operational records, 0 keeps them forever
	RetentionSchedule  string        `env:"FESTIVO_RETENTION_SCHEDULE" envDefault:"0 3 * * *"`
	EventRetention     time.Duration `env:"FESTIVO_EVENT_RETENTION" envDefault:"2160h"`
	AccessLogRetention time.Duration `env:"FESTIVO_ACCESS_LOG_RETENTION" envDefault:"0"`
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

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// CacheDefaultTTL returns CacheTTL as a duration.
func (c Config) CacheDefaultTTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// DigestKey returns the key for visitor password uniqueness digests. It is
// derived from the session secret, so rotating the secret invalidates every
// stored visitor password lookup.
func (c Config) DigestKey() []byte {
	return c.deriveKey("festivo user password digest")
}

// CSRFKey returns the 32-byte key for CSRF protection.
func (c Config) CSRFKey() []byte {
	return c.deriveKey("festivo csrf")
}

func (c Config) deriveKey(info string) []byte {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(c.SessionSecret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf yields up to 255 hash lengths; 32 bytes cannot fail.
		panic(err)
	}
	return key
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("FESTIVO_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("FESTIVO_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("FESTIVO_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	switch cfg.DBDriver {
	case "sqlite", "sqlite3":
	default:
		return nil, fmt.Errorf("FESTIVO_DB_DRIVER must be sqlite or sqlite3, got %q", cfg.DBDriver)
	}

	if cfg.LoginMaxAttempts < 1 {
		return nil, fmt.Errorf("FESTIVO_LOGIN_MAX_ATTEMPTS must be at least 1, got %d", cfg.LoginMaxAttempts)
	}

	return cfg, nil
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
