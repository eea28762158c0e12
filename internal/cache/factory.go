// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"time"

	"github.com/olegiv/festivo-go/internal/model"
)

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects the Redis backend when set.
	// Example: redis://localhost:6379/0
	RedisURL string

	// Prefix is the key prefix for Redis.
	Prefix string

	DefaultTTL      time.Duration
	MaxSize         int // memory backend only, 0 = unlimited
	CleanupInterval time.Duration
}

// DefaultConfig returns the in-memory configuration.
func DefaultConfig() Config {
	return Config{
		Prefix:          "festivo:",
		DefaultTTL:      time.Hour,
		MaxSize:         10000,
		CleanupInterval: time.Minute,
	}
}

// New creates the cache described by cfg. When Redis is configured but
// unreachable the memory backend is used instead and a warning is logged.
func New(cfg Config, logger *slog.Logger) Cache {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.RedisURL != "" {
		opts := RedisOptions{URL: cfg.RedisURL, Prefix: cfg.Prefix, TTL: cfg.DefaultTTL}
		rc, err := NewRedisCache(opts)
		if err == nil {
			logger.Info("using redis cache", "prefix", opts.Prefix)
			return rc
		}
		logger.Warn("redis unavailable, falling back to memory cache",
			"category", model.EventCategoryCache, "error", err)
	}

	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	})
}
