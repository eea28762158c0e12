// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the festival code lookup cache with in-memory and
// Redis backends.
package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Sentinel errors returned by every backend.
var (
	ErrCacheMiss   = errors.New("cache: miss")
	ErrCacheClosed = errors.New("cache: closed")
)

// Cache is a byte-oriented key/value store with per-entry expiry. Backends
// are safe for concurrent use.
type Cache interface {
	// Get returns ErrCacheMiss for absent or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; ttl <= 0 means the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete ignores keys that do not exist.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Stats counts lookups made through one process.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	Items  int   `json:"items,omitempty"` // memory backend only
}

// counters backs Stats for both backends.
type counters struct {
	hits, misses, sets atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Sets: c.sets.Load()}
}
