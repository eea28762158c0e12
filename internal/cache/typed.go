// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// TypedCache stores JSON-encoded values of one type under a key namespace.
type TypedCache[T any] struct {
	cache     Cache
	namespace string
	ttl       time.Duration
}

// NewTypedCache wraps c. Keys are stored as namespace+key.
func NewTypedCache[T any](c Cache, namespace string, ttl time.Duration) *TypedCache[T] {
	return &TypedCache[T]{cache: c, namespace: namespace, ttl: ttl}
}

// Get returns the cached value. Any backend or decoding error counts as a miss.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T
	data, err := c.cache.Get(ctx, c.namespace+key)
	if err != nil {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false
	}
	return value, true
}

// Set stores value under key.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, c.namespace+key, data, c.ttl)
}

// Delete removes keys.
func (c *TypedCache[T]) Delete(ctx context.Context, keys ...string) error {
	namespaced := make([]string, len(keys))
	for i, key := range keys {
		namespaced[i] = c.namespace + key
	}
	return c.cache.Delete(ctx, namespaced...)
}
