// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache keeps entries in Redis so that every instance resolves codes
// from the same table.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	closed atomic.Bool
	counters
}

// RedisOptions configures NewRedisCache.
type RedisOptions struct {
	URL      string // redis://host:port/db
	Prefix   string
	TTL      time.Duration // default 1h
	Timeout  time.Duration // per operation, default 3s
	PoolSize int           // 0 keeps the go-redis default
}

// NewRedisCache connects to opts.URL and pings the server once.
func NewRedisCache(opts RedisOptions) (*RedisCache, error) {
	if opts.URL == "" {
		return nil, errors.New("cache: redis URL is required")
	}
	ro, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("cache: parsing redis URL: %w", err)
	}

	timeout := cmp.Or(opts.Timeout, 3*time.Second)
	ro.DialTimeout = timeout
	ro.ReadTimeout = timeout
	ro.WriteTimeout = timeout
	if opts.PoolSize > 0 {
		ro.PoolSize = opts.PoolSize
	}

	rdb := redis.NewClient(ro)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb, prefix: opts.Prefix, ttl: cmp.Or(opts.TTL, time.Hour)}, nil
}

func (c *RedisCache) key(k string) string { return c.prefix + k }

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	b, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		return nil, ErrCacheMiss
	case err != nil:
		return nil, err
	}
	c.hits.Add(1)
	return b, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.rdb.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return err
	}
	c.sets.Add(1)
	return nil
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	return c.rdb.Del(ctx, full...).Err()
}

// Ping reports whether Redis answers. The health endpoint uses it.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close is idempotent.
func (c *RedisCache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.rdb.Close()
}

// Stats returns counters for this process only.
func (c *RedisCache) Stats() Stats { return c.snapshot() }

var _ Cache = (*RedisCache)(nil)
