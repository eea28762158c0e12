package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rc, err := NewRedisCache(RedisOptions{URL: "redis://" + mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestRedisCache_Basic(t *testing.T) {
	rc, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "key", []byte("value"), time.Minute))
	assert.True(t, mr.Exists("test:key"), "keys are prefixed")

	got, err := rc.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", string(got))

	require.NoError(t, rc.Delete(ctx, "key"))
	_, err = rc.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, rc.Ping(ctx))
	assert.Equal(t, int64(1), rc.Stats().Hits)
}

func TestRedisCache_TTL(t *testing.T) {
	rc, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "key", []byte("value"), time.Second))
	mr.FastForward(2 * time.Second)

	_, err := rc.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, rc.Set(ctx, "default", []byte("v"), 0))
	assert.Equal(t, time.Hour, mr.TTL("test:default"))
}

func TestRedisCache_RequiresURL(t *testing.T) {
	_, err := NewRedisCache(RedisOptions{})
	assert.Error(t, err)
}

func TestNewFallsBackToMemory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RedisURL = "redis://127.0.0.1:1/0"
	c := New(cfg, nil)
	defer func() { _ = c.Close() }()

	_, ok := c.(*MemoryCache)
	assert.True(t, ok)
}

func TestNewUsesRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.RedisURL = "redis://" + mr.Addr()
	c := New(cfg, nil)
	defer func() { _ = c.Close() }()

	_, ok := c.(*RedisCache)
	assert.True(t, ok)
}
