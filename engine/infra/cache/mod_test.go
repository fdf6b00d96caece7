package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
)

func TestMemory(t *testing.T) {
	t.Run("Should return stored values and miss on unknown keys", func(t *testing.T) {
		c := NewMemory(4, time.Hour)
		ctx := t.Context()
		require.NoError(t, c.Set(ctx, "a", "alpha"))
		v, err := c.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "alpha", v)
		_, err = c.Get(ctx, "b")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Should evict the least recently used entry", func(t *testing.T) {
		c := NewMemory(2, time.Hour)
		ctx := t.Context()
		require.NoError(t, c.Set(ctx, "a", "1"))
		require.NoError(t, c.Set(ctx, "b", "2"))
		_, err := c.Get(ctx, "a")
		require.NoError(t, err)
		require.NoError(t, c.Set(ctx, "c", "3"))
		assert.Equal(t, 2, c.Len())
		_, err = c.Get(ctx, "b")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}

func TestNop(t *testing.T) {
	t.Run("Should never hit", func(t *testing.T) {
		c := Nop()
		require.NoError(t, c.Set(t.Context(), "k", "v"))
		_, err := c.Get(t.Context(), "k")
		assert.ErrorIs(t, err, ErrCacheMiss)
		assert.NoError(t, c.Close())
	})
}

func TestRedisText(t *testing.T) {
	t.Run("Should round-trip through redis with prefix and ttl", func(t *testing.T) {
		mr := miniredis.RunT(t)
		ctx := logger.ContextWithLogger(t.Context(), logger.NewForTests())
		r, err := NewRedis(ctx, &RedisConfig{Addr: mr.Addr()})
		require.NoError(t, err)
		c := NewRedisText(r, time.Minute)
		defer c.Close()

		require.NoError(t, c.Set(ctx, "doc-1", "extracted text"))
		v, err := c.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "extracted text", v)
		assert.True(t, mr.Exists(textKeyPrefix+"doc-1"))
		assert.Equal(t, time.Minute, mr.TTL(textKeyPrefix+"doc-1"))

		mr.FastForward(2 * time.Minute)
		_, err = c.Get(ctx, "doc-1")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Should fail fast when the server is unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, err := NewRedis(t.Context(), &RedisConfig{Addr: addr, PingTimeout: 200 * time.Millisecond})
		assert.ErrorContains(t, err, "pinging Redis server")
	})

	t.Run("Should tolerate double close", func(t *testing.T) {
		mr := miniredis.RunT(t)
		r, err := NewRedis(t.Context(), &RedisConfig{Addr: mr.Addr()})
		require.NoError(t, err)
		assert.NoError(t, r.Close())
		assert.NoError(t, r.Close())
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Run("Should select driver by name", func(t *testing.T) {
		cfg := config.Default().Sources
		c, err := NewFromConfig(t.Context(), &cfg)
		require.NoError(t, err)
		assert.IsType(t, &Memory{}, c)

		cfg.CacheDriver = DriverNone
		c, err = NewFromConfig(t.Context(), &cfg)
		require.NoError(t, err)
		assert.Equal(t, Nop(), c)

		mr := miniredis.RunT(t)
		cfg.CacheDriver = DriverRedis
		cfg.RedisAddr = mr.Addr()
		c, err = NewFromConfig(t.Context(), &cfg)
		require.NoError(t, err)
		assert.IsType(t, &RedisText{}, c)
		assert.NoError(t, c.Close())
	})

	t.Run("Should reject unknown drivers", func(t *testing.T) {
		cfg := config.Default().Sources
		cfg.CacheDriver = "memcached"
		_, err := NewFromConfig(t.Context(), &cfg)
		assert.ErrorContains(t, err, "unknown cache driver")
	})
}
