package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plexify/plexify/pkg/logger"
)

const (
	fallbackRedisPingTimeout time.Duration = 5 * time.Second
	textKeyPrefix                          = "plexify:source-text:"
)

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PingTimeout time.Duration
}

// Redis wraps a go-redis client with logged connect and idempotent close.
type Redis struct {
	client redis.UniversalClient
	config *RedisConfig
	once   sync.Once
	ctx    context.Context
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(ctx context.Context, cfg *RedisConfig) (*Redis, error) {
	log := logger.FromContext(ctx).With("component", "infra_redis")
	ctx = logger.ContextWithLogger(ctx, log)
	if cfg == nil || cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := buildRedisClient(cfg)
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = fallbackRedisPingTimeout
	}
	if err := pingRedis(ctx, client, timeout); err != nil {
		client.Close()
		return nil, err
	}
	log.Info("Redis connection established", "cache_driver", DriverRedis, "addr", cfg.Addr, "db", cfg.DB)
	return &Redis{client: client, config: cfg, ctx: ctx}, nil
}

func buildRedisClient(cfg *RedisConfig) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func pingRedis(ctx context.Context, client redis.UniversalClient, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("pinging Redis server (timeout=%s): %w", timeout, err)
	}
	return nil
}

func (r *Redis) Client() redis.UniversalClient {
	return r.client
}

// Close shuts down the Redis connection.
func (r *Redis) Close() error {
	var err error
	r.once.Do(func() {
		err = r.client.Close()
		if err != nil {
			logger.FromContext(r.ctx).Error("Redis connection close failed", "error", err)
		} else {
			logger.FromContext(r.ctx).Debug("Redis connection closed")
		}
	})
	return err
}

// RedisText is a TextCache backed by Redis string keys.
type RedisText struct {
	redis *Redis
	ttl   time.Duration
}

func NewRedisText(r *Redis, ttl time.Duration) *RedisText {
	return &RedisText{redis: r, ttl: ttl}
}

func (c *RedisText) Get(ctx context.Context, key string) (string, error) {
	v, err := c.redis.client.Get(ctx, textKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

func (c *RedisText) Set(ctx context.Context, key, value string) error {
	if err := c.redis.client.Set(ctx, textKeyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Client exposes the underlying connection so other components can share it.
func (c *RedisText) Client() redis.UniversalClient {
	return c.redis.Client()
}

func (c *RedisText) Close() error {
	return c.redis.Close()
}
