package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNone   = "none"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// TextCache stores extracted document text keyed by a content fingerprint.
type TextCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// NewFromConfig builds the cache selected by cfg.CacheDriver.
func NewFromConfig(ctx context.Context, cfg *config.SourcesConfig) (TextCache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sources config is required")
	}
	log := logger.FromContext(ctx)
	switch cfg.CacheDriver {
	case DriverMemory, "":
		log.Debug("Using in-memory text cache", "size", cfg.CacheSize, "ttl", cfg.CacheTTL)
		return NewMemory(cfg.CacheSize, cfg.CacheTTL), nil
	case DriverRedis:
		r, err := NewRedis(ctx, &RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword.Value(),
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return NewRedisText(r, cfg.CacheTTL), nil
	case DriverNone:
		return Nop(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
	}
}

// Memory is a size-bounded, expiring in-process cache.
type Memory struct {
	lru *lru.LRU[string, string]
}

func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 1
	}
	return &Memory{lru: lru.NewLRU[string, string](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, ok := m.lru.Get(key)
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.lru.Add(key, value)
	return nil
}

func (m *Memory) Len() int {
	return m.lru.Len()
}

func (m *Memory) Close() error {
	m.lru.Purge()
	return nil
}

type nopCache struct{}

// Nop returns a cache that never stores anything.
func Nop() TextCache {
	return nopCache{}
}

func (nopCache) Get(context.Context, string) (string, error) { return "", ErrCacheMiss }
func (nopCache) Set(context.Context, string, string) error { return nil }
func (nopCache) Close() error { return nil }
