package ratelimit

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.opentelemetry.io/otel/metric"

	"github.com/plexify/plexify/pkg/logger"
)

// Manager limits requests per client IP.
type Manager struct {
	cfg     *Config
	limiter *limiter.Limiter
	metrics *blockMetrics
	shared  bool
}

// NewManager builds a limiter backed by Redis when a client is given and an
// in-process store otherwise.
func NewManager(cfg *Config, client redis.UniversalClient) (*Manager, error) {
	return NewManagerWithMetrics(cfg, client, nil)
}

func NewManagerWithMetrics(cfg *Config, client redis.UniversalClient, meter metric.Meter) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := limiter.StoreOptions{
		Prefix:          cfg.Prefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
		MaxRetry:        limiter.DefaultMaxRetry,
	}
	var store limiter.Store
	if client != nil {
		s, err := sredis.NewStoreWithOptions(client, opts)
		if err != nil {
			return nil, fmt.Errorf("create redis rate limit store: %w", err)
		}
		store = s
	} else {
		store = memory.NewStoreWithOptions(opts)
	}
	m, err := newBlockMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create rate limit metrics: %w", err)
	}
	return &Manager{
		cfg:     cfg,
		limiter: limiter.New(store, cfg.Rate.ToLimiterRate()),
		metrics: m,
		shared:  client != nil,
	}, nil
}

// Shared reports whether counters live in Redis.
func (m *Manager) Shared() bool {
	return m.shared
}

// Middleware returns the gin handler enforcing the limit.
func (m *Manager) Middleware() gin.HandlerFunc {
	handle := mgin.NewMiddleware(
		m.limiter,
		mgin.WithLimitReachedHandler(m.onLimitReached),
		mgin.WithErrorHandler(onError),
	)
	return func(c *gin.Context) {
		if m.excluded(c.Request.URL.Path) {
			c.Next()
			return
		}
		handle(c)
	}
}

func (m *Manager) excluded(path string) bool {
	for _, p := range m.cfg.ExcludedPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (m *Manager) onLimitReached(c *gin.Context) {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	m.metrics.incrementBlocked(c.Request.Context(), route)
	logger.FromContext(c.Request.Context()).Warn("Rate limit reached", "client_ip", c.ClientIP(), "route", route)
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
}

// onError lets the request through when the store is unreachable.
func onError(c *gin.Context, err error) {
	logger.FromContext(c.Request.Context()).Error("Rate limiter store failed", "error", err)
	c.Next()
}
