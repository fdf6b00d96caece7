package ratelimit

import (
	"fmt"
	"time"

	"github.com/ulule/limiter/v3"

	"github.com/plexify/plexify/pkg/config"
)

// Config represents rate limiting configuration
type Config struct {
	Rate RateConfig

	// Prefix namespaces the counters kept in a shared store.
	Prefix string

	// Paths matched by prefix that are never limited.
	ExcludedPaths []string
}

// RateConfig represents a single rate limit configuration
type RateConfig struct {
	Period time.Duration
	Limit  int64
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() *Config {
	return &Config{
		Rate: RateConfig{
			Limit:  120,
			Period: time.Minute,
		},
		Prefix: "plexify:ratelimit:",
		ExcludedPaths: []string{
			"/api/health",
			"/metrics",
		},
	}
}

// FromAppConfig derives the limiter settings from the application config.
// The metrics path is always excluded.
func FromAppConfig(cfg *config.Config) *Config {
	out := DefaultConfig()
	out.Rate = RateConfig{Limit: cfg.RateLimit.Limit, Period: cfg.RateLimit.Period}
	if cfg.Monitoring.Path != "" && cfg.Monitoring.Path != "/metrics" {
		out.ExcludedPaths = append(out.ExcludedPaths, cfg.Monitoring.Path)
	}
	return out
}

// ToLimiterRate converts RateConfig to limiter.Rate
func (rc RateConfig) ToLimiterRate() limiter.Rate {
	return limiter.Rate{
		Period: rc.Period,
		Limit:  rc.Limit,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Rate.Limit <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.Rate.Period <= 0 {
		return fmt.Errorf("rate limit period must be positive")
	}
	return nil
}
