package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/plexify/plexify/engine/infra/monitoring/middleware"
	"github.com/plexify/plexify/engine/llm/usage"
	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
)

const meterName = "plexify"

// Service owns the meter provider and the Prometheus registry behind /metrics.
type Service struct {
	meter             metric.Meter
	exporter          *prometheus.Exporter
	provider          *sdkmetric.MeterProvider
	registry          *prom.Registry
	config            *config.MonitoringConfig
	usage             usage.Metrics
	initialized       bool
	initializationErr error
}

func newDisabledService(cfg *config.MonitoringConfig, initErr error) *Service {
	return &Service{
		config:            cfg,
		meter:             noop.NewMeterProvider().Meter(meterName),
		usage:             usage.Nop(),
		initialized:       false,
		initializationErr: initErr,
	}
}

func validateConfig(cfg *config.MonitoringConfig) error {
	switch {
	case cfg.Path == "":
		return fmt.Errorf("monitoring path cannot be empty")
	case cfg.Path[0] != '/':
		return fmt.Errorf("monitoring path must start with '/': got %s", cfg.Path)
	case strings.HasPrefix(cfg.Path, "/api/"):
		return fmt.Errorf("monitoring path cannot be under /api/")
	case strings.ContainsRune(cfg.Path, '?'):
		return fmt.Errorf("monitoring path cannot contain query parameters")
	}
	return nil
}

// NewService creates the monitoring service with a Prometheus exporter.
func NewService(ctx context.Context, cfg *config.MonitoringConfig) (*Service, error) {
	log := logger.FromContext(ctx)
	if cfg == nil {
		def := config.Default().Monitoring
		cfg = &def
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		log.Debug("Monitoring disabled, using no-op meter")
		return newDisabledService(cfg, nil), nil
	}
	registry := prom.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(meterName)
	usageMetrics, err := newLLMUsageMetrics(meter)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize usage metrics: %w", err)
	}
	service := &Service{
		meter:       meter,
		exporter:    exporter,
		provider:    provider,
		registry:    registry,
		config:      cfg,
		usage:       usageMetrics,
		initialized: true,
	}
	InitSystemMetrics(ctx, meter)
	log.Info("Monitoring service initialized", "path", cfg.Path)
	return service, nil
}

// NewServiceWithFallback degrades to no-op instruments when initialization fails.
func NewServiceWithFallback(ctx context.Context, cfg *config.MonitoringConfig) *Service {
	service, err := NewService(ctx, cfg)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to initialize monitoring, using no-op implementation", "error", err)
		if cfg == nil {
			def := config.Default().Monitoring
			cfg = &def
		}
		return newDisabledService(cfg, err)
	}
	return service
}

func (s *Service) Meter() metric.Meter {
	return s.meter
}

// UsageMetrics returns the vendor call recorder.
func (s *Service) UsageMetrics() usage.Metrics {
	return s.usage
}

// Path is where the exporter handler should be mounted.
func (s *Service) Path() string {
	return s.config.Path
}

// GinMiddleware returns the HTTP metrics middleware, or a pass-through when disabled.
func (s *Service) GinMiddleware() gin.HandlerFunc {
	if !s.initialized {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return middleware.HTTPMetrics(s.meter)
}

// ExporterHandler serves the Prometheus exposition format.
func (s *Service) ExporterHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.initialized {
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, err := w.Write([]byte("Monitoring service not initialized")); err != nil {
				logger.FromContext(r.Context()).Error("Failed to write response", "error", err)
			}
			return
		}
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s.provider != nil {
		return s.provider.Shutdown(ctx)
	}
	return nil
}

func (s *Service) IsInitialized() bool {
	return s.initialized
}

func (s *Service) InitializationError() error {
	return s.initializationErr
}

// SetAsGlobal installs the provider as the global OpenTelemetry meter provider.
func (s *Service) SetAsGlobal() {
	if s.provider != nil {
		otel.SetMeterProvider(s.provider)
	}
}
