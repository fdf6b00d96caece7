package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/plexify/plexify/engine/infra/monitoring/metrics"
	"github.com/plexify/plexify/pkg/logger"
)

type httpInstruments struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	total, err := meter.Int64Counter(
		metrics.MetricNameWithSubsystem("http", "requests_total"),
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		metrics.MetricNameWithSubsystem("http", "request_duration_seconds"),
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.HTTPDurationBuckets...),
	)
	if err != nil {
		return nil, err
	}
	inFlight, err := meter.Int64UpDownCounter(
		metrics.MetricNameWithSubsystem("http", "requests_in_flight"),
		metric.WithDescription("Currently active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}
	return &httpInstruments{total: total, duration: duration, inFlight: inFlight}, nil
}

// HTTPMetrics returns a Gin middleware that counts requests and records latency
// per route template. A nil meter yields a pass-through handler.
func HTTPMetrics(meter metric.Meter) gin.HandlerFunc {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	inst, err := newHTTPInstruments(meter)
	if err != nil {
		logger.Error("Failed to create HTTP metrics instruments", "error", err)
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		inst.inFlight.Add(ctx, 1)
		defer inst.inFlight.Add(ctx, -1)
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", path),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		inst.total.Add(ctx, 1, attrs)
		inst.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
