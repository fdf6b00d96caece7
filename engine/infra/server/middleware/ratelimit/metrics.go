package ratelimit

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/plexify/plexify/engine/infra/monitoring/metrics"
)

type blockMetrics struct {
	blocks metric.Int64Counter
}

func newBlockMetrics(meter metric.Meter) (*blockMetrics, error) {
	if meter == nil {
		return &blockMetrics{}, nil
	}
	counter, err := meter.Int64Counter(
		metrics.MetricName("rate_limit_blocks_total"),
		metric.WithDescription("Total number of requests blocked by rate limiting"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}
	return &blockMetrics{blocks: counter}, nil
}

// incrementBlocked is a no-op until a meter has been attached.
func (m *blockMetrics) incrementBlocked(ctx context.Context, route string) {
	if m == nil || m.blocks == nil {
		return
	}
	m.blocks.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}
