package usage

import (
	"context"
	"time"
)

// Component names the caller a vendor call was made on behalf of, such as an
// agent id, "podcast", "tts" or "gateway".
type Component string

const (
	ComponentGateway Component = "gateway"
	ComponentPodcast Component = "podcast"
	ComponentTTS     Component = "tts"
)

// Snapshot is the token usage of a single vendor call.
type Snapshot struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// TotalTokens returns prompt plus completion tokens.
func (s Snapshot) TotalTokens() int {
	return s.PromptTokens + s.CompletionTokens
}

// Metrics captures observability hooks for vendor calls so callers can emit
// counters without depending on concrete monitoring implementations.
type Metrics interface {
	RecordSuccess(
		ctx context.Context,
		component Component,
		provider string,
		model string,
		promptTokens int,
		completionTokens int,
		latency time.Duration,
	)
	RecordFailure(
		ctx context.Context,
		component Component,
		provider string,
		model string,
		latency time.Duration,
	)
}

type nopMetrics struct{}

// Nop returns a Metrics implementation that records nothing.
func Nop() Metrics {
	return nopMetrics{}
}

func (nopMetrics) RecordSuccess(context.Context, Component, string, string, int, int, time.Duration) {}

func (nopMetrics) RecordFailure(context.Context, Component, string, string, time.Duration) {}

// Record reports snap through m, treating a nil m as Nop.
func Record(ctx context.Context, m Metrics, component Component, snap Snapshot, latency time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.RecordFailure(ctx, component, snap.Provider, snap.Model, latency)
		return
	}
	m.RecordSuccess(ctx, component, snap.Provider, snap.Model, snap.PromptTokens, snap.CompletionTokens, latency)
}
