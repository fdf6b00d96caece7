package gateway

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/plexify/plexify/engine/core"
)

// ThrottleError reports a vendor call refused by the local throttle before it
// reached the network.
type ThrottleError struct {
	Provider core.ProviderName
	Reason   string
	Err      error
}

func (e *ThrottleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s throttled: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s throttled: %s", e.Provider, e.Reason)
}

func (e *ThrottleError) Unwrap() error {
	return e.Err
}

func (e *ThrottleError) StatusCode() int {
	return http.StatusTooManyRequests
}

// ThrottleSettings bounds calls to one vendor. Zero Concurrency disables the throttle.
type ThrottleSettings struct {
	Concurrency       int
	QueueSize         int
	RequestsPerMinute int
}

// ThrottleStats is a point-in-time view of the throttle counters.
type ThrottleStats struct {
	Active   int32
	Queued   int32
	Rejected int64
	Total    int64
}

// Throttle caps in-flight vendor calls with a semaphore, queues a bounded
// number of waiters and optionally paces requests per minute.
type Throttle struct {
	provider core.ProviderName
	sem      *semaphore.Weighted
	queue    *semaphore.Weighted
	limiter  *rate.Limiter

	active   atomic.Int32
	queued   atomic.Int32
	rejected atomic.Int64
	total    atomic.Int64
}

// NewThrottle returns nil when settings.Concurrency is not positive; a nil
// Throttle admits every call.
func NewThrottle(provider core.ProviderName, settings ThrottleSettings) *Throttle {
	if settings.Concurrency <= 0 {
		return nil
	}
	t := &Throttle{
		provider: provider,
		sem:      semaphore.NewWeighted(int64(settings.Concurrency)),
	}
	if settings.QueueSize > 0 {
		t.queue = semaphore.NewWeighted(int64(settings.QueueSize))
	}
	if settings.RequestsPerMinute > 0 {
		perSecond := float64(settings.RequestsPerMinute) / 60.0
		t.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(math.Ceil(perSecond))))
	}
	return t
}

// Acquire reserves a slot. Every successful Acquire must be paired with Release.
func (t *Throttle) Acquire(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.total.Add(1)
	if !t.sem.TryAcquire(1) {
		if err := t.wait(ctx); err != nil {
			return err
		}
	}
	t.active.Add(1)
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			t.Release()
			t.rejected.Add(1)
			return &ThrottleError{Provider: t.provider, Reason: "request rate wait canceled", Err: err}
		}
	}
	return nil
}

func (t *Throttle) wait(ctx context.Context) error {
	if t.queue == nil || !t.queue.TryAcquire(1) {
		t.rejected.Add(1)
		reason := "concurrency limit reached"
		if t.queue != nil {
			reason = "queue is full"
		}
		return &ThrottleError{Provider: t.provider, Reason: reason}
	}
	t.queued.Add(1)
	defer func() {
		t.queue.Release(1)
		t.queued.Add(-1)
	}()
	if err := t.sem.Acquire(ctx, 1); err != nil {
		t.rejected.Add(1)
		return &ThrottleError{Provider: t.provider, Reason: "wait canceled", Err: err}
	}
	return nil
}

func (t *Throttle) Release() {
	if t == nil {
		return
	}
	t.sem.Release(1)
	t.active.Add(-1)
}

func (t *Throttle) Stats() ThrottleStats {
	if t == nil {
		return ThrottleStats{}
	}
	return ThrottleStats{
		Active:   t.active.Load(),
		Queued:   t.queued.Load(),
		Rejected: t.rejected.Load(),
		Total:    t.total.Load(),
	}
}
