package gateway

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexify/plexify/engine/core"
)

func TestThrottle(t *testing.T) {
	t.Run("Should admit every call when disabled", func(t *testing.T) {
		th := NewThrottle(core.ProviderAnthropic, ThrottleSettings{})
		assert.Nil(t, th)
		require.NoError(t, th.Acquire(t.Context()))
		th.Release()
		assert.Equal(t, ThrottleStats{}, th.Stats())
	})

	t.Run("Should reject when the slot is taken and no queue is configured", func(t *testing.T) {
		th := NewThrottle(core.ProviderAnthropic, ThrottleSettings{Concurrency: 1})
		require.NoError(t, th.Acquire(t.Context()))
		err := th.Acquire(t.Context())
		var throttleErr *ThrottleError
		require.ErrorAs(t, err, &throttleErr)
		assert.Equal(t, http.StatusTooManyRequests, throttleErr.StatusCode())
		assert.Contains(t, err.Error(), "concurrency limit reached")
		th.Release()
		stats := th.Stats()
		assert.Equal(t, int32(0), stats.Active)
		assert.Equal(t, int64(1), stats.Rejected)
		assert.Equal(t, int64(2), stats.Total)
	})

	t.Run("Should queue waiters until a slot frees", func(t *testing.T) {
		th := NewThrottle(core.ProviderAnthropic, ThrottleSettings{Concurrency: 1, QueueSize: 1})
		require.NoError(t, th.Acquire(t.Context()))
		done := make(chan error, 1)
		go func() {
			done <- th.Acquire(context.Background())
		}()
		require.Eventually(t, func() bool { return th.Stats().Queued == 1 }, time.Second, time.Millisecond)
		err := th.Acquire(t.Context())
		assert.ErrorContains(t, err, "queue is full")
		th.Release()
		require.NoError(t, <-done)
		assert.Equal(t, int32(1), th.Stats().Active)
		th.Release()
	})

	t.Run("Should give up waiting when the context ends", func(t *testing.T) {
		th := NewThrottle(core.ProviderAnthropic, ThrottleSettings{Concurrency: 1, QueueSize: 4})
		require.NoError(t, th.Acquire(t.Context()))
		ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
		defer cancel()
		err := th.Acquire(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		th.Release()
	})
}
