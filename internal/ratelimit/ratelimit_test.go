package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_AllowsBurstThenThrottles(t *testing.T) {
	t.Parallel()

	b := NewTokenBucket(1000, 2)
	ctx := context.Background()

	require.NoError(t, b.Acquire(ctx))
	require.NoError(t, b.Acquire(ctx))

	start := time.Now()
	require.NoError(t, b.Acquire(ctx))
	assert.Greater(t, time.Since(start), time.Duration(0))
}

func TestTokenBucket_CancelledContext(t *testing.T) {
	t.Parallel()

	b := NewTokenBucket(1, 1)
	require.NoError(t, b.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, b.Acquire(ctx))
}

func TestIntervalLimiter_EnforcesMinimumSpacing(t *testing.T) {
	t.Parallel()

	l := NewIntervalLimiter(30 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))

	start := time.Now()
	require.NoError(t, l.Acquire(ctx))

	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestIntervalLimiter_FIFOOrdering(t *testing.T) {
	t.Parallel()

	l := NewIntervalLimiter(10 * time.Millisecond)
	ctx := context.Background()

	const n = 5

	order := make(chan int, n)

	for i := range n {
		go func(i int) {
			if err := l.Acquire(ctx); err == nil {
				order <- i
			}
		}(i)

		time.Sleep(time.Millisecond)
	}

	received := make([]int, 0, n)
	for range n {
		select {
		case v := <-order:
			received = append(received, v)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for acquires")
		}
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, received)
}

func TestIntervalLimiter_HandleRetryAfterDelaysNextSlot(t *testing.T) {
	t.Parallel()

	l := NewIntervalLimiter(5 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	l.HandleRetryAfter(0.05)

	start := time.Now()
	require.NoError(t, l.Acquire(ctx))

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestIntervalLimiter_CancelledContext(t *testing.T) {
	t.Parallel()

	l := NewIntervalLimiter(time.Hour)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, l.Acquire(ctx))
}
