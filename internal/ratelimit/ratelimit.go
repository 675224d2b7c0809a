// Package ratelimit provides the two limiter shapes the orchestrator wires
// one per external service: a token bucket for burst-tolerant quotas, and a
// FIFO interval limiter for services that require a strict minimum spacing
// between requests and expose Retry-After hints.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is satisfied by both TokenBucket and IntervalLimiter.
type Limiter interface {
	// Acquire blocks until a slot is available or ctx is cancelled.
	Acquire(ctx context.Context) error
}

// TokenBucket wraps golang.org/x/time/rate, which already implements the
// refill-at-a-fixed-rate/capped-at-burst semantics
// for; FIFO ordering among waiters is one of rate.Limiter's own guarantees.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket builds a limiter refilling maxPerSecond tokens per second,
// capped at burstSize.
func NewTokenBucket(maxPerSecond float64, burstSize int) *TokenBucket {
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(maxPerSecond), burstSize),
	}
}

// Acquire blocks until a token is available or ctx is cancelled.
func (b *TokenBucket) Acquire(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// IntervalLimiter guarantees that any two successful Acquire calls are
// separated by at least interval, draining waiters strictly in arrival
// order. HandleRetryAfter lets a caller that received a 429 push the next
// slot forward without disturbing waiters already queued ahead of it.
type IntervalLimiter struct {
	mu         sync.Mutex
	interval   time.Duration
	nextSlotAt time.Time
	queue      chan struct{}
}

// NewIntervalLimiter builds a limiter enforcing at least interval between
// grants.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		interval: interval,
		queue:    make(chan struct{}, 1),
	}
}

// Acquire blocks until the next permissible slot, preserving FIFO order
// among concurrent callers via the single-slot queue channel as a mutex
// that yields fairly under goroutine scheduling.
func (l *IntervalLimiter) Acquire(ctx context.Context) error {
	select {
	case l.queue <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.queue }()

	l.mu.Lock()
	wait := time.Until(l.nextSlotAt)
	l.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	l.mu.Lock()
	now := time.Now()
	if now.Before(l.nextSlotAt) {
		now = l.nextSlotAt
	}

	l.nextSlotAt = now.Add(l.interval)
	l.mu.Unlock()

	return nil
}

// HandleRetryAfter pushes the next grantable slot forward by at least
// seconds, delaying every waiter still queued behind the caller.
func (l *IntervalLimiter) HandleRetryAfter(seconds float64) {
	delay := time.Duration(seconds * float64(time.Second))

	l.mu.Lock()
	defer l.mu.Unlock()

	candidate := time.Now().Add(delay)
	if candidate.After(l.nextSlotAt) {
		l.nextSlotAt = candidate
	}
}
