package fingerprint

import (
	"context"
	"errors"
	"time"

	"github.com/oshokin/audio-pipeline/internal/cache"
	"github.com/oshokin/audio-pipeline/internal/errs"
	"github.com/oshokin/audio-pipeline/internal/model"
	"github.com/oshokin/audio-pipeline/internal/ratelimit"
)

// retryableLimiter is implemented by limiters that can be pushed forward on
// a 429, currently only *ratelimit.IntervalLimiter.
type retryableLimiter interface {
	HandleRetryAfter(seconds float64)
}

// Engine implements the fingerprint(filePath) operation:
// cache lookup, rate-limited fpcalc invocation, AcoustID lookup with
// retry, cache store.
type Engine struct {
	fpcalcPath    string
	fpcalcTimeout time.Duration
	minScore      float64
	retryAttempts int

	limiter ratelimit.Limiter
	client  *AcoustIDClient
	cache   *cache.Typed[[]model.FingerprintResult]
}

// NewEngine builds a fingerprint Engine.
func NewEngine(
	fpcalcPath string,
	fpcalcTimeout time.Duration,
	minScore float64,
	retryAttempts int,
	limiter ratelimit.Limiter,
	client *AcoustIDClient,
	store cache.Store,
) *Engine {
	return &Engine{
		fpcalcPath:    fpcalcPath,
		fpcalcTimeout: fpcalcTimeout,
		minScore:      minScore,
		retryAttempts: retryAttempts,
		limiter:       limiter,
		client:        client,
		cache:         cache.NewTyped[[]model.FingerprintResult](store, cache.TableFingerprints),
	}
}

// Fingerprint resolves filePath to a list of FingerprintResult, using
// cacheKey (the file's absolute path or content hash, per the caller's
// cache-backend policy) as the cache lookup key.
func (e *Engine) Fingerprint(ctx context.Context, filePath, cacheKey string) ([]model.FingerprintResult, error) {
	if cached, found, err := e.cache.Get(ctx, cacheKey); err != nil {
		return nil, err
	} else if found {
		return cached, nil
	}

	if err := e.limiter.Acquire(ctx); err != nil {
		return nil, &errs.FingerprintError{FilePath: filePath, Reason: "cancelled while waiting for rate limiter", Cause: err}
	}

	fpcalcCtx, cancel := context.WithTimeout(ctx, e.fpcalcTimeout)
	duration, token, err := runFpcalc(fpcalcCtx, e.fpcalcPath, filePath)
	cancel()

	if err != nil {
		return nil, err
	}

	results, err := e.lookupWithRetry(ctx, token, duration)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Put(ctx, cacheKey, results); err != nil {
		return nil, err
	}

	return results, nil
}

// lookupWithRetry retries on 5xx/429/network timeouts with exponential
// backoff, honouring Retry-After on 429; any other 4xx (including an
// invalid API key) is returned untreated. Stops after retryAttempts.
func (e *Engine) lookupWithRetry(ctx context.Context, token string, duration float64) ([]model.FingerprintResult, error) {
	var lastErr error

	attempts := e.retryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	backoff := 500 * time.Millisecond

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := e.limiter.Acquire(ctx); err != nil {
				return nil, err
			}
		}

		results, err := e.client.Lookup(ctx, token, duration, e.minScore)
		if err == nil {
			return results, nil
		}

		lastErr = err

		var retryAfter *RetryAfterError
		if errors.As(err, &retryAfter) {
			if rl, ok := e.limiter.(retryableLimiter); ok {
				rl.HandleRetryAfter(retryAfter.Seconds)
			}

			if !sleepOrDone(ctx, time.Duration(retryAfter.Seconds*float64(time.Second))) {
				return nil, ctx.Err()
			}

			continue
		}

		var apiErr *errs.APIError
		// StatusCode 0 marks a transport-level failure (timeout, connection
		// error), which is retried like a 5xx.
		if errors.As(err, &apiErr) && (apiErr.IsRetryable() || apiErr.StatusCode == 0) {
			if !sleepOrDone(ctx, backoff) {
				return nil, ctx.Err()
			}

			backoff *= 2

			continue
		}

		// Not retryable (4xx other than 429, or an already-parsed
		// invalid-API-key error): surface untreated.
		return nil, err
	}

	return nil, lastErr
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
