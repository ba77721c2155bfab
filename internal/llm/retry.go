package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryProvider is a decorator that retries rate-limited calls with
// exponential backoff. Every other failure is returned on the spot.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	log    logrus.FieldLogger

	// sleep waits for d or until ctx is done. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig, log logrus.FieldLogger) Provider {
	return newRetryProvider(p, cfg, log)
}

func newRetryProvider(p Provider, cfg RetryConfig, log logrus.FieldLogger) *RetryProvider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if log == nil {
		log = discardLogger()
	}
	return &RetryProvider{inner: p, config: cfg, log: log, sleep: sleepCtx}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for attempt := range r.config.MaxAttempts {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !r.shouldRetry(err) {
			return nil, err
		}

		// Last attempt, no point waiting.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		r.log.WithFields(logrus.Fields{
			"purpose": PurposeFrom(ctx),
			"attempt": attempt + 1,
			"wait":    wait,
		}).Warn("rate limited, backing off")

		if err := r.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, &ErrRateLimitExhausted{Attempts: r.config.MaxAttempts, Err: lastErr}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// shouldRetry reports whether err is a rate-limit signal. Context errors,
// malformed responses and outages are not transient in this sense.
func (r *RetryProvider) shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return IsRateLimited(err)
}

// backoff computes the wait duration for the given attempt.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if r.config.MaxWait > 0 && wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	if r.config.Jitter > 0 {
		wait += wait * r.config.Jitter * (2*rand.Float64() - 1)
	}
	if wait < 0 {
		wait = 0
	}

	// A server-provided RetryAfter is a floor, never a shortcut.
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > time.Duration(wait) {
		return rl.RetryAfter
	}
	return time.Duration(wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
