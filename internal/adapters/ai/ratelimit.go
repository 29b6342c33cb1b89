package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"maxwell/pkg/errors"
)

// RateLimiter gates outbound provider requests.
type RateLimiter interface {
	// Wait blocks until a request may proceed or the context is cancelled.
	Wait(ctx context.Context) error

	// Limit returns the current limit in requests per minute.
	Limit() float64
}

// tokenLimiter wraps golang.org/x/time/rate for per-provider throttling.
type tokenLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing reqPerMinute requests with a
// burst of roughly 10% of the rate.
func NewRateLimiter(reqPerMinute int) RateLimiter {
	if reqPerMinute <= 0 {
		return NewNoOpLimiter()
	}

	burst := reqPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &tokenLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(reqPerMinute)/60.0), burst),
	}
}

func (l *tokenLimiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter wait cancelled")
	}
	return nil
}

func (l *tokenLimiter) Limit() float64 {
	return float64(l.limiter.Limit()) * 60.0
}

// NoOpLimiter never blocks (testing or disabled rate limiting).
type NoOpLimiter struct{}

// NewNoOpLimiter creates a no-op rate limiter.
func NewNoOpLimiter() *NoOpLimiter {
	return &NoOpLimiter{}
}

// Wait always returns immediately without error.
func (l *NoOpLimiter) Wait(ctx context.Context) error { return nil }

// Limit reports no limit.
func (l *NoOpLimiter) Limit() float64 { return 0 }

// RateLimitError wraps rate limit related errors with provider context.
// It matches errors.ErrRateLimitExceeded so callers can branch on the
// sentinel without knowing the provider.
type RateLimitError struct {
	Provider ProviderName
	Limit    float64
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for provider %s (limit: %.0f req/min): %v", e.Provider, e.Limit, e.Err)
}

func (e *RateLimitError) Unwrap() []error {
	return []error{errors.ErrRateLimitExceeded, e.Err}
}
