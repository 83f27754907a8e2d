// Package ratelimit paces requests against both APIs. The orchestrator
// depends on the Waiter interface, not the concrete limiter, so tests can
// substitute a no-op instead of sleeping.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Waiter blocks until the next request is allowed to proceed.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Limiter is a token bucket Waiter.
type Limiter struct {
	bucket *rate.Limiter
}

// New returns a Limiter allowing rps requests per second with the given
// burst. Non-positive values fall back to 1 req/s, burst 1.
func New(rps float64, burst int) *Limiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}

// Unlimited is a Waiter that never blocks. Used in tests and for the
// offline list command.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}
