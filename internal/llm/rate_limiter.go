package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles LLM calls before they reach the provider so a burst
// of chat requests cannot exhaust the account's per-minute quota.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows requestsPerMinute calls with a burst of the same size.
// A non-positive value returns a limiter that never waits.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		return &RateLimiter{}
	}
	every := time.Minute / time.Duration(requestsPerMinute)
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(every), requestsPerMinute)}
}

// Wait blocks until a call is allowed or ctx is done
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil || r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}
