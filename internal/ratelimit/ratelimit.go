// Package ratelimit configures the per-client request budgets enforced by
// the API. Counting is done by httprate, in process or in Redis.
package ratelimit

import (
	"time"

	"github.com/go-chi/httprate"
)

// Limiter is one request budget: Limit hits per Window for each client.
type Limiter struct {
	Limit  int
	Window time.Duration
	// Counter stores the hit counts. Limiters that should not share
	// counts need distinct counters.
	Counter httprate.LimitCounter
}

// NewMemoryLimiter counts in process memory. Counts are not shared
// between replicas.
func NewMemoryLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		Limit:   limit,
		Window:  window,
		Counter: httprate.NewLocalLimitCounter(window),
	}
}
