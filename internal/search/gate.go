package search

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate spaces upstream calls process-wide. Callers queue in Wait in
// arrival order and each is released no sooner than interval after the
// previous release.
type Gate struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewGate creates a Gate with the given minimum spacing. A non-positive
// interval disables spacing.
func NewGate(interval time.Duration) *Gate {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Gate{
		limiter:  rate.NewLimiter(limit, 1),
		interval: interval,
	}
}

// Wait blocks until the caller may start an upstream call. A caller whose
// ctx ends first gives its slot back and gets ctx's error.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Interval returns the configured minimum spacing.
func (g *Gate) Interval() time.Duration {
	return g.interval
}
