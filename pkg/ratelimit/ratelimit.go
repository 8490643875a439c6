// Package ratelimit paces outbound requests. The search client uses it
// between result pages and the enricher uses it between lead-page fetches.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter spaces operations at least one interval apart, with an optional
// random jitter added on top so request timing does not look mechanical.
// Safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
	jitter   float64
	stopped  bool
}

// NewLimiter builds a limiter for the given requests per second. jitter is a
// fraction of the interval in [0, 1]; out-of-range values are clamped. An
// rps of zero or less disables pacing entirely.
func NewLimiter(rps float64, jitter float64) *Limiter {
	l := &Limiter{}
	if rps > 0 {
		l.interval = time.Duration(float64(time.Second) / rps)
	}
	switch {
	case jitter < 0:
		l.jitter = 0
	case jitter > 1:
		l.jitter = 1
	default:
		l.jitter = jitter
	}
	return l
}

// reserve claims the next slot and returns how long the caller must sleep.
func (l *Limiter) reserve(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped || l.interval == 0 {
		return 0
	}

	delay := l.next.Sub(now)
	if delay < 0 {
		delay = 0
	}
	if l.jitter > 0 {
		delay += time.Duration(rand.Float64() * l.jitter * float64(l.interval))
	}
	l.next = now.Add(delay + l.interval)
	return delay
}

// Wait blocks until the caller's reserved slot arrives or the context is
// canceled. The first call on a fresh limiter returns immediately.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	delay := l.reserve(time.Now())
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop disables pacing; subsequent Wait calls return immediately.
func (l *Limiter) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
}
