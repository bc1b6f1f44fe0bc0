package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Pacer spaces out sequential requests at a fixed rate. The batch client
// mimics human browsing cadence: one request at a time, with a pause between
// page fetches and between per-item mutations, independent of retry backoff.
type Pacer interface {
	// Wait blocks until the configured interval has passed since the last
	// recorded request, or the context is cancelled
	Wait(ctx context.Context) error
	// Reset clears the pacing state, e.g. between the listing and mutation phases
	Reset()
}

// IntervalPacer enforces a minimum interval between consecutive requests
type IntervalPacer struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex
}

// NewIntervalPacer creates a pacer with the given minimum interval.
// A non-positive interval disables pacing.
func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	return &IntervalPacer{interval: interval}
}

// Wait sleeps until the interval since the previous request has elapsed.
// The first call never waits.
func (p *IntervalPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	var remaining time.Duration
	if !p.last.IsZero() && p.interval > 0 {
		remaining = p.interval - time.Since(p.last)
	}
	p.mu.Unlock()

	if remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	p.last = time.Now()
	p.mu.Unlock()
	return nil
}

// Reset clears the last-request timestamp
func (p *IntervalPacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = time.Time{}
}
