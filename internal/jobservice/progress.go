package jobservice

import (
	"context"
	"sync"
	"time"
)

// ProgressLimiter wraps a write-through callback and drops intermediate
// updates arriving inside the same P_update window, always letting the
// final (fraction >= 1.0) update through. Grounded on the original
// worker's status_queue/heartbeat convention of applying only the last
// queued update (spec.md §4.2 step 4, SPEC_FULL.md's "Progress
// rate-limiting" note).
type ProgressLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	write    func(ctx context.Context, fraction float64, message string) error
}

// NewProgressLimiter wraps write so that calls closer together than
// interval are dropped.
func NewProgressLimiter(interval time.Duration, write func(ctx context.Context, fraction float64, message string) error) *ProgressLimiter {
	return &ProgressLimiter{interval: interval, write: write}
}

// Report applies the rate limit and forwards surviving updates to write.
// Errors from write are swallowed, the final update's included: progress
// writes are best-effort, and the caller's own terminal status transition
// decides the job's outcome.
func (p *ProgressLimiter) Report(ctx context.Context, fraction float64, message string) {
	final := fraction >= 1.0

	p.mu.Lock()
	now := time.Now()
	due := final || now.Sub(p.last) >= p.interval
	if due {
		p.last = now
	}
	p.mu.Unlock()

	if !due {
		return
	}

	if err := p.write(ctx, fraction, message); err != nil && final {
		// The caller's outer error handling (kernel success/failure path)
		// still governs the terminal status transition; a failed final
		// progress write is not fatal on its own.
		_ = err
	}
}
