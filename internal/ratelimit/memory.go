package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/clock"
)

// MemoryLimiter counts requests per (key, hour bucket) in process memory.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[windowKey]int
	pruned  time.Time
	clock   clock.Clock
}

type windowKey struct {
	keyID  string
	bucket time.Time
}

// NewMemoryLimiter creates an in-memory fixed-window limiter driven by clk.
func NewMemoryLimiter(clk clock.Clock) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[windowKey]int),
		clock:   clk,
	}
}

// Allow increments the counter for the current bucket and admits the request
// if the pre-increment count was below the ceiling. Rejected attempts are
// counted too, so a keyed caller hammering past its ceiling keeps being
// rejected rather than sneaking in between checks.
func (l *MemoryLimiter) Allow(ctx context.Context, keyID string, ceiling int) (*Result, error) {
	now := l.clock.Now()
	bucket := bucketStart(now)
	wk := windowKey{keyID: keyID, bucket: bucket}

	l.mu.Lock()
	count := l.windows[wk]
	l.windows[wk] = count + 1
	l.pruneLocked(bucket)
	l.mu.Unlock()

	remaining := ceiling - count - 1
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count < ceiling,
		Remaining: remaining,
		Limit:     ceiling,
		ResetAt:   bucket.Add(time.Hour),
	}, nil
}

// pruneLocked drops buckets older than the previous hour. It sweeps at most
// once per bucket change, so the map never holds more than two buckets per
// active key and steady-state admissions stay O(1).
func (l *MemoryLimiter) pruneLocked(current time.Time) {
	if current.Equal(l.pruned) {
		return
	}
	l.pruned = current
	cutoff := current.Add(-time.Hour)
	for wk := range l.windows {
		if wk.bucket.Before(cutoff) {
			delete(l.windows, wk)
		}
	}
}
