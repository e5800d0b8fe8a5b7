// Package ratelimit implements fixed-window request counting per API key.
//
// The window is one wall-clock hour (the bucket is now truncated to the
// hour). A fixed window keeps O(1) state per active key and is trivially
// deterministic to test, at the documented cost of admitting up to twice the
// ceiling across a window boundary. Do not swap in a sliding window without
// flagging the behavior change.
package ratelimit

import (
	"context"
	"time"
)

// Result reports a single admission decision.
type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Limiter decides whether a request for the given key is admitted under its
// hourly ceiling. Allow increments the (key, bucket) counter and reports
// whether the pre-increment count was below the ceiling.
type Limiter interface {
	Allow(ctx context.Context, keyID string, ceiling int) (*Result, error)
}

// bucketStart returns the wall-clock-aligned hour bucket containing t.
func bucketStart(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}
