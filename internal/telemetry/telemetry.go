// Package telemetry aggregates per-key usage counters for every request the
// gateway finishes, successful or not. Aggregates feed abuse auditing (a key
// producing mostly 403s is visible here) and the developer usage endpoint.
package telemetry

import (
	"sync"
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/monitoring"
)

// UnauthenticatedKey is the bucket for requests whose API key could not be
// resolved. Aggregate counters still see them; no per-key history is kept.
const UnauthenticatedKey = "unauthenticated"

// UsageStats aggregates one key's request history.
type UsageStats struct {
	Total       int64            `json:"total"`
	Success     int64            `json:"success"`
	Errors      int64            `json:"errors"`
	PerEndpoint map[string]int64 `json:"per_endpoint"`
	PerDay      map[string]int64 `json:"per_day"`
}

// Recorder collects usage stats per API key.
type Recorder struct {
	mu    sync.Mutex
	byKey map[string]*UsageStats
}

// NewRecorder creates an empty usage recorder.
func NewRecorder() *Recorder {
	return &Recorder{byKey: make(map[string]*UsageStats)}
}

// Record counts one completed request. endpoint is the matched path template
// (or the raw path when no endpoint resolved). The whole update happens under
// one lock acquisition, so a cancelled caller observes either all of it or
// none of it.
func (r *Recorder) Record(keyID, endpoint string, at time.Time, success bool) {
	day := at.Format("2006-01-02")

	r.mu.Lock()
	stats, ok := r.byKey[keyID]
	if !ok {
		stats = &UsageStats{
			PerEndpoint: make(map[string]int64),
			PerDay:      make(map[string]int64),
		}
		r.byKey[keyID] = stats
	}
	stats.Total++
	if success {
		stats.Success++
	} else {
		stats.Errors++
	}
	stats.PerEndpoint[endpoint]++
	stats.PerDay[day]++
	r.mu.Unlock()

	monitoring.RecordGatewayRequest(endpoint, success)
}

// Snapshot returns a copy of one key's stats.
func (r *Recorder) Snapshot(keyID string) (UsageStats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.byKey[keyID]
	if !ok {
		return UsageStats{}, false
	}
	return copyStats(stats), true
}

// All returns a copy of every key's stats.
func (r *Recorder) All() map[string]UsageStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]UsageStats, len(r.byKey))
	for keyID, stats := range r.byKey {
		out[keyID] = copyStats(stats)
	}
	return out
}

func copyStats(stats *UsageStats) UsageStats {
	out := UsageStats{
		Total:       stats.Total,
		Success:     stats.Success,
		Errors:      stats.Errors,
		PerEndpoint: make(map[string]int64, len(stats.PerEndpoint)),
		PerDay:      make(map[string]int64, len(stats.PerDay)),
	}
	for k, v := range stats.PerEndpoint {
		out.PerEndpoint[k] = v
	}
	for k, v := range stats.PerDay {
		out.PerDay[k] = v
	}
	return out
}
