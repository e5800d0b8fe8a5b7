package telemetry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSplitsSuccessAndErrors(t *testing.T) {
	r := NewRecorder()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	r.Record("key-1", "GET /walkers", at, true)
	r.Record("key-1", "GET /walkers", at, true)
	r.Record("key-1", "POST /bookings", at, false)

	stats, ok := r.Snapshot("key-1")
	require.True(t, ok)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Success)
	assert.Equal(t, int64(1), stats.Errors)
	assert.Equal(t, int64(2), stats.PerEndpoint["GET /walkers"])
	assert.Equal(t, int64(1), stats.PerEndpoint["POST /bookings"])
	assert.Equal(t, int64(3), stats.PerDay["2025-06-01"])
}

func TestRecordBucketsByDay(t *testing.T) {
	r := NewRecorder()

	r.Record("key-1", "GET /walkers", time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC), true)
	r.Record("key-1", "GET /walkers", time.Date(2025, 6, 2, 0, 1, 0, 0, time.UTC), true)

	stats, ok := r.Snapshot("key-1")
	require.True(t, ok)
	assert.Equal(t, int64(1), stats.PerDay["2025-06-01"])
	assert.Equal(t, int64(1), stats.PerDay["2025-06-02"])
}

func TestUnauthenticatedBucket(t *testing.T) {
	r := NewRecorder()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	r.Record(UnauthenticatedKey, "GET /walkers", at, false)

	stats, ok := r.Snapshot(UnauthenticatedKey)
	require.True(t, ok)
	assert.Equal(t, int64(1), stats.Errors)

	_, ok = r.Snapshot("key-1")
	assert.False(t, ok, "no history exists for keys that never recorded")
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRecorder()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	r.Record("key-1", "GET /walkers", at, true)

	stats, ok := r.Snapshot("key-1")
	require.True(t, ok)
	stats.PerEndpoint["GET /walkers"] = 999

	again, _ := r.Snapshot("key-1")
	assert.Equal(t, int64(1), again.PerEndpoint["GET /walkers"], "mutating a snapshot must not reach the recorder")
}

func TestRecordConcurrent(t *testing.T) {
	r := NewRecorder()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	const workers = 20
	const perWorker = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		success := w%2 == 0
		go func(success bool) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				r.Record("key-1", "GET /walkers", at, success)
			}
		}(success)
	}
	wg.Wait()

	stats, ok := r.Snapshot("key-1")
	require.True(t, ok)
	assert.Equal(t, int64(workers*perWorker), stats.Total)
	assert.Equal(t, int64(workers/2*perWorker), stats.Success)
	assert.Equal(t, int64(workers/2*perWorker), stats.Errors)
	assert.Equal(t, stats.Total, stats.Success+stats.Errors)
}

func TestAllReturnsEveryKey(t *testing.T) {
	r := NewRecorder()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	r.Record("key-1", "GET /walkers", at, true)
	r.Record("key-2", "GET /services", at, false)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all["key-1"].Success)
	assert.Equal(t, int64(1), all["key-2"].Errors)
}
