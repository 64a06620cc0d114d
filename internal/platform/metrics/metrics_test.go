package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCollectorClassifiesStatuses(t *testing.T) {
	c := New()
	c.Record("/api/v1/goals", 200, 2*time.Millisecond)
	c.Record("/api/v1/goals", 404, 4*time.Millisecond)
	c.Record("/api/v1/auth/login", 429, 0)
	c.Record("/api/v1/reports/insights", 503, 6*time.Millisecond)

	snap := c.Snapshot()
	if snap.RequestsTotal != 4 {
		t.Fatalf("expected 4 requests, got %d", snap.RequestsTotal)
	}
	if snap.ClientErrors != 2 || snap.ServerErrors != 1 || snap.RateLimited != 1 {
		t.Fatalf("unexpected error counters: %+v", snap)
	}
	if snap.AvgDurationMs != 3 {
		t.Fatalf("expected 3ms average, got %v", snap.AvgDurationMs)
	}
	if len(snap.RequestsByPath) != 3 || snap.RequestsByPath[0].Route != "/api/v1/goals" || snap.RequestsByPath[0].Count != 2 {
		t.Fatalf("unexpected route counts: %+v", snap.RequestsByPath)
	}
}

func TestCollectorEmptySnapshot(t *testing.T) {
	snap := New().Snapshot()
	if snap.RequestsTotal != 0 || snap.AvgDurationMs != 0 || len(snap.RequestsByPath) != 0 {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}

func TestCollectorConcurrentRecord(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Record("", 200, time.Millisecond)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.RequestsTotal != 50 {
		t.Fatalf("expected 50 requests, got %d", snap.RequestsTotal)
	}
	if snap.RequestsByPath[0].Route != "unmatched" || snap.RequestsByPath[0].Count != 50 {
		t.Fatalf("unexpected route counts: %+v", snap.RequestsByPath)
	}
}
