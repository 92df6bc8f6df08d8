package routing

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for window tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestTracker(clock *fakeClock) *UsageTracker {
	tracker := NewUsageTracker(0)
	tracker.SetNowFunc(clock.Now)
	return tracker
}

func TestUsageTracker_ColdStartAllows(t *testing.T) {
	tracker := newTestTracker(newFakeClock())
	policy := ProviderPolicy{MaxRequestsPerMinute: 60, MaxCostPerHour: 10}

	if !tracker.CanUse(policy) {
		t.Error("CanUse() = false on empty windows, want true")
	}
}

func TestUsageTracker_ZeroOrNegativeLimitsReject(t *testing.T) {
	tests := []struct {
		name   string
		policy ProviderPolicy
	}{
		{"zero rpm", ProviderPolicy{MaxRequestsPerMinute: 0, MaxCostPerHour: 10}},
		{"negative rpm", ProviderPolicy{MaxRequestsPerMinute: -1, MaxCostPerHour: 10}},
		{"zero cost", ProviderPolicy{MaxRequestsPerMinute: 60, MaxCostPerHour: 0}},
		{"negative cost", ProviderPolicy{MaxRequestsPerMinute: 60, MaxCostPerHour: -0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker(newFakeClock())
			if tracker.CanUse(tt.policy) {
				t.Error("CanUse() = true, want false")
			}
		})
	}
}

func TestUsageTracker_RequestWindowSlides(t *testing.T) {
	clock := newFakeClock()
	tracker := newTestTracker(clock)
	policy := ProviderPolicy{MaxRequestsPerMinute: 2, MaxCostPerHour: 100}

	tracker.Record(0.01)
	if !tracker.CanUse(policy) {
		t.Fatal("CanUse() = false after 1 of 2 requests")
	}
	tracker.Record(0.01)
	if tracker.CanUse(policy) {
		t.Fatal("CanUse() = true at the request limit, want false")
	}

	clock.Advance(61 * time.Second)
	if !tracker.CanUse(policy) {
		t.Fatal("CanUse() = false after the window slid past both requests")
	}
}

func TestUsageTracker_CostWindowSlides(t *testing.T) {
	clock := newFakeClock()
	tracker := newTestTracker(clock)
	policy := ProviderPolicy{MaxRequestsPerMinute: 100, MaxCostPerHour: 1.0}

	tracker.Record(0.6)
	tracker.Record(0.5)
	if tracker.CanUse(policy) {
		t.Fatal("CanUse() = true with 1.10 spent against a 1.00/h cap")
	}

	// 61s clears the request window but not the cost window.
	clock.Advance(61 * time.Second)
	if tracker.CanUse(policy) {
		t.Fatal("CanUse() = true while cost samples are still inside the hour")
	}

	clock.Advance(time.Hour)
	if !tracker.CanUse(policy) {
		t.Fatal("CanUse() = false after the cost window slid past both samples")
	}
}

func TestUsageTracker_RequestListCapped(t *testing.T) {
	clock := newFakeClock()
	tracker := newTestTracker(clock)

	for i := 0; i < 75; i++ {
		tracker.Record(0)
		clock.Advance(100 * time.Millisecond)
	}

	snap := tracker.Snapshot()
	if snap.RecentRequests != maxRequestSamples {
		t.Errorf("RecentRequests = %d, want cap %d", snap.RecentRequests, maxRequestSamples)
	}
	if snap.TotalRequests != 75 {
		t.Errorf("TotalRequests = %d, want 75", snap.TotalRequests)
	}
}

func TestUsageTracker_CostWithinWindowing(t *testing.T) {
	clock := newFakeClock()
	tracker := newTestTracker(clock)

	tracker.Record(0.10)
	clock.Advance(3601 * time.Second)
	tracker.Record(0.20)
	clock.Advance(99 * time.Second) // query at t=3700s

	cost, requests := tracker.CostWithin(time.Hour)
	if diff := cost - 0.20; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("CostWithin(1h) cost = %v, want 0.20 only", cost)
	}
	if requests != 1 {
		t.Errorf("CostWithin(1h) requests = %d, want 1", requests)
	}

	// The full retention horizon still sees both samples.
	cost, requests = tracker.CostWithin(DefaultCostRetention)
	if diff := cost - 0.30; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("CostWithin(retention) cost = %v, want 0.30", cost)
	}
	if requests != 2 {
		t.Errorf("CostWithin(retention) requests = %d, want 2", requests)
	}
}

func TestUsageTracker_SnapshotTotalsAreMonotonic(t *testing.T) {
	clock := newFakeClock()
	tracker := newTestTracker(clock)

	tracker.Record(0.10)
	clock.Advance(2 * time.Minute)
	tracker.Record(0.20)

	snap := tracker.Snapshot()
	if snap.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2", snap.TotalRequests)
	}
	if diff := snap.TotalCost - 0.30; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("TotalCost = %v, want 0.30", snap.TotalCost)
	}
	if snap.RecentRequests != 1 {
		t.Errorf("RecentRequests = %d, want 1 (first request aged out)", snap.RecentRequests)
	}
	if !snap.LastRequestAt.Equal(clock.Now()) {
		t.Errorf("LastRequestAt = %v, want %v", snap.LastRequestAt, clock.Now())
	}
}
