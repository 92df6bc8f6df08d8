package routing

import (
	"sync"
	"time"
)

const (
	// requestWindow is the sliding window for the request-rate limit.
	requestWindow = time.Minute

	// costWindow is the sliding window for the cost limit.
	costWindow = time.Hour

	// maxRequestSamples caps the request timestamp list independently
	// of the time window.
	maxRequestSamples = 60

	// DefaultCostRetention is how long cost samples are kept for
	// reporting. The limiter itself only looks one hour back; the
	// retention horizon bounds CostWithin queries.
	DefaultCostRetention = 24 * time.Hour
)

// costSample is one recorded request's timestamp and estimated cost.
type costSample struct {
	at   time.Time
	cost float64
}

// UsageTracker holds one provider's rolling request and cost counters.
//
// Both rolling collections are pruned lazily on access, never by a
// timer: any read observes only samples inside the relevant window.
// CanUse is a pure predicate; Record is called by the router only after
// a successful generation.
//
// UsageTracker is safe for concurrent use.
type UsageTracker struct {
	mu            sync.Mutex
	requestTimes  []time.Time
	costSamples   []costSample
	totalRequests int64
	totalCost     float64
	lastRequestAt time.Time
	retention     time.Duration
	now           func() time.Time
}

// NewUsageTracker creates a tracker retaining cost samples for the
// given reporting horizon. Retentions shorter than the one-hour limiter
// window are raised to it; zero uses DefaultCostRetention.
func NewUsageTracker(retention time.Duration) *UsageTracker {
	if retention == 0 {
		retention = DefaultCostRetention
	}
	if retention < costWindow {
		retention = costWindow
	}
	return &UsageTracker{
		retention: retention,
		now:       time.Now,
	}
}

// SetNowFunc overrides the tracker's clock. Tests only.
func (t *UsageTracker) SetNowFunc(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// CanUse reports whether one more request fits under the policy's
// sliding-window limits right now. A zero or negative limit always
// rejects; an empty window always allows.
func (t *UsageTracker) CanUse(policy ProviderPolicy) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.pruneLocked(now)

	if policy.MaxRequestsPerMinute <= 0 {
		return false
	}
	if len(t.requestTimes) >= policy.MaxRequestsPerMinute {
		return false
	}

	if policy.MaxCostPerHour <= 0 {
		return false
	}
	if t.costWithinLocked(now, costWindow) >= policy.MaxCostPerHour {
		return false
	}

	return true
}

// Record registers one successful request and its estimated cost.
func (t *UsageTracker) Record(cost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.pruneLocked(now)

	t.requestTimes = append(t.requestTimes, now)
	if len(t.requestTimes) > maxRequestSamples {
		t.requestTimes = t.requestTimes[len(t.requestTimes)-maxRequestSamples:]
	}
	t.costSamples = append(t.costSamples, costSample{at: now, cost: cost})

	t.totalRequests++
	t.totalCost += cost
	t.lastRequestAt = now
}

// CostWithin sums recorded cost and counts requests over the trailing
// window, capped at the tracker's retention horizon.
func (t *UsageTracker) CostWithin(window time.Duration) (float64, int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.pruneLocked(now)

	if window > t.retention {
		window = t.retention
	}
	cutoff := now.Add(-window)

	var cost float64
	var requests int64
	for _, s := range t.costSamples {
		if s.at.After(cutoff) {
			cost += s.cost
			requests++
		}
	}
	return cost, requests
}

// Snapshot returns a point-in-time view of the tracker.
func (t *UsageTracker) Snapshot() UsageSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.pruneLocked(now)

	return UsageSnapshot{
		TotalRequests:  t.totalRequests,
		TotalCost:      t.totalCost,
		RecentRequests: len(t.requestTimes),
		RecentCost:     t.costWithinLocked(now, costWindow),
		LastRequestAt:  t.lastRequestAt,
	}
}

// pruneLocked drops request timestamps older than the request window
// and cost samples older than the retention horizon.
func (t *UsageTracker) pruneLocked(now time.Time) {
	reqCutoff := now.Add(-requestWindow)
	keep := 0
	for _, at := range t.requestTimes {
		if at.After(reqCutoff) {
			t.requestTimes[keep] = at
			keep++
		}
	}
	t.requestTimes = t.requestTimes[:keep]

	costCutoff := now.Add(-t.retention)
	keep = 0
	for _, s := range t.costSamples {
		if s.at.After(costCutoff) {
			t.costSamples[keep] = s
			keep++
		}
	}
	t.costSamples = t.costSamples[:keep]
}

// costWithinLocked sums cost samples inside the window. Caller holds
// the lock and has pruned.
func (t *UsageTracker) costWithinLocked(now time.Time, window time.Duration) float64 {
	cutoff := now.Add(-window)
	var sum float64
	for _, s := range t.costSamples {
		if s.at.After(cutoff) {
			sum += s.cost
		}
	}
	return sum
}
