package routing

import (
	"sync"
	"time"
)

// emaAlpha is the smoothing factor for the latency moving average:
// each new sample is blended as avg = avg*(1-alpha) + sample*alpha.
const emaAlpha = 0.1

// PerformanceStats tracks one provider's latency and success rate.
//
// Latency is an exponential moving average in milliseconds; the first
// sample seeds the average directly. Latency is blended only for
// successful calls, while the success rate counts both outcomes.
//
// PerformanceStats is safe for concurrent use.
type PerformanceStats struct {
	mu            sync.Mutex
	avgLatencyMs  float64
	seeded        bool
	successes     int64
	totalRequests int64
}

// NewPerformanceStats creates empty stats.
func NewPerformanceStats() *PerformanceStats {
	return &PerformanceStats{}
}

// RecordSuccess blends one successful call's latency into the average.
func (s *PerformanceStats) RecordSuccess(latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample := float64(latency.Milliseconds())
	if !s.seeded {
		s.avgLatencyMs = sample
		s.seeded = true
	} else {
		s.avgLatencyMs = s.avgLatencyMs*(1-emaAlpha) + sample*emaAlpha
	}

	s.successes++
	s.totalRequests++
}

// RecordFailure counts one failed call toward the success rate without
// touching the latency average.
func (s *PerformanceStats) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalRequests++
}

// AvgLatencyMs returns the current moving average, zero before the
// first sample. Providers without samples therefore sort first under
// the fastest strategy.
func (s *PerformanceStats) AvgLatencyMs() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.avgLatencyMs
}

// Snapshot returns a point-in-time view of the stats.
func (s *PerformanceStats) Snapshot() PerfSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	rate := 0.0
	if s.totalRequests > 0 {
		rate = float64(s.successes) / float64(s.totalRequests)
	}
	return PerfSnapshot{
		AvgLatencyMs:  s.avgLatencyMs,
		SuccessRate:   rate,
		TotalRequests: s.totalRequests,
	}
}
