package usage

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryCapacity is the ring size used when none is given.
const DefaultMemoryCapacity = 10000

// MemorySink keeps the most recent metrics in a bounded in-memory ring.
// When the ring is full the oldest metric is overwritten.
//
// MemorySink is safe for concurrent use.
type MemorySink struct {
	mu       sync.Mutex
	ring     []Metric
	next     int
	size     int
	capacity int
}

// NewMemorySink creates a memory sink holding at most capacity metrics.
// A capacity <= 0 uses DefaultMemoryCapacity.
func NewMemorySink(capacity int) *MemorySink {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemorySink{
		ring:     make([]Metric, capacity),
		capacity: capacity,
	}
}

// Record stores the metric, evicting the oldest entry when full.
func (s *MemorySink) Record(_ context.Context, m Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring[s.next] = m
	s.next = (s.next + 1) % s.capacity
	if s.size < s.capacity {
		s.size++
	}
	return nil
}

// Close is a no-op.
func (s *MemorySink) Close() error { return nil }

// Len returns the number of stored metrics.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Metrics returns a copy of the stored metrics, oldest first.
func (s *MemorySink) Metrics() []Metric {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Metric, 0, s.size)
	start := s.next - s.size
	if start < 0 {
		start += s.capacity
	}
	for i := 0; i < s.size; i++ {
		out = append(out, s.ring[(start+i)%s.capacity])
	}
	return out
}

// Summary aggregates stored metrics per provider, counting only metrics
// at or after since.
func (s *MemorySink) Summary(since time.Time) []ProviderSummary {
	byProvider := make(map[string]*ProviderSummary)
	for _, m := range s.Metrics() {
		if m.Timestamp.Before(since) {
			continue
		}
		sum, ok := byProvider[m.Provider]
		if !ok {
			sum = &ProviderSummary{Provider: m.Provider}
			byProvider[m.Provider] = sum
		}
		sum.Requests++
		sum.InputTokens += int64(m.InputTokens)
		sum.OutputTokens += int64(m.OutputTokens)
		sum.Cost += m.Cost
	}

	out := make([]ProviderSummary, 0, len(byProvider))
	for _, sum := range byProvider {
		out = append(out, *sum)
	}
	return out
}
