package routing

import (
	"testing"
	"time"
)

func TestPerformanceStats_FirstSampleSeeds(t *testing.T) {
	stats := NewPerformanceStats()

	stats.RecordSuccess(150 * time.Millisecond)

	if got := stats.AvgLatencyMs(); got != 150 {
		t.Errorf("AvgLatencyMs() = %v, want 150 (seeded directly)", got)
	}
}

func TestPerformanceStats_EMABlend(t *testing.T) {
	stats := NewPerformanceStats()

	stats.RecordSuccess(100 * time.Millisecond)
	stats.RecordSuccess(200 * time.Millisecond)

	// 100*0.9 + 200*0.1 = 110
	if got := stats.AvgLatencyMs(); got != 110 {
		t.Errorf("AvgLatencyMs() = %v, want 110", got)
	}

	stats.RecordSuccess(200 * time.Millisecond)
	// 110*0.9 + 200*0.1 = 119
	if got := stats.AvgLatencyMs(); got != 119 {
		t.Errorf("AvgLatencyMs() = %v, want 119", got)
	}
}

func TestPerformanceStats_NoSamplesReportsZero(t *testing.T) {
	stats := NewPerformanceStats()
	if got := stats.AvgLatencyMs(); got != 0 {
		t.Errorf("AvgLatencyMs() = %v, want 0", got)
	}
}

func TestPerformanceStats_SuccessRate(t *testing.T) {
	stats := NewPerformanceStats()

	stats.RecordSuccess(100 * time.Millisecond)
	stats.RecordSuccess(100 * time.Millisecond)
	stats.RecordFailure()

	snap := stats.Snapshot()
	if snap.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", snap.TotalRequests)
	}
	want := 2.0 / 3.0
	if diff := snap.SuccessRate - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("SuccessRate = %v, want %v", snap.SuccessRate, want)
	}
	if snap.AvgLatencyMs != 100 {
		t.Errorf("AvgLatencyMs = %v, want 100 (failures never blend)", snap.AvgLatencyMs)
	}
}

func TestPerformanceStats_EmptySnapshot(t *testing.T) {
	snap := NewPerformanceStats().Snapshot()
	if snap.SuccessRate != 0 || snap.TotalRequests != 0 || snap.AvgLatencyMs != 0 {
		t.Errorf("empty snapshot = %+v, want zero values", snap)
	}
}
