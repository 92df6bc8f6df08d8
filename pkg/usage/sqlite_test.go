package usage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteSink(t *testing.T) *SQLiteSink {
	t.Helper()

	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "usage.db")

	sink, err := NewSQLiteSink(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteSink() error = %v", err)
	}
	t.Cleanup(func() { sink.Close() })
	return sink
}

func TestSQLiteSink_RecordAndSummary(t *testing.T) {
	sink := newTestSQLiteSink(t)
	ctx := context.Background()
	now := time.Now()

	metrics := []Metric{
		metricAt("openai", 0.10, now.Add(-2*time.Hour)),
		metricAt("openai", 0.20, now),
		metricAt("anthropic", 0.30, now),
	}
	for _, m := range metrics {
		if err := sink.Record(ctx, m); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	summaries, err := sink.Summary(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	byProvider := make(map[string]ProviderSummary)
	for _, s := range summaries {
		byProvider[s.Provider] = s
	}

	if got := byProvider["openai"].Requests; got != 1 {
		t.Errorf("openai requests = %d, want 1 (sample outside window excluded)", got)
	}
	if got := byProvider["anthropic"].Requests; got != 1 {
		t.Errorf("anthropic requests = %d, want 1", got)
	}
	if got := byProvider["openai"].InputTokens; got != 100 {
		t.Errorf("openai input tokens = %d, want 100", got)
	}
}

func TestSQLiteSink_Prune(t *testing.T) {
	sink := newTestSQLiteSink(t)
	ctx := context.Background()
	now := time.Now()

	sink.Record(ctx, metricAt("openai", 0.10, now.AddDate(0, 0, -100)))
	sink.Record(ctx, metricAt("openai", 0.20, now))

	deleted, err := sink.Prune(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() deleted %d rows, want 1", deleted)
	}

	summaries, err := sink.Summary(ctx, time.Time{})
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if len(summaries) != 1 || summaries[0].Requests != 1 {
		t.Errorf("after prune: %+v, want single openai row with 1 request", summaries)
	}
}

func TestRetentionScheduler_RejectsBadSchedule(t *testing.T) {
	sink := newTestSQLiteSink(t)

	sched := NewRetentionScheduler(sink, RetentionConfig{PruneSchedule: "not a cron expr"})
	if err := sched.Start(context.Background()); err == nil {
		t.Fatal("Start() with invalid schedule should fail")
	}
}

func TestRetentionScheduler_StartStop(t *testing.T) {
	sink := newTestSQLiteSink(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := NewRetentionScheduler(sink, RetentionConfig{RetentionDays: 30})
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !sched.IsRunning() {
		t.Error("scheduler should be running after Start")
	}
	if sched.NextRun() == nil {
		t.Error("NextRun() = nil, want a scheduled time")
	}

	sched.Stop()
	if sched.IsRunning() {
		t.Error("scheduler should be stopped after Stop")
	}
}
