package usage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner is implemented by sinks that support deleting aged metrics.
type Pruner interface {
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// RetentionConfig controls scheduled pruning of recorded metrics.
type RetentionConfig struct {
	// RetentionDays is how long metrics are kept.
	// Default: 90
	RetentionDays int

	// PruneSchedule is a standard cron expression.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string
}

// RetentionScheduler runs a sink's Prune on a cron schedule.
type RetentionScheduler struct {
	pruner  Pruner
	config  RetentionConfig
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewRetentionScheduler creates a scheduler pruning the given sink.
func NewRetentionScheduler(pruner Pruner, config RetentionConfig) *RetentionScheduler {
	if config.RetentionDays <= 0 {
		config.RetentionDays = 90
	}
	if config.PruneSchedule == "" {
		config.PruneSchedule = "0 3 * * *"
	}
	return &RetentionScheduler{
		pruner: pruner,
		config: config,
		cron:   cron.New(),
		logger: slog.Default().With("component", "usage.retention"),
	}
}

// Start begins scheduled pruning. The scheduler stops when ctx is
// cancelled.
func (s *RetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := cron.ParseStandard(s.config.PruneSchedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", s.config.PruneSchedule, err)
	}

	_, err := s.cron.AddFunc(s.config.PruneSchedule, func() {
		s.runPruning(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling usage pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("usage retention scheduler started",
		"schedule", s.config.PruneSchedule,
		"retention_days", s.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runPruning executes one pruning cycle.
func (s *RetentionScheduler) runPruning(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)

	deleted, err := s.pruner.Prune(ctx, cutoff)
	if err != nil {
		s.logger.Error("scheduled usage pruning failed", "error", err)
		return
	}

	if deleted > 0 {
		s.logger.Info("scheduled usage pruning completed", "deleted", deleted)
	} else {
		s.logger.Debug("scheduled usage pruning completed, nothing to delete")
	}
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *RetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("usage retention scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *RetentionScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled pruning time, or nil when not
// scheduled.
func (s *RetentionScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
