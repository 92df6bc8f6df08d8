package providers

import (
	"log/slog"
	"sync"
	"time"
)

// State implements the status state machine shared by all provider adapters.
// Adapters embed a *State to satisfy the status-related methods of the
// Provider interface.
//
// Transitions:
//
//	Available  -> RateLimited   SetRateLimited (call outcome)
//	RateLimited -> Available    lazily inside IsAvailable once the reset
//	                            deadline passes; no background timer
//	Available  -> Error         SetStatus (call outcome)
//	Error      -> Available     SetStatus (explicit operator reset)
//
// A rate-limited provider with a zero reset deadline never auto-recovers.
type State struct {
	name string

	mu      sync.Mutex
	status  Status
	lastErr error
	resetAt time.Time

	// now is replaceable in tests.
	now func() time.Time
}

// NewState creates the state machine for a provider, starting Available.
func NewState(name string) *State {
	return &State{
		name:   name,
		status: StatusAvailable,
		now:    time.Now,
	}
}

// Name returns the provider name.
func (s *State) Name() string {
	return s.name
}

// IsAvailable reports whether the provider can accept requests.
// A rate-limited provider whose reset deadline has passed transitions back
// to Available here, as a side effect.
func (s *State) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusAvailable:
		return true
	case StatusRateLimited:
		if !s.resetAt.IsZero() && !s.now().Before(s.resetAt) {
			s.status = StatusAvailable
			s.lastErr = nil
			s.resetAt = time.Time{}
			slog.Debug("provider rate limit expired", "provider", s.name)
			return true
		}
		return false
	default:
		// Error, Unavailable, Maintenance: explicit reset only.
		return false
	}
}

// Status returns a snapshot of the current state.
func (s *State) Status() StatusInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := StatusInfo{Status: s.status}
	if s.lastErr != nil {
		info.LastError = s.lastErr.Error()
	}
	if s.status == StatusRateLimited {
		info.RateLimitResetAt = s.resetAt
	}
	return info
}

// SetStatus transitions the provider to the given status, recording err as
// the last error when non-nil.
func (s *State) SetStatus(status Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
	s.lastErr = err
	if status != StatusRateLimited {
		s.resetAt = time.Time{}
	}

	if err != nil {
		slog.Warn("provider status changed",
			"provider", s.name,
			"status", string(status),
			"error", err,
		)
	} else {
		slog.Info("provider status changed",
			"provider", s.name,
			"status", string(status),
		)
	}
}

// SetRateLimited transitions the provider to RateLimited. A positive
// retryAfter schedules lazy recovery; zero leaves the provider rate limited
// until an explicit SetStatus.
func (s *State) SetRateLimited(retryAfter time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = StatusRateLimited
	if retryAfter > 0 {
		s.resetAt = s.now().Add(retryAfter)
	} else {
		s.resetAt = time.Time{}
	}

	slog.Warn("provider rate limited",
		"provider", s.name,
		"retry_after", retryAfter,
	)
}

// SetNowFunc replaces the state's clock. Tests use this to exercise the
// lazy recovery path without sleeping.
func (s *State) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
