package providers

import (
	"errors"
	"testing"
	"time"
)

func TestState_InitiallyAvailable(t *testing.T) {
	s := NewState("p1")
	if !s.IsAvailable() {
		t.Error("new state should be available")
	}
	if got := s.Status().Status; got != StatusAvailable {
		t.Errorf("status = %q, want %q", got, StatusAvailable)
	}
}

func TestState_RateLimitLazyRecovery(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewState("p1")
	s.SetNowFunc(func() time.Time { return now })

	s.SetRateLimited(60 * time.Second)

	if s.IsAvailable() {
		t.Fatal("should be unavailable immediately after rate limiting")
	}
	if got := s.Status().Status; got != StatusRateLimited {
		t.Fatalf("status = %q, want %q", got, StatusRateLimited)
	}

	// One second before the deadline: still limited.
	now = now.Add(59 * time.Second)
	if s.IsAvailable() {
		t.Fatal("should still be unavailable before the reset deadline")
	}

	// At the deadline: available again, and the status flips as a side
	// effect of the availability check.
	now = now.Add(1 * time.Second)
	if !s.IsAvailable() {
		t.Fatal("should be available once the reset deadline passes")
	}
	if got := s.Status().Status; got != StatusAvailable {
		t.Errorf("status after recovery = %q, want %q", got, StatusAvailable)
	}
}

func TestState_RateLimitWithoutDeadline(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewState("p1")
	s.SetNowFunc(func() time.Time { return now })

	s.SetRateLimited(0)

	now = now.Add(24 * time.Hour)
	if s.IsAvailable() {
		t.Error("rate limit without deadline should never auto-recover")
	}

	s.SetStatus(StatusAvailable, nil)
	if !s.IsAvailable() {
		t.Error("explicit reset should restore availability")
	}
}

func TestState_ErrorRequiresExplicitReset(t *testing.T) {
	s := NewState("p1")
	cause := errors.New("backend exploded")

	s.SetStatus(StatusError, cause)

	if s.IsAvailable() {
		t.Error("error status should not be available")
	}
	info := s.Status()
	if info.Status != StatusError {
		t.Errorf("status = %q, want %q", info.Status, StatusError)
	}
	if info.LastError != "backend exploded" {
		t.Errorf("last error = %q, want %q", info.LastError, "backend exploded")
	}

	s.SetStatus(StatusAvailable, nil)
	if !s.IsAvailable() {
		t.Error("explicit reset should clear error status")
	}
	if got := s.Status().LastError; got != "" {
		t.Errorf("last error after reset = %q, want empty", got)
	}
}

func TestState_UnavailableStatuses(t *testing.T) {
	for _, status := range []Status{StatusUnavailable, StatusMaintenance} {
		s := NewState("p1")
		s.SetStatus(status, nil)
		if s.IsAvailable() {
			t.Errorf("status %q should not be available", status)
		}
	}
}

func TestState_StatusSnapshotCarriesResetDeadline(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewState("p1")
	s.SetNowFunc(func() time.Time { return now })

	s.SetRateLimited(90 * time.Second)

	info := s.Status()
	want := now.Add(90 * time.Second)
	if !info.RateLimitResetAt.Equal(want) {
		t.Errorf("reset deadline = %v, want %v", info.RateLimitResetAt, want)
	}

	s.SetStatus(StatusAvailable, nil)
	if !s.Status().RateLimitResetAt.IsZero() {
		t.Error("reset deadline should clear when leaving RateLimited")
	}
}
