package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/consultdesk/consultdesk/internal/models"
)

type fakeTimers struct {
	max     time.Duration
	calls   int
	entries []models.TimeEntry
	err     error
}

func (f *fakeTimers) StopForgotten(ctx context.Context, maxRunning time.Duration) ([]models.TimeEntry, error) {
	f.calls++
	f.max = maxRunning
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("job context has no deadline")
	}
	return f.entries, f.err
}

func TestStopForgottenTimersReportsStoppedEntries(t *testing.T) {
	timers := &fakeTimers{entries: []models.TimeEntry{{UserID: "u1"}, {UserID: "u2"}}}

	var got []models.TimeEntry
	s := New(Config{
		Timers:     timers,
		MaxRunning: 12 * time.Hour,
		OnStopped:  func(e []models.TimeEntry) { got = e },
	})
	s.StopForgottenTimers()

	if timers.calls != 1 || timers.max != 12*time.Hour {
		t.Fatalf("StopForgotten: calls %d max %v", timers.calls, timers.max)
	}
	if len(got) != 2 {
		t.Fatalf("OnStopped: got %d entries, want 2", len(got))
	}
}

func TestStopForgottenTimersSkipsHookWhenNothingStopped(t *testing.T) {
	timers := &fakeTimers{err: errors.New("store down")}

	called := false
	s := New(Config{
		Timers:     timers,
		MaxRunning: time.Hour,
		OnStopped:  func([]models.TimeEntry) { called = true },
	})
	s.StopForgottenTimers()

	if timers.calls != 1 {
		t.Fatalf("StopForgotten calls: got %d, want 1", timers.calls)
	}
	if called {
		t.Fatal("OnStopped called although no timer was stopped")
	}
}

func TestStartWithWatchdogDisabled(t *testing.T) {
	s := New(Config{Timers: &fakeTimers{}})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.running {
		t.Fatal("scheduler running with no jobs")
	}
	s.Stop()
}

func TestStartAndStop(t *testing.T) {
	s := New(Config{Timers: &fakeTimers{}, MaxRunning: time.Hour})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.running {
		t.Fatal("scheduler not running")
	}
	if entries := s.cron.Entries(); len(entries) != 1 {
		t.Fatalf("cron entries: got %d, want 1", len(entries))
	}
	s.Stop()
	if s.running {
		t.Fatal("scheduler still running after Stop")
	}
}
