// Package timetrack implements the timer lifecycle of time entries: start,
// stop, the active entry and the forgotten-timer watchdog.
package timetrack

import (
	"context"
	"strings"
	"time"

	"github.com/consultdesk/consultdesk/internal/apperr"
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/store"
)

type Service struct {
	store *store.Store
	now   func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type StartInput struct {
	ProjectID           string
	Description         string
	SoftwareUsed        []string
	ProblemsEncountered string
}

// Start begins a timer on a project. A user can only have one running
// entry; starting a second one is a Conflict.
func (s *Service) Start(ctx context.Context, userID string, in StartInput) (*models.TimeEntry, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, apperr.Validation("Project ID is required")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperr.Validation("Description is required")
	}

	entry := &models.TimeEntry{
		ProjectID:           in.ProjectID,
		UserID:              userID,
		Description:         description,
		StartTime:           s.now().UTC(),
		IsRunning:           true,
		SoftwareUsed:        cleanTags(in.SoftwareUsed),
		ProblemsEncountered: strings.TrimSpace(in.ProblemsEncountered),
	}
	if err := s.store.CreateRunningEntry(ctx, entry); err != nil {
		return nil, err
	}

	log.Debugf("Started timer %s on project %s for user %s", entry.ID, entry.ProjectID, userID)
	return s.store.GetTimeEntry(ctx, userID, entry.ID)
}

// Stop ends a running entry and records its duration in hours.
func (s *Service) Stop(ctx context.Context, userID, entryID string) (*models.TimeEntry, error) {
	entry, err := s.store.GetTimeEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.IsRunning {
		return nil, apperr.Conflict("Time entry is not running")
	}
	return s.stop(ctx, entry, s.now())
}

func (s *Service) stop(ctx context.Context, entry *models.TimeEntry, now time.Time) (*models.TimeEntry, error) {
	end := now.UTC()
	if end.Before(entry.StartTime) {
		end = entry.StartTime
	}
	hours := Hours(end.Sub(entry.StartTime)).Round(HourPlaces)

	stopped, err := s.store.StopTimeEntry(ctx, entry.UserID, entry.ID, end, hours)
	if err != nil {
		return nil, err
	}

	log.Debugf("Stopped timer %s after %s hours", entry.ID, hours)
	return stopped, nil
}

// Active returns the user's running entry or nil.
func (s *Service) Active(ctx context.Context, userID string) (*models.TimeEntry, error) {
	return s.store.ActiveTimeEntry(ctx, userID)
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

type UpdateInput struct {
	Description         *string
	SoftwareUsed        *[]string
	ProblemsEncountered *string
}

// Update edits the notes of an entry. Start and end times are not editable.
func (s *Service) Update(ctx context.Context, userID, entryID string, in UpdateInput) (*models.TimeEntry, error) {
	return s.store.UpdateTimeEntry(ctx, userID, entryID, func(e *models.TimeEntry) error {
		if in.Description != nil {
			d := strings.TrimSpace(*in.Description)
			if d == "" {
				return apperr.Validation("Description cannot be empty")
			}
			e.Description = d
		}
		if in.SoftwareUsed != nil {
			e.SoftwareUsed = cleanTags(*in.SoftwareUsed)
		}
		if in.ProblemsEncountered != nil {
			e.ProblemsEncountered = strings.TrimSpace(*in.ProblemsEncountered)
		}
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, userID, entryID string) error {
	return s.store.DeleteTimeEntry(ctx, userID, entryID)
}

// StopForgotten stops every entry that has been running for longer than
// maxRunning and returns the stopped entries.
func (s *Service) StopForgotten(ctx context.Context, maxRunning time.Duration) ([]models.TimeEntry, error) {
	if maxRunning <= 0 {
		return nil, nil
	}

	now := s.now()
	running, err := s.store.RunningEntriesStartedBefore(ctx, now.Add(-maxRunning))
	if err != nil {
		return nil, err
	}

	var stopped []models.TimeEntry
	for i := range running {
		e := &running[i]
		out, err := s.stop(ctx, e, now)
		if err != nil {
			// Stopped concurrently by its owner.
			if apperr.Is(err, apperr.KindConflict) {
				continue
			}
			return stopped, err
		}
		log.Infof("Stopped forgotten timer %s for user %s (running %v)",
			e.ID, e.UserID, now.Sub(e.StartTime).Truncate(time.Second))
		stopped = append(stopped, *out)
	}
	return stopped, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
