package store

import (
	"context"
	"errors"
	"time"

	"github.com/consultdesk/consultdesk/internal/apperr"
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func errTimerRunning() error {
	return apperr.Conflict("A timer is already running; stop it before starting a new one")
}

func (s *Store) ListTimeEntries(ctx context.Context, userID string) ([]models.TimeEntry, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var entries []models.TimeEntry
	err := db.Preload("Project").
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Find(&entries).Error
	if err != nil {
		return nil, classify(err, "list time entries")
	}
	return entries, nil
}

func (s *Store) ListProjectTimeEntries(ctx context.Context, userID, projectID string) ([]models.TimeEntry, error) {
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	db, cancel := s.conn(ctx, false)
	defer cancel()

	var entries []models.TimeEntry
	err := db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Order("start_time DESC").
		Find(&entries).Error
	if err != nil {
		return nil, classify(err, "list project time entries")
	}
	return entries, nil
}

func (s *Store) GetTimeEntry(ctx context.Context, userID, id string) (*models.TimeEntry, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var entry models.TimeEntry
	err := db.Preload("Project").Where("id = ? AND user_id = ?", id, userID).First(&entry).Error
	if err != nil {
		return nil, notFound(err, "Time entry", "fetch time entry")
	}
	return &entry, nil
}

// ActiveTimeEntry returns the user's running entry, or nil when no timer is
// running.
func (s *Store) ActiveTimeEntry(ctx context.Context, userID string) (*models.TimeEntry, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var entry models.TimeEntry
	err := db.Preload("Project").
		Where("user_id = ? AND is_running = ?", userID, true).
		Order("start_time DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err, "fetch active time entry")
	}
	return &entry, nil
}

// CreateRunningEntry inserts e as the user's running entry. The user row is
// locked and the running-entry check happens inside the same transaction;
// the partial unique index catches whatever slips past on dialects without
// row locks.
func (s *Store) CreateRunningEntry(ctx context.Context, e *models.TimeEntry) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.lockUser(ctx, e.UserID); err != nil {
			return err
		}
		if _, err := tx.GetProject(ctx, e.UserID, e.ProjectID); err != nil {
			return err
		}

		db, cancel := tx.conn(ctx, true)
		defer cancel()

		var running int64
		err := db.Model(&models.TimeEntry{}).
			Where("user_id = ? AND is_running = ?", e.UserID, true).
			Count(&running).Error
		if err != nil {
			return classify(err, "count running time entries")
		}
		if running > 0 {
			return errTimerRunning()
		}

		if err := db.Omit(clause.Associations).Create(e).Error; err != nil {
			if isDuplicateKey(err) {
				return errTimerRunning()
			}
			return classify(err, "start time entry")
		}
		return nil
	})
}

// StopTimeEntry stops a running entry. The update only matches while the
// entry is still running, so of two concurrent stops exactly one wins and
// the other gets a Conflict.
func (s *Store) StopTimeEntry(ctx context.Context, userID, id string, end time.Time, hours decimal.Decimal) (*models.TimeEntry, error) {
	db, cancel := s.conn(ctx, true)
	defer cancel()

	res := db.Model(&models.TimeEntry{}).
		Where("id = ? AND user_id = ? AND is_running = ?", id, userID, true).
		Updates(map[string]interface{}{
			"end_time":   end.UTC(),
			"duration":   hours,
			"is_running": false,
		})
	if res.Error != nil {
		return nil, classify(res.Error, "stop time entry")
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetTimeEntry(ctx, userID, id); err != nil {
			return nil, err
		}
		return nil, apperr.Conflict("Time entry is not running")
	}
	return s.GetTimeEntry(ctx, userID, id)
}

func (s *Store) UpdateTimeEntry(ctx context.Context, userID, id string, apply func(*models.TimeEntry) error) (*models.TimeEntry, error) {
	var out *models.TimeEntry
	err := s.Transaction(ctx, func(tx *Store) error {
		e, err := tx.GetTimeEntry(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := apply(e); err != nil {
			return err
		}

		db, cancel := tx.conn(ctx, true)
		defer cancel()
		if err := db.Omit(clause.Associations).Save(e).Error; err != nil {
			return classify(err, "update time entry")
		}
		out = e
		return nil
	})
	return out, err
}

// DeleteTimeEntry removes an entry. Invoice items that were billed from it
// keep their snapshot and lose the back reference.
func (s *Store) DeleteTimeEntry(ctx context.Context, userID, id string) error {
	return s.Transaction(ctx, func(tx *Store) error {
		e, err := tx.GetTimeEntry(ctx, userID, id)
		if err != nil {
			return err
		}

		db, cancel := tx.conn(ctx, true)
		defer cancel()

		err = db.Model(&models.InvoiceItem{}).
			Where("time_entry_id = ?", e.ID).
			Update("time_entry_id", nil).Error
		if err != nil {
			return classify(err, "detach invoice items")
		}

		if err := db.Where("id = ? AND user_id = ?", e.ID, userID).Delete(&models.TimeEntry{}).Error; err != nil {
			return classify(err, "delete time entry")
		}
		return nil
	})
}

// BillableEntries returns the stopped entries of a project whose start time
// falls in [from, to), oldest first.
func (s *Store) BillableEntries(ctx context.Context, userID, projectID string, from, to time.Time) ([]models.TimeEntry, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var entries []models.TimeEntry
	err := db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Where("is_running = ? AND duration IS NOT NULL", false).
		Where("start_time >= ? AND start_time < ?", from.UTC(), to.UTC()).
		Order("start_time ASC").
		Find(&entries).Error
	if err != nil {
		return nil, classify(err, "select billable time entries")
	}
	return entries, nil
}

// RunningEntriesStartedBefore returns running entries of every user that
// started before cutoff.
func (s *Store) RunningEntriesStartedBefore(ctx context.Context, cutoff time.Time) ([]models.TimeEntry, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var entries []models.TimeEntry
	err := db.Where("is_running = ? AND start_time < ?", true, cutoff.UTC()).
		Order("start_time ASC").
		Find(&entries).Error
	if err != nil {
		return nil, classify(err, "list forgotten timers")
	}
	return entries, nil
}
