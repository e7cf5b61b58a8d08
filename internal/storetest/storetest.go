// Package storetest opens throwaway sqlite stores and seeds fixtures for
// tests.
package storetest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/consultdesk/consultdesk/db"
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/store"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// New returns a migrated store backed by a sqlite file in a temp dir.
func New(t testing.TB) *store.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "consultdesk.db")
	gdb, err := db.ConnectDatabase(db.DriverSQLite, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	gdb.Logger = logger.Discard
	if err := db.MigrateDatabase(gdb); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return store.New(gdb, 5*time.Second)
}

func User(t testing.TB, s *store.Store, username string) *models.User {
	t.Helper()

	u := &models.User{
		Username:     username,
		PasswordHash: "x",
		Name:         username,
		Email:        username + "@example.com",
	}
	if err := s.DB().Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func Project(t testing.TB, s *store.Store, userID, name, rate string) *models.Project {
	t.Helper()

	p := &models.Project{
		Name:       name,
		ClientName: name + " Client",
		HourlyRate: decimal.RequireFromString(rate),
		Status:     models.ProjectActive,
		UserID:     userID,
	}
	if err := s.DB().Omit(clause.Associations).Create(p).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func Student(t testing.TB, s *store.Store, userID, name string) *models.Student {
	t.Helper()

	st := &models.Student{
		Name:    name,
		Email:   name + "@uni.example.edu",
		Program: "Computer Science",
		Level:   models.LevelMS,
		UserID:  userID,
	}
	if err := s.DB().Omit(clause.Associations).Create(st).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	return st
}

// StoppedEntry inserts a finished time entry of the given length in hours.
func StoppedEntry(t testing.TB, s *store.Store, userID, projectID string, start time.Time, hours string) *models.TimeEntry {
	t.Helper()

	h := decimal.RequireFromString(hours)
	end := start.Add(time.Duration(h.Mul(decimal.NewFromInt(int64(time.Hour))).IntPart())).UTC()
	e := &models.TimeEntry{
		ProjectID:   projectID,
		UserID:      userID,
		Description: "Work session",
		StartTime:   start.UTC(),
		EndTime:     &end,
		Duration:    decimal.NewNullDecimal(h),
	}
	if err := s.DB().Omit(clause.Associations).Create(e).Error; err != nil {
		t.Fatalf("create time entry: %v", err)
	}
	return e
}

// RunningEntry inserts a running entry without going through the timer
// service.
func RunningEntry(t testing.TB, s *store.Store, userID, projectID string, start time.Time) *models.TimeEntry {
	t.Helper()

	e := &models.TimeEntry{
		ProjectID:   projectID,
		UserID:      userID,
		Description: "Running session",
		StartTime:   start.UTC(),
		IsRunning:   true,
	}
	if err := s.DB().Omit(clause.Associations).Create(e).Error; err != nil {
		t.Fatalf("create running entry: %v", err)
	}
	return e
}
