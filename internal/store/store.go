// Package store is the repository over the relational store. Every read and
// write on user-owned data is filtered by the owning user's ID, every call is
// bounded by a timeout, and driver errors are classified into apperr kinds.
package store

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const DefaultTimeout = 5 * time.Second

type Store struct {
	db      *gorm.DB
	timeout time.Duration
	inTx    bool
}

func New(db *gorm.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{db: db, timeout: timeout}
}

// DB returns the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Dialect() string {
	return s.db.Dialector.Name()
}

// conn returns a session bound to a context limited by the store timeout.
// Writes are detached from the caller's cancellation so an abandoned request
// still commits or rolls back as a unit.
func (s *Store) conn(ctx context.Context, write bool) (*gorm.DB, context.CancelFunc) {
	if write {
		ctx = context.WithoutCancel(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

// Transaction runs fn against a Store bound to a single database
// transaction. Returning an error from fn rolls everything back. Nested calls
// reuse the outer transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}

	db, cancel := s.conn(ctx, true)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, timeout: s.timeout, inTx: true})
	})
	return classify(err, "transaction")
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return classify(err, "ping")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return classify(sqlDB.PingContext(ctx), "ping")
}
