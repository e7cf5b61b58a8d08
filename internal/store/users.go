package store

import (
	"context"
	"errors"

	"github.com/consultdesk/consultdesk/internal/apperr"
	"github.com/consultdesk/consultdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var clauseForUpdate = clause.Locking{Strength: "UPDATE"}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, "User", "fetch user")
	}
	return &user, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, "User", "fetch user")
	}
	return &user, nil
}

// EnsureUser returns the user with u's username, creating it from u when it
// does not exist yet.
func (s *Store) EnsureUser(ctx context.Context, u *models.User) (*models.User, error) {
	var out *models.User
	err := s.Transaction(ctx, func(tx *Store) error {
		existing, err := tx.UserByUsername(ctx, u.Username)
		if err == nil {
			out = existing
			return nil
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			return err
		}

		db, cancel := tx.conn(ctx, true)
		defer cancel()
		if err := db.Create(u).Error; err != nil {
			if isDuplicateKey(err) {
				return apperr.Conflict("A user with this username or email already exists")
			}
			return classify(err, "create user")
		}
		out = u
		return nil
	})
	return out, err
}

// lockUser checks that the user row is present, locking it for the
// rest of the transaction on dialects that support row locks.
func (s *Store) lockUser(ctx context.Context, userID string) error {
	db, cancel := s.conn(ctx, true)
	defer cancel()

	q := db.Select("id").Where("id = ?", userID)
	if s.Dialect() != "sqlite" {
		q = q.Clauses(clauseForUpdate)
	}
	var user models.User
	err := q.First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("User not found")
	}
	return classify(err, "lock user")
}
