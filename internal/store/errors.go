package store

import (
	"context"
	"errors"
	"strings"

	"github.com/consultdesk/consultdesk/internal/apperr"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// classify converts a raw driver or gorm error into an apperr error. Errors
// that are already classified pass through untouched.
func classify(err error, action string) error {
	if err == nil {
		return nil
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("Record not found")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warnf("%s: store timeout: %v", action, err)
		return apperr.Store("store timeout", pkgerrors.Wrap(err, action))
	case isDuplicateKey(err):
		return apperr.Conflict("Record already exists")
	case isForeignKeyViolation(err):
		return apperr.Conflict("Record is referenced by other records")
	}

	log.Errorf("%s: %v", action, err)
	return apperr.Store("store failure", pkgerrors.Wrap(err, action))
}

// notFound maps a missing row to a NotFound error naming entity.
func notFound(err error, entity, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", entity)
	}
	return classify(err, action)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var myErr *mysqldrv.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}

	var myErr *mysqldrv.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlRowIsReferenced || myErr.Number == mysqlNoReferencedRow
	}

	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
