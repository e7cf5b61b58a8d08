package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/consultdesk/consultdesk/internal/apperr"
	"github.com/consultdesk/consultdesk/internal/models"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T, timeout time.Duration) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return New(gdb, timeout), mock
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"not found", gorm.ErrRecordNotFound, apperr.KindNotFound},
		{"gorm duplicate", gorm.ErrDuplicatedKey, apperr.KindConflict},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, apperr.KindConflict},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, apperr.KindConflict},
		{"mysql duplicate", &mysqldrv.MySQLError{Number: 1062}, apperr.KindConflict},
		{"mysql fk", &mysqldrv.MySQLError{Number: 1451}, apperr.KindConflict},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: students.email (2067)"), apperr.KindConflict},
		{"timeout", context.DeadlineExceeded, apperr.KindStore},
		{"other", errors.New("connection reset by peer"), apperr.KindStore},
		{"classified", apperr.Validation("bad"), apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.KindOf(classify(tt.err, "test")); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}

	if classify(nil, "test") != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestQueryFailureIsStoreError(t *testing.T) {
	s, mock := newMockStore(t, time.Second)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `projects`")).
		WillReturnError(errors.New("connection reset by peer"))

	_, err := s.ListProjects(context.Background(), "u1")
	if !apperr.Is(err, apperr.KindStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMySQLDuplicateEmailIsConflict(t *testing.T) {
	s, mock := newMockStore(t, time.Second)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `students`")).
		WillReturnError(&mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := s.CreateStudent(context.Background(), &models.Student{
		Name:    "Carol",
		Email:   "carol@uni.example.edu",
		Program: "CS",
		Level:   models.LevelMS,
		UserID:  "u1",
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSlowQueryTimesOut(t *testing.T) {
	s, mock := newMockStore(t, 20*time.Millisecond)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `students`")).
		WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.ListStudents(context.Background(), "u1")
	if !apperr.Is(err, apperr.KindStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}
