package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// oneRunningIndex enforces at most one running time entry per user. MySQL
// has no partial indexes; there the store serializes timer starts with a row
// lock on the user instead.
const oneRunningIndex = "CREATE UNIQUE INDEX IF NOT EXISTS idx_time_entries_one_running ON time_entries (user_id) WHERE is_running"

func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(sqliteDSN(dsn)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// sqliteDSN turns on foreign key enforcement, which sqlite leaves off per
// connection by default.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		Logger: logger.Default.LogMode(logger.Warn),
	}
}

func ConnectDatabase(driver, dsn string) (*gorm.DB, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, Config())
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// A single connection serializes writers so concurrent requests
		// queue instead of failing with SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func MigrateDatabase(db *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Student{},
		&models.Project{},
		&models.ProjectStudent{},
		&models.TimeEntry{},
		&models.Invoice{},
		&models.InvoiceItem{},
	}

	if err := db.AutoMigrate(tables...); err != nil {
		return err
	}

	switch db.Dialector.Name() {
	case DriverPostgres, DriverSQLite:
		if err := db.Exec(oneRunningIndex).Error; err != nil {
			return fmt.Errorf("create running entry index: %w", err)
		}
	}

	return nil
}
