package database

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	downloadDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/domain"
	lectureDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	userDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/config"
	"github.com/samber/oops"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database and migrates the schema.
func Open(driver config.DatabaseDriver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DatabaseDriverMysql:
		dialector = mysql.Open(dsn)
	case config.DatabaseDriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DatabaseDriverSqlite, "":
		if err := ensureDirForSQLite(dsn); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(sqliteDSN(dsn))
	default:
		return nil, oops.With("database_driver", driver).Errorf("unsupported database driver")
	}

	dbLogger := logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, oops.With("database_driver", driver, "context", "failed to open database").Wrap(err)
	}

	if driver == config.DatabaseDriverSqlite || driver == "" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, oops.With("context", "failed to get sql handle").Wrap(err)
		}
		// SQLite allows one writer; a single connection turns lock
		// contention into queueing.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the users, lectures and downloads tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userDomain.User{}, &lectureDomain.Lecture{}, &downloadDomain.Download{}); err != nil {
		return oops.With("context", "failed to migrate database").Wrap(err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=1&_busy_timeout=5000"
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return oops.With("dir", dir, "context", "failed to create database directory").Wrap(err)
	}
	return nil
}
