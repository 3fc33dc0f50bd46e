// Package databasetest opens throwaway SQLite databases for tests.
package databasetest

import (
	"path/filepath"
	"testing"

	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/config"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/database"
	"gorm.io/gorm"
)

// New returns a migrated database living in t.TempDir().
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseDriverSqlite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
