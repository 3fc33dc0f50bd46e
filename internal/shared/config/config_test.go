package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("ADMIN_TELEGRAM_IDS", "11, 22,bogus")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.TelegramBotToken)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, DatabaseDriverSqlite, cfg.DatabaseDriver)
	assert.Equal(t, "./uploads", cfg.UploadsDir)
	assert.Equal(t, DefaultMaxUploadSize, cfg.MaxUploadSize)
	assert.Equal(t, "photogrammetry", cfg.DefaultSubject)
	assert.Equal(t, 1000, cfg.DedupCapacity)
	assert.Equal(t, AppEnvProduction, cfg.AppEnv)
	assert.Equal(t, []int64{11, 22}, cfg.AdminTelegramIDs)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")

	content := `
http_port: "9090"
database_driver: MySQL
database_dsn: "user:pass@tcp(localhost:3306)/lectures"
max_upload_size: 1024
admin_telegram_ids: [10, 20]
app_env: development
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, DatabaseDriverMysql, cfg.DatabaseDriver)
	assert.Equal(t, int64(1024), cfg.MaxUploadSize)
	assert.Equal(t, []int64{10, 20}, cfg.AdminTelegramIDs)
	assert.Equal(t, AppEnvDevelopment, cfg.AppEnv)
}

func TestLoadMissingToken(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	assert.ErrorIs(t, err, errors.ErrMissingBotToken)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalidDatabaseDriver)
}

func TestParseTelegramIDs(t *testing.T) {
	assert.Equal(t, []int64{}, ParseTelegramIDs(""))
	assert.Equal(t, []int64{1, 2, 3}, ParseTelegramIDs("1,2, 3,,"))
}
