package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// DefaultMaxUploadSize is the 20 MiB ingestion limit shared by both adapters.
const DefaultMaxUploadSize int64 = 20 * 1024 * 1024

type Config struct {
	TelegramBotToken string         `koanf:"telegram_bot_token"`
	TelegramAPIURL   string         `koanf:"telegram_api_url"`
	HTTPPort         string         `koanf:"http_port"`
	DatabaseDriver   DatabaseDriver `koanf:"-"`
	DatabaseDSN      string         `koanf:"database_dsn"`
	UploadsDir       string         `koanf:"uploads_dir"`
	MaxUploadSize    int64          `koanf:"max_upload_size"`
	DefaultSubject   string         `koanf:"default_subject"`
	AdminTelegramIDs []int64        `koanf:"-"`
	WebPanelURL      string         `koanf:"web_panel_url"`
	WebhookURL       string         `koanf:"webhook_url"`
	CleanupInterval  int            `koanf:"cleanup_interval"`
	DedupCapacity    int            `koanf:"dedup_capacity"`
	AppEnv           AppEnv         `koanf:"-"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	// First existing file wins
	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	// Set defaults
	defaults := map[string]any{
		"telegram_api_url": "https://api.telegram.org",
		"http_port":        "8080",
		"database_driver":  string(DatabaseDriverSqlite),
		"database_dsn":     "./data/lectures.db",
		"uploads_dir":      "./uploads",
		"max_upload_size":  DefaultMaxUploadSize,
		"default_subject":  "photogrammetry",
		"cleanup_interval": 0,
		"dedup_capacity":   1000,
		"app_env":          string(AppEnvProduction),
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	// Parse AdminTelegramIDs from comma-separated string if it's a string
	if ids := k.Get("admin_telegram_ids"); ids != nil {
		switch v := ids.(type) {
		case string:
			cfg.AdminTelegramIDs = ParseTelegramIDs(v)
		case []interface{}:
			cfg.AdminTelegramIDs = lo.FilterMap(v, func(item interface{}, _ int) (int64, bool) {
				switch val := item.(type) {
				case int64:
					return val, true
				case int:
					return int64(val), true
				case float64:
					return int64(val), true
				default:
					return 0, false
				}
			})
		}
	}

	// Parse enums, falling back where a bad value is harmless
	appEnv, err := ParseAppEnv(k.String("app_env"))
	if err != nil {
		appEnv = AppEnvProduction
	}
	cfg.AppEnv = appEnv

	driver, err := ParseDatabaseDriver(k.String("database_driver"))
	if err != nil {
		return nil, oops.With("database_driver", k.String("database_driver")).Wrap(err)
	}
	cfg.DatabaseDriver = driver

	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}

	// Validate required fields
	if cfg.TelegramBotToken == "" {
		return nil, errors.ErrMissingBotToken
	}

	return &cfg, nil
}

// ParseTelegramIDs parses comma-separated user IDs string into []int64
func ParseTelegramIDs(s string) []int64 {
	if s == "" {
		return []int64{}
	}
	parts := strings.Split(s, ",")
	return lo.FilterMap(parts, func(part string, _ int) (int64, bool) {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, false
		}
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
			return id, true
		}
		return 0, false
	})
}
