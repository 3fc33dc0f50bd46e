package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	backupService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/backup/service"
	downloadRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/repository"
	downloadService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/service"
	feedDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/feed/domain"
	feedService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/feed/service"
	fileRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/file/repository"
	lectureRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/repository"
	lectureService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/service"
	statsService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/stats/service"
	userDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	userRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/repository"
	userService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/service"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/config"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/database"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/scheduler"
	httpServer "github.com/reshetovitsme/lecture-telegram-bot/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/lecture-telegram-bot/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"gorm.io/gorm"
)

// cleanupTimeout bounds one scheduled reconciliation run
const cleanupTimeout = 10 * time.Minute

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Database
	do.Provide(injector, func(i do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, oops.With("database_driver", cfg.DatabaseDriver, "context", "failed to open database").Wrap(err)
		}
		return db, nil
	})

	// Register File Repository
	do.Provide(injector, func(i do.Injector) (fileRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := fileRepo.NewDiskStorage(cfg.UploadsDir)
		if err != nil {
			return nil, oops.With("uploads_dir", cfg.UploadsDir, "context", "failed to initialize file repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Repositories
	do.Provide(injector, func(i do.Injector) (lectureRepo.Repository, error) {
		return lectureRepo.NewGormStorage(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (userRepo.Repository, error) {
		return userRepo.NewGormStorage(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (downloadRepo.Repository, error) {
		return downloadRepo.NewGormStorage(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Register Lecture Service
	do.Provide(injector, func(i do.Injector) (*lectureService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return lectureService.New(
			do.MustInvoke[lectureRepo.Repository](i),
			do.MustInvoke[fileRepo.Repository](i),
			cfg.MaxUploadSize,
		), nil
	})

	// Register User Service
	do.Provide(injector, func(i do.Injector) (*userService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return userService.New(do.MustInvoke[userRepo.Repository](i), cfg.AdminTelegramIDs), nil
	})

	// Register Download Service
	do.Provide(injector, func(i do.Injector) (*downloadService.Service, error) {
		return downloadService.New(do.MustInvoke[downloadRepo.Repository](i)), nil
	})

	// Register Stats Service
	do.Provide(injector, func(i do.Injector) (*statsService.Service, error) {
		return statsService.New(
			do.MustInvoke[lectureRepo.Repository](i),
			do.MustInvoke[userRepo.Repository](i),
			do.MustInvoke[downloadRepo.Repository](i),
		), nil
	})

	// Register Backup Service
	do.Provide(injector, func(i do.Injector) (*backupService.Service, error) {
		return backupService.New(
			do.MustInvoke[lectureRepo.Repository](i),
			do.MustInvoke[*statsService.Service](i),
		), nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		return feedService.New(do.MustInvoke[lectureRepo.Repository](i), feedDomain.DefaultMeta), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		return telegramHandler.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*lectureService.Service](i),
			do.MustInvoke[*downloadService.Service](i),
			do.MustInvoke[*userService.Service](i),
			do.MustInvoke[*statsService.Service](i),
		), nil
	})

	// Register Bot
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := do.MustInvoke[*telegramHandler.Handler](i)

		opts := handler.Options()
		if cfg.TelegramAPIURL != "" {
			opts = append(opts, bot.WithServerURL(cfg.TelegramAPIURL))
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		handler.RegisterCommands(b)
		return b, nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		server := httpServer.New(
			cfg,
			do.MustInvoke[*lectureService.Service](i),
			do.MustInvoke[*downloadService.Service](i),
			do.MustInvoke[*statsService.Service](i),
			do.MustInvoke[*backupService.Service](i),
			do.MustInvoke[*feedService.Service](i),
			do.MustInvoke[*userService.Service](i),
			do.MustInvoke[fileRepo.Repository](i),
		)
		server.SetLogger(slog.Default())

		if cfg.WebhookURL != "" {
			b := do.MustInvoke[*bot.Bot](i)
			server.SetWebhookHandler(b.WebhookHandler())
		}
		return server, nil
	})

	// Register Scheduler
	do.Provide(injector, func(i do.Injector) (*scheduler.Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		s := scheduler.New()
		if cfg.CleanupInterval <= 0 {
			return s, nil
		}

		lectures := do.MustInvoke[*lectureService.Service](i)
		interval := time.Duration(cfg.CleanupInterval) * time.Second
		if _, err := s.ScheduleInterval(interval, func() {
			ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
			defer cancel()

			removed, err := lectures.Reconcile(ctx, userDomain.SystemActor)
			if err != nil {
				slog.Error("Scheduled cleanup failed", "removed", removed, "error", err)
				return
			}
			slog.Info("Scheduled cleanup finished", "removed", removed)
		}); err != nil {
			return nil, oops.With("cleanup_interval", cfg.CleanupInterval, "context", "failed to schedule cleanup").Wrap(err)
		}
		return s, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(ctx context.Context, injector do.Injector) error {
	// The bot stops with the context passed to Start
	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Failed to shut down HTTP server", "error", err)
		}
	}

	if s, err := do.Invoke[*scheduler.Scheduler](injector); err == nil && s != nil {
		s.Stop(ctx)
	}

	if db, err := do.Invoke[*gorm.DB](injector); err == nil && db != nil {
		if err := database.Close(db); err != nil {
			return oops.With("context", "failed to close database").Wrap(err)
		}
	}

	return nil
}
