package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/di"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/config"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/scheduler"
	httpServer "github.com/reshetovitsme/lecture-telegram-bot/internal/transport/http"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Setup structured logging with multiple handlers using slog-multi
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	// Use Fanout to send logs to both handlers
	multiHandler := slogmulti.Fanout(textHandler, jsonHandler)
	logger := slog.New(multiHandler)
	slog.SetDefault(logger)

	// Setup dependency injection
	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := di.Shutdown(ctx, injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	// Get services from DI container
	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	b, err := do.Invoke[*bot.Bot](injector)
	if err != nil {
		slog.Error("Failed to initialize bot", "error", err)
		os.Exit(1)
	}
	server, err := do.Invoke[*httpServer.Server](injector)
	if err != nil {
		slog.Error("Failed to initialize HTTP server", "error", err)
		os.Exit(1)
	}
	cleanup, err := do.Invoke[*scheduler.Scheduler](injector)
	if err != nil {
		slog.Error("Failed to initialize scheduler", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cleanup.Start()

	// Start HTTP server
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("HTTP server failed", "error", err)
			cancel()
		}
	}()

	if cfg.WebhookURL != "" {
		webhookURL := strings.TrimSuffix(cfg.WebhookURL, "/") + httpServer.WebhookPath
		if _, err := b.SetWebhook(ctx, &bot.SetWebhookParams{URL: webhookURL}); err != nil {
			slog.Error("Failed to set webhook", "url", webhookURL, "error", err)
			return
		}
		slog.Info("Application started", "port", cfg.HTTPPort, "mode", "webhook", "webhook_url", webhookURL)
		b.StartWebhook(ctx)
	} else {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
			slog.Warn("Failed to delete webhook", "error", err)
		}
		slog.Info("Application started", "port", cfg.HTTPPort, "mode", "polling", "env", cfg.AppEnv)
		b.Start(ctx)
	}

	slog.Info("Shutting down...")
}
