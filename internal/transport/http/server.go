package http

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	backupService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/backup/service"
	downloadService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/service"
	feedService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/feed/service"
	fileRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/file/repository"
	lectureService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/service"
	statsService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/stats/service"
	userService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/service"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/config"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/metrics"
	sloghttp "github.com/samber/slog-http"
)

// WebhookPath receives Telegram updates in webhook mode
const WebhookPath = "/webhook/telegram"

// Server exposes the admin REST API, raw uploads and the lecture feed
type Server struct {
	cfg             *config.Config
	lectureService  *lectureService.Service
	downloadService *downloadService.Service
	statsService    *statsService.Service
	backupService   *backupService.Service
	feedService     *feedService.Service
	userService     *userService.Service
	files           fileRepo.Repository
	validate        *validator.Validate
	webhook         http.Handler
	logger          *slog.Logger
	server          *http.Server
}

// New creates a new HTTP server
func New(
	cfg *config.Config,
	lectureService *lectureService.Service,
	downloadService *downloadService.Service,
	statsService *statsService.Service,
	backupService *backupService.Service,
	feedService *feedService.Service,
	userService *userService.Service,
	files fileRepo.Repository,
) *Server {
	return &Server{
		cfg:             cfg,
		lectureService:  lectureService,
		downloadService: downloadService,
		statsService:    statsService,
		backupService:   backupService,
		feedService:     feedService,
		userService:     userService,
		files:           files,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		logger:          slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// SetWebhookHandler mounts the Telegram webhook receiver
func (s *Server) SetWebhookHandler(h http.Handler) {
	s.webhook = h
}

// Handler builds the routed handler with access logging and panic recovery
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/lectures", s.handleListLectures)
	mux.HandleFunc("GET /api/lectures/{id}", s.handleGetLecture)
	mux.HandleFunc("POST /api/lectures", s.handleCreateLecture)
	mux.HandleFunc("DELETE /api/lectures/{id}", s.handleDeleteLecture)
	mux.HandleFunc("POST /api/cleanup", s.handleCleanup)
	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("GET /api/users/{id}/downloads", s.handleUserDownloads)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/broadcast", s.handleBroadcast)
	mux.HandleFunc("GET /uploads/{filename}", s.handleUpload)
	mux.HandleFunc("GET /feed.rss", s.handleFeed)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	if s.webhook != nil {
		mux.Handle("POST "+WebhookPath, s.webhook)
	}

	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)
	return handler
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("HTTP server starting", "addr", addr)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	if err := s.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
