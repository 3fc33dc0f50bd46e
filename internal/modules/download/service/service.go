package service

import (
	"context"
	"log/slog"

	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/repository"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/metrics"
)

// Service handles download accounting
type Service struct {
	repo repository.Repository
}

// New creates a new download service
func New(repo repository.Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// RecordAndIncrement counts one delivery of a lecture to a user. The counter
// and the download row are written together or not at all.
func (s *Service) RecordAndIncrement(ctx context.Context, userID, lectureID string) (*domain.Download, error) {
	download := &domain.Download{UserID: userID, LectureID: lectureID}
	if err := s.repo.RecordAndIncrement(ctx, download); err != nil {
		return nil, err
	}

	metrics.Downloads.Inc()
	slog.Debug("Download recorded", "lecture_id", lectureID, "user_id", userID)
	return download, nil
}

// ListByUser returns a user's most recent downloads, newest first
func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Download, error) {
	return s.repo.GetDownloadsByUser(ctx, userID, limit)
}

// Count returns the total number of recorded downloads
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.CountDownloads(ctx)
}
