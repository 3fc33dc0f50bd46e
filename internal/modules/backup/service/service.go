package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/backup/domain"
	lectureDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	lectureRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/repository"
	statsService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/stats/service"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// MaxLectures caps the number of lectures in one export
const MaxLectures = 1000

// Service builds JSON backups of the lecture catalogue
type Service struct {
	lectures lectureRepo.Repository
	stats    *statsService.Service
}

// New creates a new backup service
func New(lectures lectureRepo.Repository, stats *statsService.Service) *Service {
	return &Service{
		lectures: lectures,
		stats:    stats,
	}
}

// Export snapshots the statistics and the newest lectures
func (s *Service) Export(ctx context.Context, now time.Time) (*domain.Backup, error) {
	stats, err := s.stats.ComputeStats(ctx)
	if err != nil {
		return nil, oops.With("context", "failed to export backup").Wrap(err)
	}

	lectures, err := s.lectures.GetLectures(ctx, lectureDomain.ListFilter{Limit: MaxLectures})
	if err != nil {
		return nil, oops.With("context", "failed to export backup").Wrap(err)
	}

	slog.Info("Backup exported", "lectures", len(lectures))

	return &domain.Backup{
		Timestamp:  now.UTC(),
		Statistics: stats,
		Lectures: lo.Map(lectures, func(l *lectureDomain.Lecture, _ int) domain.LectureRecord {
			return domain.LectureRecord{
				ID:            l.ID,
				Title:         l.Title,
				Description:   l.Description,
				Subject:       l.Subject,
				FileName:      l.FileName,
				OriginalName:  l.OriginalName,
				FileType:      l.FileType.String(),
				FileSize:      l.FileSize,
				DownloadCount: l.DownloadCount,
				CreatedAt:     l.CreatedAt,
			}
		}),
	}, nil
}

// FileName names the backup attachment for the given day
func FileName(now time.Time) string {
	return fmt.Sprintf("photogrammetry_backup_%s.json", now.UTC().Format(time.DateOnly))
}
