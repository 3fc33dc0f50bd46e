package service

import (
	"context"

	downloadRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/repository"
	lectureRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/repository"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/stats/domain"
	userRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/repository"
	"github.com/samber/oops"
)

// Service aggregates read-only statistics across the stores
type Service struct {
	lectures  lectureRepo.Repository
	users     userRepo.Repository
	downloads downloadRepo.Repository
}

// New creates a new stats service
func New(lectures lectureRepo.Repository, users userRepo.Repository, downloads downloadRepo.Repository) *Service {
	return &Service{
		lectures:  lectures,
		users:     users,
		downloads: downloads,
	}
}

// ComputeStats counts lectures, students and downloads and sums the stored
// file sizes. The figures are read separately and need not be mutually
// consistent under concurrent writes.
func (s *Service) ComputeStats(ctx context.Context) (*domain.Stats, error) {
	totalLectures, err := s.lectures.CountLectures(ctx)
	if err != nil {
		return nil, oops.With("context", "failed to compute stats").Wrap(err)
	}

	activeStudents, err := s.users.CountStudents(ctx)
	if err != nil {
		return nil, oops.With("context", "failed to compute stats").Wrap(err)
	}

	totalDownloads, err := s.downloads.CountDownloads(ctx)
	if err != nil {
		return nil, oops.With("context", "failed to compute stats").Wrap(err)
	}

	storageUsed, err := s.lectures.SumFileSize(ctx)
	if err != nil {
		return nil, oops.With("context", "failed to compute stats").Wrap(err)
	}

	return &domain.Stats{
		TotalLectures:  totalLectures,
		ActiveStudents: activeStudents,
		TotalDownloads: totalDownloads,
		StorageUsed:    storageUsed,
	}, nil
}
