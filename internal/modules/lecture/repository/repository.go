package repository

import (
	"context"

	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
)

// Repository defines the interface for lecture data persistence
type Repository interface {
	CreateLecture(ctx context.Context, lecture *domain.Lecture) error
	GetLecture(ctx context.Context, lectureID string) (*domain.Lecture, error)
	GetLectures(ctx context.Context, filter domain.ListFilter) ([]*domain.Lecture, error)
	// DeleteLecture removes the lecture row together with its downloads.
	// It fails with ErrNotFound when no row was deleted.
	DeleteLecture(ctx context.Context, lectureID string) error
	CountLectures(ctx context.Context) (int64, error)
	SumFileSize(ctx context.Context) (int64, error)
}
