package repository

import (
	"context"
	stderrors "errors"

	downloadDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/samber/oops"
	"gorm.io/gorm"
)

const defaultPageSize = 20

// GormStorage implements lecture.Repository on a relational database
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a new GORM-backed lecture repository
func NewGormStorage(db *gorm.DB) Repository {
	return &GormStorage{db: db}
}

func (s *GormStorage) CreateLecture(ctx context.Context, lecture *domain.Lecture) error {
	if err := s.db.WithContext(ctx).Create(lecture).Error; err != nil {
		return oops.With("file_name", lecture.FileName, "context", "failed to insert lecture").
			Wrap(errors.Mark(errors.ErrPersistence, err))
	}
	return nil
}

func (s *GormStorage) GetLecture(ctx context.Context, lectureID string) (*domain.Lecture, error) {
	var lecture domain.Lecture
	if err := s.db.WithContext(ctx).Where("id = ?", lectureID).First(&lecture).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, oops.With("lecture_id", lectureID).Wrap(errors.ErrNotFound)
		}
		return nil, oops.With("lecture_id", lectureID, "context", "failed to read lecture").
			Wrap(errors.Mark(errors.ErrPersistence, err))
	}
	return &lecture, nil
}

func (s *GormStorage) GetLectures(ctx context.Context, filter domain.ListFilter) ([]*domain.Lecture, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := max(filter.Offset, 0)

	query := s.db.WithContext(ctx).Model(&domain.Lecture{})
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}

	var lectures []*domain.Lecture
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&lectures).Error; err != nil {
		return nil, oops.With("limit", limit, "offset", offset, "subject", filter.Subject, "context", "failed to list lectures").
			Wrap(errors.Mark(errors.ErrPersistence, err))
	}
	return lectures, nil
}

func (s *GormStorage) DeleteLecture(ctx context.Context, lectureID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lecture_id = ?", lectureID).Delete(&downloadDomain.Download{}).Error; err != nil {
			return errors.Mark(errors.ErrPersistence, err)
		}

		result := tx.Where("id = ?", lectureID).Delete(&domain.Lecture{})
		if result.Error != nil {
			return errors.Mark(errors.ErrPersistence, result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return oops.With("lecture_id", lectureID, "context", "failed to delete lecture").Wrap(err)
	}
	return nil
}

func (s *GormStorage) CountLectures(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Lecture{}).Count(&count).Error; err != nil {
		return 0, oops.With("context", "failed to count lectures").Wrap(errors.Mark(errors.ErrPersistence, err))
	}
	return count, nil
}

func (s *GormStorage) SumFileSize(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.Lecture{}).Select("COALESCE(SUM(file_size), 0)").Scan(&total).Error; err != nil {
		return 0, oops.With("context", "failed to sum file sizes").Wrap(errors.Mark(errors.ErrPersistence, err))
	}
	return total, nil
}
