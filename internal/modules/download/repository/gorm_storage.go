package repository

import (
	"context"

	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/domain"
	lectureDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/samber/oops"
	"gorm.io/gorm"
)

const defaultHistorySize = 50

// GormStorage implements download.Repository on a relational database
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a new GORM-backed download repository
func NewGormStorage(db *gorm.DB) Repository {
	return &GormStorage{db: db}
}

func (s *GormStorage) RecordAndIncrement(ctx context.Context, download *domain.Download) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the counter goes first so a vanished lecture aborts before the insert
		result := tx.Model(&lectureDomain.Lecture{}).
			Where("id = ?", download.LectureID).
			UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
		if result.Error != nil {
			return errors.Mark(errors.ErrPersistence, result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.ErrInconsistentState
		}

		if err := tx.Create(download).Error; err != nil {
			return errors.Mark(errors.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return oops.With("lecture_id", download.LectureID, "user_id", download.UserID, "context", "failed to record download").Wrap(err)
	}
	return nil
}

func (s *GormStorage) GetDownloadsByUser(ctx context.Context, userID string, limit int) ([]*domain.Download, error) {
	if limit <= 0 {
		limit = defaultHistorySize
	}

	var downloads []*domain.Download
	err := s.db.WithContext(ctx).
		Preload("Lecture").
		Where("user_id = ?", userID).
		Order("downloaded_at DESC").
		Limit(limit).
		Find(&downloads).Error
	if err != nil {
		return nil, oops.With("user_id", userID, "context", "failed to list downloads").Wrap(errors.Mark(errors.ErrPersistence, err))
	}
	return downloads, nil
}

func (s *GormStorage) CountDownloads(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Download{}).Count(&count).Error; err != nil {
		return 0, oops.With("context", "failed to count downloads").Wrap(errors.Mark(errors.ErrPersistence, err))
	}
	return count, nil
}
