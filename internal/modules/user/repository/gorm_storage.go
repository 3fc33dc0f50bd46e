package repository

import (
	"context"
	stderrors "errors"

	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/samber/oops"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStorage implements user.Repository on a relational database
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a new GORM-backed user repository
func NewGormStorage(db *gorm.DB) Repository {
	return &GormStorage{db: db}
}

func (s *GormStorage) CreateUserIfAbsent(ctx context.Context, user *domain.User) (*domain.User, error) {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "telegram_id"}}, DoNothing: true}).
		Create(user).Error
	if err != nil {
		return nil, oops.With("telegram_id", user.TelegramID, "context", "failed to create user").
			Wrap(errors.Mark(errors.ErrPersistence, err))
	}
	return s.GetUserByTelegramID(ctx, user.TelegramID)
}

func (s *GormStorage) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, lookupError(err, "user_id", userID)
	}
	return &user, nil
}

func (s *GormStorage) GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, lookupError(err, "telegram_id", telegramID)
	}
	return &user, nil
}

func (s *GormStorage) UpdateAdminStatus(ctx context.Context, telegramID int64, isAdmin bool) (*domain.User, error) {
	result := s.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("telegram_id = ?", telegramID).
		Update("is_admin", isAdmin)
	if result.Error != nil {
		return nil, oops.With("telegram_id", telegramID, "context", "failed to update admin status").
			Wrap(errors.Mark(errors.ErrPersistence, result.Error))
	}
	// RowsAffected is not checked: MySQL reports zero when the value is unchanged
	return s.GetUserByTelegramID(ctx, telegramID)
}

func (s *GormStorage) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, oops.With("context", "failed to list users").Wrap(errors.Mark(errors.ErrPersistence, err))
	}
	return users, nil
}

func (s *GormStorage) CountStudents(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("is_admin = ?", false).Count(&count).Error; err != nil {
		return 0, oops.With("context", "failed to count students").Wrap(errors.Mark(errors.ErrPersistence, err))
	}
	return count, nil
}

func lookupError(err error, key string, value any) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return oops.With(key, value).Wrap(errors.ErrNotFound)
	}
	return oops.With(key, value, "context", "failed to read user").Wrap(errors.Mark(errors.ErrPersistence, err))
}
