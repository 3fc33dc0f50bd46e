package repository

import (
	"context"

	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
)

// Repository defines the interface for user data persistence
type Repository interface {
	// CreateUserIfAbsent inserts user unless its Telegram ID is already
	// registered and returns the stored row either way.
	CreateUserIfAbsent(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	UpdateAdminStatus(ctx context.Context, telegramID int64, isAdmin bool) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]*domain.User, error)
	CountStudents(ctx context.Context) (int64, error)
}
