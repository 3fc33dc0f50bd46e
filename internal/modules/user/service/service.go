package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/repository"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/samber/oops"
)

// Service handles user business logic
type Service struct {
	repo     repository.Repository
	adminIDs []int64
}

// New creates a new user service. Telegram IDs in adminIDs are promoted to
// admin when they register.
func New(repo repository.Repository, adminIDs []int64) *Service {
	return &Service{
		repo:     repo,
		adminIDs: adminIDs,
	}
}

// Register finds or creates the user for a Telegram profile. Existing
// profile fields are left untouched.
func (s *Service) Register(ctx context.Context, profile domain.Profile) (*domain.User, error) {
	if profile.TelegramID == 0 {
		return nil, oops.Wrap(errors.Mark(errors.ErrValidation, oops.Errorf("telegram id is required")))
	}

	user, err := s.repo.CreateUserIfAbsent(ctx, &domain.User{
		TelegramID: profile.TelegramID,
		Username:   profile.Username,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
	})
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin && slices.Contains(s.adminIDs, user.TelegramID) {
		user, err = s.repo.UpdateAdminStatus(ctx, user.TelegramID, true)
		if err != nil {
			return nil, err
		}
		slog.Info("Promoted configured admin", "telegram_id", user.TelegramID, "user_id", user.ID)
	}

	return user, nil
}

// Get retrieves a user by ID
func (s *Service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetUser(ctx, userID)
}

// GetByTelegramID retrieves a user by Telegram ID
func (s *Service) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return s.repo.GetUserByTelegramID(ctx, telegramID)
}

// SetAdmin grants or revokes the admin flag of a registered user
func (s *Service) SetAdmin(ctx context.Context, actor domain.Actor, telegramID int64, isAdmin bool) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, oops.With("user_id", actor.UserID, "telegram_id", telegramID).Wrap(errors.ErrForbidden)
	}

	if _, err := s.repo.GetUserByTelegramID(ctx, telegramID); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateAdminStatus(ctx, telegramID, isAdmin)
	if err != nil {
		return nil, err
	}

	slog.Info("Admin status changed", "telegram_id", telegramID, "is_admin", isAdmin, "by", actor.UserID)
	return user, nil
}

// GetAllUsers retrieves all users
func (s *Service) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// CountStudents returns the number of users without the admin flag
func (s *Service) CountStudents(ctx context.Context) (int64, error) {
	return s.repo.CountStudents(ctx)
}
