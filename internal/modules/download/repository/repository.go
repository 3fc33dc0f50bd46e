package repository

import (
	"context"

	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/domain"
)

// Repository defines the interface for download accounting persistence
type Repository interface {
	// RecordAndIncrement bumps the lecture's download count and inserts the
	// download row in one transaction.
	RecordAndIncrement(ctx context.Context, download *domain.Download) error
	GetDownloadsByUser(ctx context.Context, userID string, limit int) ([]*domain.Download, error)
	CountDownloads(ctx context.Context) (int64, error)
}
