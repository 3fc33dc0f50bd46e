package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	downloadRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/repository"
	lectureDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	lectureRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/repository"
	statsService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/stats/service"
	userDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	userRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/repository"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/database/databasetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()

	lectures := lectureRepo.NewGormStorage(db)
	svc := New(lectures, statsService.New(lectures, userRepo.NewGormStorage(db), downloadRepo.NewGormStorage(db)))

	admin := &userDomain.User{TelegramID: 1, IsAdmin: true}
	require.NoError(t, db.Create(admin).Error)
	require.NoError(t, lectures.CreateLecture(ctx, &lectureDomain.Lecture{
		Title:       "Intro",
		Description: "first",
		Subject:     "photogrammetry",
		FileName:    "a.pdf",
		FilePath:    "/srv/uploads/a.pdf",
		FileType:    lectureDomain.FileTypePdf,
		FileSize:    5,
		UploadedBy:  admin.ID,
		CreatedAt:   time.Now(),
	}))

	now := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	backup, err := svc.Export(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, now, backup.Timestamp)
	assert.Equal(t, int64(1), backup.Statistics.TotalLectures)
	assert.Equal(t, int64(5), backup.Statistics.StorageUsed)
	require.Len(t, backup.Lectures, 1)
	assert.Equal(t, "pdf", backup.Lectures[0].FileType)

	raw, err := json.Marshal(backup)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "/srv/uploads")
	assert.Contains(t, string(raw), `"downloadCount":0`)
	assert.Contains(t, string(raw), `"totalLectures":1`)
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "photogrammetry_backup_2024-03-09.json", FileName(now))
}
