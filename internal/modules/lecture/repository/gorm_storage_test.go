package repository

import (
	"context"
	"testing"
	"time"

	downloadDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	userDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/database/databasetest"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB) *userDomain.User {
	t.Helper()
	user := &userDomain.User{TelegramID: 42, Username: "admin", IsAdmin: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newLecture(uploader, title, subject string, size int64, createdAt time.Time) *domain.Lecture {
	return &domain.Lecture{
		Title:      title,
		Subject:    subject,
		FileName:   title + ".pdf",
		FilePath:   "/tmp/" + title + ".pdf",
		FileType:   domain.FileTypePdf,
		FileSize:   size,
		UploadedBy: uploader,
		CreatedAt:  createdAt,
	}
}

func TestCreateAndGetLecture(t *testing.T) {
	db := databasetest.New(t)
	repo := NewGormStorage(db)
	ctx := context.Background()
	user := seedUser(t, db)

	lecture := newLecture(user.ID, "Intro", "photogrammetry", 5, time.Now())
	require.NoError(t, repo.CreateLecture(ctx, lecture))
	assert.NotEmpty(t, lecture.ID)

	got, err := repo.GetLecture(ctx, lecture.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro", got.Title)
	assert.Equal(t, domain.FileTypePdf, got.FileType)
	assert.Equal(t, int64(0), got.DownloadCount)
}

func TestCreateLectureRequiresUploader(t *testing.T) {
	db := databasetest.New(t)
	repo := NewGormStorage(db)

	err := repo.CreateLecture(context.Background(), newLecture("missing-user", "Orphan", "x", 1, time.Now()))
	assert.ErrorIs(t, err, errors.ErrPersistence)
}

func TestGetLectureNotFound(t *testing.T) {
	repo := NewGormStorage(databasetest.New(t))

	_, err := repo.GetLecture(context.Background(), "nope")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestGetLecturesNewestFirstWithPaging(t *testing.T) {
	db := databasetest.New(t)
	repo := NewGormStorage(db)
	ctx := context.Background()
	user := seedUser(t, db)

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"first", "second", "third"} {
		require.NoError(t, repo.CreateLecture(ctx, newLecture(user.ID, title, "photogrammetry", 1, base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, repo.CreateLecture(ctx, newLecture(user.ID, "other", "geodesy", 1, base.Add(time.Hour))))

	all, err := repo.GetLectures(ctx, domain.ListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "other", all[0].Title)
	assert.Equal(t, "first", all[3].Title)

	page, err := repo.GetLectures(ctx, domain.ListFilter{Limit: 2, Offset: 1, Subject: "photogrammetry"})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "second", page[0].Title)
	assert.Equal(t, "first", page[1].Title)

	defaults, err := repo.GetLectures(ctx, domain.ListFilter{Limit: 0, Offset: -5})
	require.NoError(t, err)
	assert.Len(t, defaults, 4)
}

func TestDeleteLectureRemovesDownloads(t *testing.T) {
	db := databasetest.New(t)
	repo := NewGormStorage(db)
	ctx := context.Background()
	user := seedUser(t, db)

	lecture := newLecture(user.ID, "Intro", "photogrammetry", 5, time.Now())
	require.NoError(t, repo.CreateLecture(ctx, lecture))
	require.NoError(t, db.Create(&downloadDomain.Download{UserID: user.ID, LectureID: lecture.ID}).Error)
	require.NoError(t, db.Create(&downloadDomain.Download{UserID: user.ID, LectureID: lecture.ID}).Error)

	require.NoError(t, repo.DeleteLecture(ctx, lecture.ID))

	var remaining int64
	require.NoError(t, db.Model(&downloadDomain.Download{}).Where("lecture_id = ?", lecture.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	_, err := repo.GetLecture(ctx, lecture.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	// the second deleter loses
	assert.ErrorIs(t, repo.DeleteLecture(ctx, lecture.ID), errors.ErrNotFound)
}

func TestCountAndSum(t *testing.T) {
	db := databasetest.New(t)
	repo := NewGormStorage(db)
	ctx := context.Background()

	total, err := repo.SumFileSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	user := seedUser(t, db)
	require.NoError(t, repo.CreateLecture(ctx, newLecture(user.ID, "a", "s", 100, time.Now())))
	require.NoError(t, repo.CreateLecture(ctx, newLecture(user.ID, "b", "s", 23, time.Now())))

	count, err := repo.CountLectures(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	total, err = repo.SumFileSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(123), total)
}
