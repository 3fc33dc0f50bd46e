package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/repository"
	lectureDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	userDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/database/databasetest"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seed(t *testing.T, db *gorm.DB) (*userDomain.User, *lectureDomain.Lecture) {
	t.Helper()
	user := &userDomain.User{TelegramID: 7, Username: "student"}
	require.NoError(t, db.Create(user).Error)

	lecture := &lectureDomain.Lecture{
		Title:      "Intro",
		Subject:    "photogrammetry",
		FileName:   "a.pdf",
		FilePath:   "/tmp/a.pdf",
		FileType:   lectureDomain.FileTypePdf,
		FileSize:   5,
		UploadedBy: user.ID,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, db.Create(lecture).Error)
	return user, lecture
}

func downloadCount(t *testing.T, db *gorm.DB, lectureID string) int64 {
	t.Helper()
	var lecture lectureDomain.Lecture
	require.NoError(t, db.Where("id = ?", lectureID).First(&lecture).Error)
	return lecture.DownloadCount
}

func TestRecordAndIncrement(t *testing.T) {
	db := databasetest.New(t)
	svc := New(repository.NewGormStorage(db))
	ctx := context.Background()
	user, lecture := seed(t, db)

	download, err := svc.RecordAndIncrement(ctx, user.ID, lecture.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, download.ID)
	assert.False(t, download.DownloadedAt.IsZero())
	assert.Equal(t, int64(1), downloadCount(t, db, lecture.ID))

	history, err := svc.ListByUser(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, lecture.ID, history[0].LectureID)
	require.NotNil(t, history[0].Lecture)
	assert.Equal(t, "Intro", history[0].Lecture.Title)
}

func TestRecordAndIncrementConcurrent(t *testing.T) {
	db := databasetest.New(t)
	svc := New(repository.NewGormStorage(db))
	ctx := context.Background()
	user, lecture := seed(t, db)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordAndIncrement(ctx, user.ID, lecture.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(n), downloadCount(t, db, lecture.ID))
	total, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), total)
}

func TestRecordAndIncrementMissingLecture(t *testing.T) {
	db := databasetest.New(t)
	svc := New(repository.NewGormStorage(db))
	ctx := context.Background()
	user, _ := seed(t, db)

	_, err := svc.RecordAndIncrement(ctx, user.ID, "gone")
	assert.ErrorIs(t, err, errors.ErrInconsistentState)

	total, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRecordAndIncrementRollsBackOnInsertFailure(t *testing.T) {
	db := databasetest.New(t)
	svc := New(repository.NewGormStorage(db))
	ctx := context.Background()
	_, lecture := seed(t, db)

	_, err := svc.RecordAndIncrement(ctx, "unknown-user", lecture.ID)
	assert.ErrorIs(t, err, errors.ErrPersistence)
	assert.Equal(t, int64(0), downloadCount(t, db, lecture.ID))
}
