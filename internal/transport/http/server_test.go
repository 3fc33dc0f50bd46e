package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	backupService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/backup/service"
	downloadRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/repository"
	downloadService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/service"
	feedDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/feed/domain"
	feedService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/feed/service"
	fileRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/file/repository"
	lectureDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	lectureRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/repository"
	lectureService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/service"
	statsDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/stats/domain"
	statsService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/stats/service"
	userDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	userRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/repository"
	userService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/service"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/config"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/database/databasetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 1024

type testEnv struct {
	handler   http.Handler
	files     fileRepo.Repository
	lectures  *lectureService.Service
	downloads *downloadService.Service
	admin     *userDomain.User
	student   *userDomain.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := databasetest.New(t)
	ctx := context.Background()

	files, err := fileRepo.NewDiskStorage(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	lRepo := lectureRepo.NewGormStorage(db)
	uRepo := userRepo.NewGormStorage(db)
	dRepo := downloadRepo.NewGormStorage(db)

	users := userService.New(uRepo, []int64{1})
	lectures := lectureService.New(lRepo, files, testMaxUpload)
	stats := statsService.New(lRepo, uRepo, dRepo)
	downloads := downloadService.New(dRepo)

	admin, err := users.Register(ctx, userDomain.Profile{TelegramID: 1, Username: "admin"})
	require.NoError(t, err)
	student, err := users.Register(ctx, userDomain.Profile{TelegramID: 2, Username: "student"})
	require.NoError(t, err)

	server := New(
		&config.Config{HTTPPort: "0"},
		lectures,
		downloads,
		stats,
		backupService.New(lRepo, stats),
		feedService.New(lRepo, feedDomain.DefaultMeta),
		users,
		files,
	)

	return &testEnv{
		handler:   server.Handler(),
		files:     files,
		lectures:  lectures,
		downloads: downloads,
		admin:     admin,
		student:   student,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedLecture(t *testing.T, title string) *lectureDomain.Lecture {
	t.Helper()
	lecture, err := e.lectures.Create(context.Background(), userDomain.ActorFor(e.admin), lectureDomain.CreateInput{
		Title:        title,
		Subject:      "photogrammetry",
		Data:         []byte("%PDF-"),
		OriginalName: title + ".pdf",
		ContentType:  "application/pdf",
		UploaderID:   e.admin.ID,
	})
	require.NoError(t, err)
	return lecture
}

func uploadRequest(t *testing.T, fields map[string]string, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/lectures", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListAndGetLectures(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/lectures", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	lecture := env.seedLecture(t, "Intro")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/lectures?limit=abc&subject=photogrammetry", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []lectureDomain.Lecture
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, lecture.ID, list[0].ID)
	assert.Contains(t, rec.Body.String(), `"downloadCount":0`)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/lectures/"+lecture.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/lectures/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Лекцію не знайдено", decodeMessage(t, rec))
}

func TestCreateLecture(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(uploadRequest(t, map[string]string{
		"title":      "Intro",
		"subject":    "photogrammetry",
		"uploadedBy": env.admin.ID,
	}, "a.pdf", "application/pdf", []byte("%PDF-")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var lecture lectureDomain.Lecture
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lecture))
	assert.Equal(t, lectureDomain.FileTypePdf, lecture.FileType)
	assert.Equal(t, int64(5), lecture.FileSize)
	assert.FileExists(t, lecture.FilePath)
}

func TestCreateLectureRejections(t *testing.T) {
	env := newTestEnv(t)
	valid := func() map[string]string {
		return map[string]string{"title": "Intro", "subject": "photogrammetry", "uploadedBy": env.admin.ID}
	}

	t.Run("missing file", func(t *testing.T) {
		rec := env.do(uploadRequest(t, valid(), "", "", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Файл обов'язковий", decodeMessage(t, rec))
	})

	t.Run("missing title", func(t *testing.T) {
		fields := valid()
		delete(fields, "title")
		rec := env.do(uploadRequest(t, fields, "a.pdf", "application/pdf", []byte("%PDF-")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		rec := env.do(uploadRequest(t, valid(), "big.pdf", "application/pdf", make([]byte, testMaxUpload+1)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		rec := env.do(uploadRequest(t, valid(), "notes.txt", "text/plain", []byte("hello")))
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("html named as pdf", func(t *testing.T) {
		rec := env.do(uploadRequest(t, valid(), "evil.pdf", "text/html", []byte("<html><body>x</body></html>")))
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("unknown uploader", func(t *testing.T) {
		fields := valid()
		fields["uploadedBy"] = "nobody"
		rec := env.do(uploadRequest(t, fields, "a.pdf", "application/pdf", []byte("%PDF-")))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("student uploader", func(t *testing.T) {
		fields := valid()
		fields["uploadedBy"] = env.student.ID
		rec := env.do(uploadRequest(t, fields, "a.pdf", "application/pdf", []byte("%PDF-")))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	assert.Zero(t, countFiles(t, env.files.Dir()))
}

func TestDeleteLecture(t *testing.T) {
	env := newTestEnv(t)
	lecture := env.seedLecture(t, "Intro")

	rec := env.do(httptest.NewRequest(http.MethodDelete, "/api/lectures/"+lecture.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Лекцію видалено", decodeMessage(t, rec))
	assert.NoFileExists(t, lecture.FilePath)

	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/lectures/"+lecture.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCleanup(t *testing.T) {
	env := newTestEnv(t)
	env.seedLecture(t, "kept")
	lost := env.seedLecture(t, "lost")
	require.NoError(t, os.Remove(lost.FilePath))

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/cleanup", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Removed int `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Removed)
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.seedLecture(t, "Intro")

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lecturebot_lectures_created_total")
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var users []userDomain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestUserDownloads(t *testing.T) {
	env := newTestEnv(t)
	lecture := env.seedLecture(t, "Intro")
	_, err := env.downloads.RecordAndIncrement(context.Background(), env.student.ID, lecture.ID)
	require.NoError(t, err)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/users/"+env.student.ID+"/downloads", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var downloads []struct {
		LectureID string `json:"lectureId"`
		Lecture   struct {
			Title string `json:"title"`
		} `json:"lecture"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &downloads))
	require.Len(t, downloads, 1)
	assert.Equal(t, lecture.ID, downloads[0].LectureID)
	assert.Equal(t, "Intro", downloads[0].Lecture.Title)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/users/"+env.admin.ID+"/downloads", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/users/missing/downloads", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsAndExport(t *testing.T) {
	env := newTestEnv(t)
	env.seedLecture(t, "Intro")

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stats statsDomain.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, statsDomain.Stats{TotalLectures: 1, ActiveStudents: 1, StorageUsed: 5}, stats)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="photogrammetry_backup_`)
	assert.Contains(t, rec.Body.String(), `"statistics"`)
	assert.Contains(t, rec.Body.String(), `"Intro"`)
}

func TestBroadcast(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/broadcast", strings.NewReader(`{"message":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/broadcast", strings.NewReader(`{"message":"hi"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Оголошення надіслано", decodeMessage(t, rec))
}

func TestServeUploads(t *testing.T) {
	env := newTestEnv(t)
	lecture := env.seedLecture(t, "Intro")

	rec := env.do(httptest.NewRequest(http.MethodGet, "/uploads/"+lecture.FileName, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-", rec.Body.String())

	rec = env.do(httptest.NewRequest(http.MethodGet, "/uploads/"+lecture.OriginalName, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/uploads/missing.pdf", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Файл не знайдено", decodeMessage(t, rec))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/uploads/.upload-123", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/uploads/..%2F..%2Fetc%2Fpasswd", nil))
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestFeed(t *testing.T) {
	env := newTestEnv(t)
	env.seedLecture(t, "Intro")

	req := httptest.NewRequest(http.MethodGet, "/feed.rss", nil)
	req.Host = "lectures.example.org"
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "http://lectures.example.org/uploads/")
}

func TestWebhookMountedWhenConfigured(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader("{}")))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	server := New(&config.Config{}, env.lectures, nil, nil, nil, nil, nil, env.files)
	called := false
	server.SetWebhookHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader("{}")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
