package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	fileRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/file/repository"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	lectureRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/repository"
	userDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/metrics"
	"github.com/samber/oops"
)

const reconcilePageSize = 100

// Service owns the lecture lifecycle: a lecture row exists only while its
// file does.
type Service struct {
	lectures      lectureRepo.Repository
	files         fileRepo.Repository
	validate      *validator.Validate
	maxUploadSize int64
	now           func() time.Time
}

// New creates a new lecture service
func New(lectures lectureRepo.Repository, files fileRepo.Repository, maxUploadSize int64) *Service {
	return &Service{
		lectures:      lectures,
		files:         files,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		maxUploadSize: maxUploadSize,
		now:           time.Now,
	}
}

// MaxUploadSize reports the configured upload limit in bytes.
func (s *Service) MaxUploadSize() int64 {
	return s.maxUploadSize
}

// Create stores the uploaded bytes and records the lecture. When the record
// cannot be written the stored file is removed again.
func (s *Service) Create(ctx context.Context, actor userDomain.Actor, in domain.CreateInput) (*domain.Lecture, error) {
	if !actor.IsAdmin() {
		return nil, oops.With("user_id", actor.UserID).Wrap(errors.ErrForbidden)
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Subject = strings.TrimSpace(in.Subject)
	in.UploaderID = strings.TrimSpace(in.UploaderID)

	if err := s.validate.StructCtx(ctx, in); err != nil {
		return nil, oops.With("title", in.Title, "subject", in.Subject).Wrap(errors.Mark(errors.ErrValidation, err))
	}
	if len(in.Data) == 0 {
		return nil, oops.With("file_name", in.OriginalName).Wrap(errors.Mark(errors.ErrValidation, oops.Errorf("file is empty")))
	}

	size := int64(len(in.Data))
	if size > s.maxUploadSize {
		metrics.UploadsRejected.WithLabelValues("too_large").Inc()
		return nil, oops.With("file_name", in.OriginalName, "size", size, "max_size", s.maxUploadSize).
			Wrap(errors.Mark(errors.ErrValidation, errors.ErrFileTooLarge))
	}

	contentType := resolveContentType(in.ContentType, in.OriginalName, in.Data)
	if contentType == "" {
		metrics.UploadsRejected.WithLabelValues("unsupported_type").Inc()
		return nil, oops.With("file_name", in.OriginalName, "content_type", in.ContentType).
			Wrap(errors.Mark(errors.ErrValidation, errors.ErrUnsupportedType))
	}

	now := s.now()
	original := in.OriginalName
	if original == "" {
		original = "lecture" + extensionFor(contentType)
	}

	path, err := s.files.Save(fileRepo.UniqueName(original, now), in.Data)
	if err != nil {
		return nil, err
	}

	lecture := &domain.Lecture{
		Title:        in.Title,
		Description:  in.Description,
		Subject:      in.Subject,
		FileName:     filepath.Base(path),
		OriginalName: original,
		FilePath:     path,
		FileType:     FileTypeFor(contentType),
		FileSize:     size,
		UploadedBy:   in.UploaderID,
		CreatedAt:    now,
	}

	if err := s.lectures.CreateLecture(ctx, lecture); err != nil {
		if rmErr := s.files.Remove(path); rmErr != nil {
			slog.Error("Failed to remove file after failed insert", "path", path, "error", rmErr)
		}
		return nil, err
	}

	metrics.LecturesCreated.WithLabelValues(lecture.FileType.String()).Inc()
	slog.Info("Lecture created",
		"lecture_id", lecture.ID,
		"title", lecture.Title,
		"file_type", lecture.FileType,
		"size", lecture.FileSize,
		"uploaded_by", lecture.UploadedBy)

	return lecture, nil
}

// Get retrieves a lecture by ID
func (s *Service) Get(ctx context.Context, id string) (*domain.Lecture, error) {
	return s.lectures.GetLecture(ctx, id)
}

// List returns a page of lectures, newest first
func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Lecture, error) {
	return s.lectures.GetLectures(ctx, filter)
}

// Delete removes the lecture row, its downloads and then its file. A file
// that cannot be removed is logged and left behind.
func (s *Service) Delete(ctx context.Context, actor userDomain.Actor, id string) error {
	if !actor.IsAdmin() {
		return oops.With("user_id", actor.UserID, "lecture_id", id).Wrap(errors.ErrForbidden)
	}

	lecture, err := s.lectures.GetLecture(ctx, id)
	if err != nil {
		return err
	}

	if err := s.lectures.DeleteLecture(ctx, id); err != nil {
		return err
	}

	s.removeFile(lecture)
	metrics.LecturesDeleted.Inc()
	slog.Info("Lecture deleted", "lecture_id", id, "title", lecture.Title)
	return nil
}

// Reconcile deletes every lecture whose file has gone missing and returns
// how many were removed. It stops early when ctx is cancelled.
func (s *Service) Reconcile(ctx context.Context, actor userDomain.Actor) (int, error) {
	if !actor.IsAdmin() {
		return 0, oops.With("user_id", actor.UserID).Wrap(errors.ErrForbidden)
	}

	removed, checked := 0, 0
	offset := 0
	for {
		page, err := s.lectures.GetLectures(ctx, domain.ListFilter{Limit: reconcilePageSize, Offset: offset})
		if err != nil {
			return removed, err
		}

		removedInPage := 0
		for _, lecture := range page {
			if err := ctx.Err(); err != nil {
				return removed, oops.With("removed", removed).Wrap(err)
			}
			checked++

			exists, err := s.files.Exists(lecture.FilePath)
			if err != nil {
				slog.Warn("Failed to check lecture file", "lecture_id", lecture.ID, "path", lecture.FilePath, "error", err)
				continue
			}
			if exists {
				continue
			}

			if err := s.lectures.DeleteLecture(ctx, lecture.ID); err != nil {
				if errors.Is(err, errors.ErrNotFound) {
					removedInPage++
					continue
				}
				return removed, err
			}
			metrics.OrphansRemoved.Inc()
			slog.Info("Removed orphaned lecture", "lecture_id", lecture.ID, "path", lecture.FilePath)
			removed++
			removedInPage++
		}

		if len(page) < reconcilePageSize {
			break
		}
		offset += len(page) - removedInPage
	}

	slog.Info("Lecture reconciliation finished", "checked", checked, "removed", removed)
	return removed, nil
}

// Open returns the lecture together with a reader over its file. The caller
// closes the reader. When only the file is missing the lecture is still
// returned alongside an ErrStorageRead error.
func (s *Service) Open(ctx context.Context, id string) (*domain.Lecture, io.ReadCloser, error) {
	lecture, err := s.lectures.GetLecture(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.files.Open(lecture.FilePath)
	if err != nil {
		return lecture, nil, oops.With("lecture_id", id).Wrap(err)
	}
	return lecture, rc, nil
}

func (s *Service) removeFile(lecture *domain.Lecture) {
	if err := s.files.Remove(lecture.FilePath); err != nil {
		slog.Warn("Failed to remove lecture file", "lecture_id", lecture.ID, "path", lecture.FilePath, "error", err)
	}
}

func extensionFor(contentType string) string {
	for ext, ct := range extensionContentTypes {
		if ct == contentType && ext != ".jpeg" {
			return ext
		}
	}
	return ""
}
