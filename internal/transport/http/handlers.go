package http

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	backupService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/backup/service"
	downloadDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/domain"
	lectureDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	lectureService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/service"
	userDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
)

// multipartOverhead leaves room for form fields around the file part
const multipartOverhead = 1 << 20

type uploadForm struct {
	Title       string `validate:"required,max=255"`
	Description string `validate:"max=4096"`
	Subject     string `validate:"required,max=128"`
	UploadedBy  string `validate:"required"`
}

type broadcastRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleListLectures(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	// unparsable values fall back to the repository defaults
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	lectures, err := s.lectureService.List(r.Context(), lectureDomain.ListFilter{
		Limit:   limit,
		Offset:  offset,
		Subject: query.Get("subject"),
	})
	if err != nil {
		s.writeError(w, r, err, "Помилка при отриманні лекцій")
		return
	}
	if lectures == nil {
		lectures = []*lectureDomain.Lecture{}
	}

	writeJSON(w, http.StatusOK, lectures)
}

func (s *Server) handleGetLecture(w http.ResponseWriter, r *http.Request) {
	lecture, err := s.lectureService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Лекцію не знайдено")
			return
		}
		s.writeError(w, r, err, "Помилка при отриманні лекції")
		return
	}

	writeJSON(w, http.StatusOK, lecture)
}

func (s *Server) handleCreateLecture(w http.ResponseWriter, r *http.Request) {
	maxSize := s.lectureService.MaxUploadSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "Файл завеликий")
			return
		}
		writeMessage(w, http.StatusBadRequest, "Некоректна форма")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Файл обов'язковий")
		return
	}
	defer file.Close()

	form := uploadForm{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Subject:     r.FormValue("subject"),
		UploadedBy:  r.FormValue("uploadedBy"),
	}
	if err := s.validate.StructCtx(r.Context(), form); err != nil {
		writeMessage(w, http.StatusBadRequest, "Назва, предмет та ID користувача обов'язкові")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if err := lectureService.CheckUpload(contentType, header.Filename, header.Size, maxSize); err != nil {
		s.writeError(w, r, err, "Помилка при завантаженні лекції")
		return
	}

	uploader, err := s.userService.Get(r.Context(), form.UploadedBy)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Користувача не знайдено")
			return
		}
		s.writeError(w, r, err, "Помилка при завантаженні лекції")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		s.writeError(w, r, err, "Помилка при завантаженні лекції")
		return
	}

	lecture, err := s.lectureService.Create(r.Context(), userDomain.ActorFor(uploader), lectureDomain.CreateInput{
		Title:        form.Title,
		Description:  form.Description,
		Subject:      form.Subject,
		Data:         data,
		OriginalName: header.Filename,
		ContentType:  contentType,
		UploaderID:   uploader.ID,
	})
	if err != nil {
		s.writeError(w, r, err, "Помилка при завантаженні лекції")
		return
	}

	writeJSON(w, http.StatusCreated, lecture)
}

func (s *Server) handleDeleteLecture(w http.ResponseWriter, r *http.Request) {
	if err := s.lectureService.Delete(r.Context(), userDomain.SystemActor, r.PathValue("id")); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Лекцію не знайдено")
			return
		}
		s.writeError(w, r, err, "Помилка при видаленні лекції")
		return
	}

	writeMessage(w, http.StatusOK, "Лекцію видалено")
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := s.lectureService.Reconcile(r.Context(), userDomain.SystemActor)
	if err != nil {
		s.writeError(w, r, err, "Помилка при очищенні")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Очищення завершено",
		"removed": removed,
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userService.GetAllUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err, "Помилка при отриманні користувачів")
		return
	}
	if users == nil {
		users = []*userDomain.User{}
	}

	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleUserDownloads(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Користувача не знайдено")
			return
		}
		s.writeError(w, r, err, "Помилка при отриманні завантажень")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	downloads, err := s.downloadService.ListByUser(r.Context(), user.ID, limit)
	if err != nil {
		s.writeError(w, r, err, "Помилка при отриманні завантажень")
		return
	}
	if downloads == nil {
		downloads = []*downloadDomain.Download{}
	}

	writeJSON(w, http.StatusOK, downloads)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsService.ComputeStats(r.Context())
	if err != nil {
		s.writeError(w, r, err, "Помилка при отриманні статистики")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	backup, err := s.backupService.Export(r.Context(), now)
	if err != nil {
		s.writeError(w, r, err, "Помилка при створенні резервної копії")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backupService.FileName(now)))
	writeJSON(w, http.StatusOK, backup)
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, multipartOverhead)).Decode(&req); err != nil || req.Message == "" {
		writeMessage(w, http.StatusBadRequest, "Повідомлення обов'язкове")
		return
	}

	// delivery to users is not implemented; the panel only gets an acknowledgement
	s.logger.Info("Broadcast requested", "length", len(req.Message))
	writeMessage(w, http.StatusOK, "Оголошення надіслано")
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	path, err := s.files.Resolve(r.PathValue("filename"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Файл не знайдено")
		return
	}

	exists, err := s.files.Exists(path)
	if err != nil {
		s.writeError(w, r, err, "Помилка при читанні файлу")
		return
	}
	if !exists {
		writeMessage(w, http.StatusNotFound, "Файл не знайдено")
		return
	}

	http.ServeFile(w, r, path)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed, err := s.feedService.GenerateFeed(r.Context(), baseURL)
	if err != nil {
		s.logger.Error("Error generating feed", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}
