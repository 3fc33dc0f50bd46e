package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError maps a core error to a status code. fallback is the message
// for failures the client cannot act on.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, message := statusFor(err, fallback)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeMessage(w, status, message)
}

func statusFor(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, errors.ErrForbidden):
		return http.StatusForbidden, "Недостатньо прав"
	case errors.Is(err, errors.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "Файл завеликий"
	case errors.Is(err, errors.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "Підтримуються тільки PDF файли та зображення"
	case errors.Is(err, errors.ErrValidation):
		return http.StatusBadRequest, "Некоректні дані"
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound, "Не знайдено"
	default:
		return http.StatusInternalServerError, fallback
	}
}
