package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	lectureDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	lectureService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/service"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/samber/oops"
)

const textUnsupportedType = "❌ Підтримуються тільки PDF файли та зображення (JPG, PNG)."

// upload describes a file attached to a message
type upload struct {
	fileID      string
	fileName    string
	contentType string
	size        int64
	caption     string
	title       string
}

func (h *Handler) handleDocument(ctx context.Context, b *bot.Bot, msg *models.Message) {
	doc := msg.Document
	h.handleUpload(ctx, b, msg.Chat.ID, upload{
		fileID:      doc.FileID,
		fileName:    doc.FileName,
		contentType: doc.MimeType,
		size:        doc.FileSize,
		caption:     msg.Caption,
		title:       documentTitle(msg.Caption, doc.FileName),
	})
}

func (h *Handler) handlePhoto(ctx context.Context, b *bot.Bot, msg *models.Message) {
	photo := largestPhoto(msg.Photo)
	now := time.Now()
	h.handleUpload(ctx, b, msg.Chat.ID, upload{
		fileID:      photo.FileID,
		fileName:    fmt.Sprintf("image_%d.jpg", now.UnixMilli()),
		contentType: "image/jpeg",
		size:        int64(photo.FileSize),
		caption:     msg.Caption,
		title:       photoTitle(msg.Caption, now),
	})
}

func (h *Handler) handleUpload(ctx context.Context, b *bot.Bot, chatID int64, up upload) {
	if !actorFrom(ctx).IsAdmin() {
		h.send(ctx, b, chatID, "❌ Тільки адміністратори можуть завантажувати файли.", nil)
		return
	}

	maxSize := h.lectureService.MaxUploadSize()
	if err := lectureService.CheckUpload(up.contentType, up.fileName, up.size, maxSize); err != nil {
		h.send(ctx, b, chatID, h.uploadErrorText(err), nil)
		return
	}

	h.send(ctx, b, chatID, "⏳ Завантажую файл...", nil)

	data, err := h.fetchFile(ctx, b, up.fileID, maxSize)
	if err != nil {
		slog.Error("Failed to fetch file from Telegram", "file_id", up.fileID, "error", err)
		h.send(ctx, b, chatID, h.uploadErrorText(err), nil)
		return
	}

	user := userFrom(ctx)
	lecture, err := h.lectureService.Create(ctx, actorFrom(ctx), lectureDomain.CreateInput{
		Title:        up.title,
		Description:  up.caption,
		Subject:      h.cfg.DefaultSubject,
		Data:         data,
		OriginalName: up.fileName,
		ContentType:  up.contentType,
		UploaderID:   user.ID,
	})
	if err != nil {
		slog.Error("Failed to create lecture from upload", "file_name", up.fileName, "error", err)
		h.send(ctx, b, chatID, h.uploadErrorText(err), nil)
		return
	}

	h.send(ctx, b, chatID,
		fmt.Sprintf("✅ Файл \"%s\" успішно завантажено!\n\n📖 Предмет: %s\n💾 Розмір: %s",
			lecture.Title, lecture.Subject, lectureDomain.FormatFileSize(lecture.FileSize)),
		&models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "📚 Переглянути всі лекції", CallbackData: callbackViewLectures}},
		}})
}

// fetchFile downloads a Telegram file, refusing anything larger than maxSize
func (h *Handler) fetchFile(ctx context.Context, b *bot.Bot, fileID string, maxSize int64) ([]byte, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, oops.With("file_id", fileID).Wrapf(err, "get file")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.FileDownloadLink(file), nil)
	if err != nil {
		return nil, oops.Wrapf(err, "build download request")
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, oops.Wrapf(err, "download file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, oops.With("status", resp.StatusCode).Errorf("unexpected download status")
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, oops.Wrapf(err, "read file body")
	}
	if int64(len(data)) > maxSize {
		return nil, errors.Mark(errors.ErrValidation, errors.ErrFileTooLarge)
	}
	return data, nil
}

func (h *Handler) uploadErrorText(err error) string {
	switch {
	case errors.Is(err, errors.ErrForbidden):
		return "❌ Тільки адміністратори можуть завантажувати файли."
	case errors.Is(err, errors.ErrFileTooLarge):
		return fmt.Sprintf("❌ Розмір файлу не повинен перевищувати %s",
			lectureDomain.FormatFileSize(h.lectureService.MaxUploadSize()))
	case errors.Is(err, errors.ErrUnsupportedType):
		return textUnsupportedType
	default:
		return "❌ Виникла помилка при завантаженні файлу. Спробуйте ще раз."
	}
}

func largestPhoto(photos []models.PhotoSize) models.PhotoSize {
	best := photos[0]
	for _, p := range photos[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best
}

func documentTitle(caption, fileName string) string {
	if title := strings.TrimSpace(caption); title != "" {
		return title
	}
	if title := strings.TrimSuffix(fileName, filepath.Ext(fileName)); title != "" {
		return title
	}
	return "Лекція"
}

func photoTitle(caption string, now time.Time) string {
	if title := strings.TrimSpace(caption); title != "" {
		return title
	}
	return "Зображення " + now.Format("02.01.2006")
}
