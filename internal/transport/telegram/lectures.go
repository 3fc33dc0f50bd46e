package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	lectureDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/samber/lo"
)

// listSize is the number of newest lectures offered in one list
const listSize = 50

func (h *Handler) handleLectures(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.reply(ctx, b, update)
	if !ok {
		return
	}
	h.showLectures(ctx, b, chatID)
}

func (h *Handler) showLectures(ctx context.Context, b *bot.Bot, chatID int64) {
	lectures, err := h.lectureService.List(ctx, lectureDomain.ListFilter{Limit: listSize})
	if err != nil {
		slog.Error("Failed to list lectures", "error", err)
		h.send(ctx, b, chatID, "Виникла помилка при завантаженні лекцій.", nil)
		return
	}

	if len(lectures) == 0 {
		h.send(ctx, b, chatID, "📚 Лекції поки що відсутні.\n\nАдміністратори можуть додати їх через веб-панель або надіславши файли боту.", nil)
		return
	}

	h.send(ctx, b, chatID,
		fmt.Sprintf("📚 Доступні лекції з фотограмметрії:\n\nВсього: %d", len(lectures)),
		lecturesKeyboard(lectures, false))
}

func (h *Handler) handleSubjectCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.reply(ctx, b, update)
	if !ok {
		return
	}

	subject := strings.TrimPrefix(callbackData(update), callbackSubject)
	lectures, err := h.lectureService.List(ctx, lectureDomain.ListFilter{Limit: listSize, Subject: subject})
	if err != nil {
		slog.Error("Failed to list lectures by subject", "subject", subject, "error", err)
		h.send(ctx, b, chatID, "Виникла помилка при завантаженні лекцій.", nil)
		return
	}

	if len(lectures) == 0 {
		h.send(ctx, b, chatID, "📭 Лекції з цього предмету відсутні.", nil)
		return
	}

	h.send(ctx, b, chatID, fmt.Sprintf("📚 Лекції з предмету \"%s\":", subject), lecturesKeyboard(lectures, true))
}

func (h *Handler) handleDownloadCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.reply(ctx, b, update)
	if !ok {
		return
	}

	user := userFrom(ctx)
	isAdmin := actorFrom(ctx).IsAdmin()
	lectureID := strings.TrimPrefix(callbackData(update), callbackDownload)

	lecture, file, err := h.lectureService.Open(ctx, lectureID)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		h.send(ctx, b, chatID, "❌ Лекцію не знайдено", nil)
		return
	case errors.Is(err, errors.ErrStorageRead):
		slog.Warn("Lecture file missing", "lecture_id", lectureID, "error", err)
		rows := [][]models.InlineKeyboardButton{
			{{Text: "📚 Повернутись до списку", CallbackData: callbackViewLectures}},
		}
		if isAdmin {
			rows = append(rows, []models.InlineKeyboardButton{{Text: "🗑️ Видалити лекцію", CallbackData: callbackDelete + lectureID}})
		}
		name := lectureID
		if lecture != nil {
			name = lecture.DisplayName()
		}
		h.send(ctx, b, chatID,
			fmt.Sprintf("❌ Файл \"%s\" не знайдено на сервері.\n\nМожливо файл було видалено або пошкоджено.", name),
			&models.InlineKeyboardMarkup{InlineKeyboard: rows})
		return
	case err != nil:
		slog.Error("Failed to open lecture", "lecture_id", lectureID, "error", err)
		h.send(ctx, b, chatID, textGenericError, nil)
		return
	}
	defer file.Close()

	if _, err := h.downloadService.RecordAndIncrement(ctx, user.ID, lecture.ID); err != nil {
		slog.Error("Failed to record download", "lecture_id", lecture.ID, "user_id", user.ID, "error", err)
		if errors.Is(err, errors.ErrInconsistentState) {
			h.send(ctx, b, chatID, "❌ Лекцію не знайдено", nil)
			return
		}
		h.send(ctx, b, chatID, textGenericError, nil)
		return
	}

	rows := [][]models.InlineKeyboardButton{
		{{Text: "📚 Всі лекції", CallbackData: callbackViewLectures}},
	}
	if isAdmin {
		rows = append(rows, []models.InlineKeyboardButton{{Text: "🗑️ Видалити лекцію", CallbackData: callbackDelete + lecture.ID}})
	}

	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:      chatID,
		Document:    &models.InputFileUpload{Filename: lecture.DisplayName(), Data: file},
		Caption:     lectureCaption(lecture),
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: rows},
	})
	if err != nil {
		slog.Error("Failed to send lecture file", "lecture_id", lecture.ID, "error", err)
		h.send(ctx, b, chatID, "❌ Виникла помилка при відправці файлу. Спробуйте ще раз.", nil)
		return
	}

	slog.Info("Lecture sent", "lecture_id", lecture.ID, "user_id", user.ID, "file_name", lecture.FileName, "original_name", lecture.OriginalName)
}

func (h *Handler) handleDeleteCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.reply(ctx, b, update)
	if !ok {
		return
	}

	lectureID := strings.TrimPrefix(callbackData(update), callbackDelete)
	err := h.lectureService.Delete(ctx, actorFrom(ctx), lectureID)
	switch {
	case errors.Is(err, errors.ErrForbidden):
		h.send(ctx, b, chatID, textNotAdmin, nil)
		return
	case errors.Is(err, errors.ErrNotFound):
		h.send(ctx, b, chatID, "❌ Лекцію не знайдено", nil)
		return
	case err != nil:
		slog.Error("Failed to delete lecture", "lecture_id", lectureID, "error", err)
		h.send(ctx, b, chatID, "❌ Виникла помилка при видаленні лекції.", nil)
		return
	}

	h.send(ctx, b, chatID, "✅ Лекцію успішно видалено.", nil)
	h.showLectures(ctx, b, chatID)
}

func lecturesKeyboard(lectures []*lectureDomain.Lecture, withBack bool) *models.InlineKeyboardMarkup {
	rows := lo.Map(lectures, func(l *lectureDomain.Lecture, _ int) []models.InlineKeyboardButton {
		return []models.InlineKeyboardButton{{Text: "📄 " + l.Title, CallbackData: callbackDownload + l.ID}}
	})
	if withBack {
		rows = append(rows, []models.InlineKeyboardButton{{Text: "◀️ Назад", CallbackData: callbackMainMenu}})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func lectureCaption(l *lectureDomain.Lecture) string {
	caption := "📄 " + l.Title + "\n"
	if l.Description != "" && l.Description != l.Title {
		caption += l.Description + "\n"
	}
	return caption + fmt.Sprintf("\n📖 Предмет: %s\n💾 Розмір: %s", l.Subject, lectureDomain.FormatFileSize(l.FileSize))
}
