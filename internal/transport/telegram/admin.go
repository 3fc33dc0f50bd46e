package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
)

const textMakeAdminUsage = "Використання: /makeadmin <telegram_id>"

func (h *Handler) handleAdmin(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.reply(ctx, b, update)
	if !ok {
		return
	}
	if !actorFrom(ctx).IsAdmin() {
		h.send(ctx, b, chatID, textNotAdmin, nil)
		return
	}

	stats, err := h.statsService.ComputeStats(ctx)
	if err != nil {
		slog.Error("Failed to compute stats", "error", err)
		h.send(ctx, b, chatID, "Виникла помилка при отриманні статистики.", nil)
		return
	}

	var markup models.ReplyMarkup
	if url := h.webPanelURL(); url != "" {
		markup = &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "🌐 Відкрити веб-панель", URL: url}},
		}}
	}
	h.send(ctx, b, chatID, statsText("📊 Детальна статистика бота:", stats), markup)
}

func (h *Handler) handleMakeAdmin(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.reply(ctx, b, update)
	if !ok || update.Message == nil {
		return
	}
	if !actorFrom(ctx).IsAdmin() {
		h.send(ctx, b, chatID, textNotAdmin, nil)
		return
	}

	telegramID, ok := parseMakeAdmin(update.Message.Text)
	if !ok {
		h.send(ctx, b, chatID, textMakeAdminUsage, nil)
		return
	}

	user, err := h.userService.SetAdmin(ctx, actorFrom(ctx), telegramID, true)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		h.send(ctx, b, chatID, "❌ Користувача не знайдено. Попросіть його спочатку надіслати /start.", nil)
		return
	case errors.Is(err, errors.ErrForbidden):
		h.send(ctx, b, chatID, textNotAdmin, nil)
		return
	case err != nil:
		slog.Error("Failed to grant admin", "telegram_id", telegramID, "error", err)
		h.send(ctx, b, chatID, textGenericError, nil)
		return
	}

	h.send(ctx, b, chatID, fmt.Sprintf("✅ Користувач %d тепер адміністратор.", user.TelegramID), nil)
}

func (h *Handler) handleCleanup(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.reply(ctx, b, update)
	if !ok {
		return
	}
	actor := actorFrom(ctx)
	if !actor.IsAdmin() {
		h.send(ctx, b, chatID, textNotAdmin, nil)
		return
	}

	h.send(ctx, b, chatID, "🧹 Перевіряю лекції на наявність файлів...", nil)

	removed, err := h.lectureService.Reconcile(ctx, actor)
	if err != nil {
		slog.Error("Cleanup failed", "removed", removed, "error", err)
		h.send(ctx, b, chatID, "❌ Виникла помилка при очищенні.", nil)
		return
	}

	stats, err := h.statsService.ComputeStats(ctx)
	if err != nil {
		slog.Error("Failed to compute stats", "error", err)
		h.send(ctx, b, chatID, fmt.Sprintf("✅ Очищення завершено!\n\n🗑️ Видалено пошкоджених записів: %d", removed), nil)
		return
	}

	h.send(ctx, b, chatID,
		fmt.Sprintf("✅ Очищення завершено!\n\n🗑️ Видалено пошкоджених записів: %d\n📚 Залишилось лекцій: %d",
			removed, stats.TotalLectures),
		viewLecturesKeyboard())
}

// parseMakeAdmin extracts the Telegram ID from "/makeadmin <id>"
func parseMakeAdmin(text string) (int64, bool) {
	fields := strings.Fields(text)
	if len(fields) != 2 || fields[0] != "/makeadmin" {
		return 0, false
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
