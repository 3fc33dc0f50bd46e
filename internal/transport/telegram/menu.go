package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	lectureDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	statsDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/stats/domain"
)

// Reply keyboard buttons
const (
	buttonLectures = "📚 Лекції"
	buttonStats    = "📊 Статистика"
	buttonHelp     = "❓ Допомога"
	buttonAdmin    = "👨‍💼 Адмін панель"
)

// Inline keyboard callback data
const (
	callbackDownload     = "download_"
	callbackDelete       = "delete_"
	callbackSubject      = "subject_"
	callbackViewLectures = "view_lectures"
	callbackMainMenu     = "main_menu"
	callbackHelp         = "help"
	callbackAdminStats   = "admin_stats"
	callbackViewStats    = "view_stats"
)

const (
	textGenericError = "Виникла помилка. Спробуйте ще раз."
	textNotAdmin     = "❌ У вас немає прав адміністратора."
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleMainMenu(ctx, b, update)
}

func (h *Handler) handleMainMenu(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.reply(ctx, b, update)
	if !ok {
		return
	}

	isAdmin := actorFrom(ctx).IsAdmin()
	text := "👋 Вітаємо в PhotogrammetryBot!\n\n📚 Тут ви можете знайти матеріали з фотограмметрії\n\n"
	if isAdmin {
		text += "👨‍💼 Ви адміністратор - можете завантажувати файли\n\n"
	}
	text += "Оберіть дію:"

	h.send(ctx, b, chatID, text, mainKeyboard(isAdmin))
}

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.reply(ctx, b, update)
	if !ok {
		return
	}

	rows := [][]models.InlineKeyboardButton{
		{{Text: "📚 Переглянути лекції", CallbackData: callbackViewLectures}},
	}
	if actorFrom(ctx).IsAdmin() {
		rows = append(rows, []models.InlineKeyboardButton{{Text: "📊 Статистика", CallbackData: callbackAdminStats}})
		if url := h.webPanelURL(); url != "" {
			rows = append(rows, []models.InlineKeyboardButton{{Text: "🌐 Веб-панель", URL: url}})
		}
	} else {
		rows = append(rows, []models.InlineKeyboardButton{{Text: "📊 Статистика", CallbackData: callbackViewStats}})
	}

	h.send(ctx, b, chatID, helpText(h.webPanelURL(), lectureDomain.FormatFileSize(h.lectureService.MaxUploadSize())),
		&models.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (h *Handler) handleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.reply(ctx, b, update)
	if !ok {
		return
	}

	stats, err := h.statsService.ComputeStats(ctx)
	if err != nil {
		slog.Error("Failed to compute stats", "error", err)
		h.send(ctx, b, chatID, "Виникла помилка при отриманні статистики.", nil)
		return
	}

	h.send(ctx, b, chatID, statsText("📊 Статистика PhotogrammetryBot:", stats), viewLecturesKeyboard())
}

func (h *Handler) handleAdminPanel(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.reply(ctx, b, update)
	if !ok {
		return
	}
	if !actorFrom(ctx).IsAdmin() {
		h.send(ctx, b, chatID, textNotAdmin, nil)
		return
	}

	rows := [][]models.InlineKeyboardButton{}
	text := "👨‍💼 Адмін панель\n\n"
	if url := h.webPanelURL(); url != "" {
		text += "🌐 Веб-панель: " + url + "\n\n"
		rows = append(rows, []models.InlineKeyboardButton{{Text: "🌐 Відкрити веб-панель", URL: url}})
	} else {
		text += "🌐 Веб-панель ще не налаштована\n\n"
	}
	text += "Використовуйте /admin для детальної статистики та /cleanup для очищення пошкоджених записів"
	rows = append(rows, []models.InlineKeyboardButton{{Text: "📊 Детальна статистика", CallbackData: callbackAdminStats}})

	h.send(ctx, b, chatID, text, &models.InlineKeyboardMarkup{InlineKeyboard: rows})
}

// webPanelURL returns the configured panel URL when it is served over https
func (h *Handler) webPanelURL() string {
	if strings.HasPrefix(h.cfg.WebPanelURL, "https://") {
		return h.cfg.WebPanelURL
	}
	return ""
}

func mainKeyboard(isAdmin bool) *models.ReplyKeyboardMarkup {
	rows := [][]models.KeyboardButton{
		{{Text: buttonLectures}, {Text: buttonStats}},
		{{Text: buttonHelp}},
	}
	if isAdmin {
		rows = append(rows, []models.KeyboardButton{{Text: buttonAdmin}})
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:       rows,
		ResizeKeyboard: true,
		IsPersistent:   true,
	}
}

func viewLecturesKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "📚 Переглянути лекції", CallbackData: callbackViewLectures}},
		},
	}
}

func helpText(webPanelURL, maxSize string) string {
	var sb strings.Builder
	sb.WriteString("❓ Довідка PhotogrammetryBot\n\n")
	sb.WriteString("📚 Доступні команди:\n")
	sb.WriteString("• /start - Почати роботу з ботом\n")
	sb.WriteString("• /lectures - Переглянути всі лекції\n")
	sb.WriteString("• /help - Ця довідка\n")
	sb.WriteString("• /admin - Статистика (тільки для адмінів)\n\n")
	sb.WriteString("🔧 Як користуватись:\n")
	sb.WriteString("• Студенти можуть переглядати та завантажувати матеріали\n")
	sb.WriteString("• Адміни можуть завантажувати файли через бот або веб-панель\n")
	fmt.Fprintf(&sb, "• Підтримуються PDF та зображення (до %s)\n\n", maxSize)
	if webPanelURL != "" {
		sb.WriteString("🌐 Веб-панель: " + webPanelURL)
	} else {
		sb.WriteString("🌐 Веб-панель ще не налаштована")
	}
	return sb.String()
}

func statsText(header string, stats *statsDomain.Stats) string {
	return fmt.Sprintf("%s\n\n📚 Всього лекцій: %d\n👥 Студентів: %d\n⬇️ Завантажень: %d\n💾 Використано пам'яті: %s",
		header,
		stats.TotalLectures,
		stats.ActiveStudents,
		stats.TotalDownloads,
		lectureDomain.FormatFileSize(stats.StorageUsed))
}
