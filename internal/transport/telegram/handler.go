package telegram

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	downloadService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/download/service"
	lectureService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/service"
	statsService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/stats/service"
	userDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	userService "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/service"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/config"
)

// Handler handles Telegram bot interactions
type Handler struct {
	cfg             *config.Config
	lectureService  *lectureService.Service
	downloadService *downloadService.Service
	userService     *userService.Service
	statsService    *statsService.Service
	dedup           *updateDedup
	httpClient      *http.Client
}

// New creates a new Telegram handler
func New(
	cfg *config.Config,
	lectureService *lectureService.Service,
	downloadService *downloadService.Service,
	userService *userService.Service,
	statsService *statsService.Service,
) *Handler {
	return &Handler{
		cfg:             cfg,
		lectureService:  lectureService,
		downloadService: downloadService,
		userService:     userService,
		statsService:    statsService,
		dedup:           newUpdateDedup(cfg.DedupCapacity),
		httpClient:      &http.Client{Timeout: 2 * time.Minute},
	}
}

// Options returns the bot options that route updates through this handler
func (h *Handler) Options() []bot.Option {
	return []bot.Option{
		bot.WithDefaultHandler(h.HandleUpdate),
		bot.WithMiddlewares(h.Middleware),
	}
}

// RegisterCommands registers bot commands, keyboard buttons and callbacks
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.handleHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/lectures", bot.MatchTypeExact, h.handleLectures)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/admin", bot.MatchTypeExact, h.handleAdmin)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/makeadmin", bot.MatchTypePrefix, h.handleMakeAdmin)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/cleanup", bot.MatchTypeExact, h.handleCleanup)

	b.RegisterHandler(bot.HandlerTypeMessageText, buttonLectures, bot.MatchTypeExact, h.handleLectures)
	b.RegisterHandler(bot.HandlerTypeMessageText, buttonStats, bot.MatchTypeExact, h.handleStats)
	b.RegisterHandler(bot.HandlerTypeMessageText, buttonHelp, bot.MatchTypeExact, h.handleHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, buttonAdmin, bot.MatchTypeExact, h.handleAdminPanel)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackDownload, bot.MatchTypePrefix, h.handleDownloadCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackDelete, bot.MatchTypePrefix, h.handleDeleteCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackSubject, bot.MatchTypePrefix, h.handleSubjectCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackViewLectures, bot.MatchTypeExact, h.handleLectures)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackMainMenu, bot.MatchTypeExact, h.handleMainMenu)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackHelp, bot.MatchTypeExact, h.handleHelp)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackAdminStats, bot.MatchTypeExact, h.handleAdmin)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackViewStats, bot.MatchTypeExact, h.handleStats)
}

// Middleware drops redelivered updates and resolves the sender to a
// registered user once per update.
func (h *Handler) Middleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if h.dedup.Seen(update.ID) {
			slog.Debug("Skipping duplicate update", "update_id", update.ID)
			return
		}

		from := senderOf(update)
		if from == nil || from.IsBot {
			return
		}

		user, err := h.userService.Register(ctx, userDomain.Profile{
			TelegramID: from.ID,
			Username:   from.Username,
			FirstName:  from.FirstName,
			LastName:   from.LastName,
		})
		if err != nil {
			slog.Error("Failed to resolve user", "telegram_id", from.ID, "error", err)
			if chatID, ok := chatOf(update); ok {
				h.send(ctx, b, chatID, textGenericError, nil)
			}
			return
		}

		next(withUser(ctx, user), b, update)
	}
}

// HandleUpdate handles everything no registered handler matched: file
// uploads and free text.
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		h.answer(ctx, b, update.CallbackQuery, "")
		return
	}

	msg := update.Message
	if msg == nil {
		return
	}

	switch {
	case msg.Document != nil:
		h.handleDocument(ctx, b, msg)
	case len(msg.Photo) > 0:
		h.handlePhoto(ctx, b, msg)
	case msg.Text != "":
		h.handleText(ctx, b, msg)
	}
}

func (h *Handler) handleText(ctx context.Context, b *bot.Bot, msg *models.Message) {
	if actorFrom(ctx).IsAdmin() {
		h.send(ctx, b, msg.Chat.ID, "💡 Для завантаження файлу просто надішліть PDF або зображення з підписом - назвою лекції.", nil)
		return
	}
	h.send(ctx, b, msg.Chat.ID, "❌ Не розумію цю команду. Використайте /help для перегляду доступних команд.", nil)
}

func (h *Handler) send(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		slog.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

// answer acknowledges a callback query so the client stops its spinner
func (h *Handler) answer(ctx context.Context, b *bot.Bot, query *models.CallbackQuery, text string) {
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
		Text:            text,
	}); err != nil {
		slog.Warn("Failed to answer callback query", "callback_id", query.ID, "error", err)
	}
}

// reply acknowledges a callback if there is one and returns the chat to
// answer in.
func (h *Handler) reply(ctx context.Context, b *bot.Bot, update *models.Update) (int64, bool) {
	if update.CallbackQuery != nil {
		h.answer(ctx, b, update.CallbackQuery, "")
	}
	return chatOf(update)
}

func senderOf(update *models.Update) *models.User {
	switch {
	case update.Message != nil:
		return update.Message.From
	case update.CallbackQuery != nil:
		return &update.CallbackQuery.From
	}
	return nil
}

func chatOf(update *models.Update) (int64, bool) {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil:
		if msg := update.CallbackQuery.Message.Message; msg != nil {
			return msg.Chat.ID, true
		}
		// private chats share the user's ID
		return update.CallbackQuery.From.ID, true
	}
	return 0, false
}

func callbackData(update *models.Update) string {
	if update.CallbackQuery == nil {
		return ""
	}
	return update.CallbackQuery.Data
}
