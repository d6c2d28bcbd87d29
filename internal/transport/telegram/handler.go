package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	notifyDomain "github.com/reshetovitsme/lead-notifier/internal/modules/notify/domain"
	notifyRepo "github.com/reshetovitsme/lead-notifier/internal/modules/notify/repository"
	userDomain "github.com/reshetovitsme/lead-notifier/internal/modules/user/domain"
	userService "github.com/reshetovitsme/lead-notifier/internal/modules/user/service"
	"github.com/reshetovitsme/lead-notifier/internal/shared/config"
	"github.com/samber/lo"
)

const (
	recentLimit = 10
	statusLimit = 100
)

const helpText = `👋 Lead notifier bot

New bookings and contact messages from the website are posted to the leads chat.

Available commands:
/help - Show this help message
/status - Delivery statistics
/recent - Last deliveries and their outcome`

// Handler answers operator commands
type Handler struct {
	cfg         *config.Config
	userService *userService.Service
	journal     notifyRepo.Repository
	logger      *slog.Logger
}

// New creates a new Telegram handler
func New(cfg *config.Config, userService *userService.Service, journal notifyRepo.Repository) *Handler {
	return &Handler{
		cfg:         cfg,
		userService: userService,
		journal:     journal,
		logger:      slog.Default(),
	}
}

// SetLogger sets the logger
func (h *Handler) SetLogger(logger *slog.Logger) {
	h.logger = logger
}

// RegisterCommands registers bot commands
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.handleHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact, h.handleStatus)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/recent", bot.MatchTypeExact, h.handleRecent)
}

// HandleUpdate is the fallback for anything that is not a command
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	h.logger.Debug("Ignoring update", "user_id", update.Message.From.ID, "chat_id", update.Message.Chat.ID)
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to reply", "chat_id", update.Message.Chat.ID, "error", err)
	}
}

// authorize answers unauthorized users and reports whether to continue.
func (h *Handler) authorize(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	if update.Message == nil || update.Message.From == nil {
		return false
	}
	if h.userService.IsAuthorized(update.Message.From.ID) {
		return true
	}
	h.logger.Warn("Unauthorized bot command", "user_id", update.Message.From.ID, "text", update.Message.Text)
	h.reply(ctx, b, update, "❌ You are not authorized to use this bot.")
	return false
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update) {
		return
	}

	from := update.Message.From
	user, err := h.userService.Register(&userDomain.User{
		ID:        from.ID,
		Username:  from.Username,
		FirstName: from.FirstName,
		ChatID:    update.Message.Chat.ID,
	})
	if err != nil {
		h.logger.Error("Failed to register operator", "user_id", from.ID, "error", err)
	} else {
		h.logger.Info("Operator registered", "user", user.DisplayName(), "user_id", user.ID)
	}

	h.reply(ctx, b, update, helpText)
}

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update) {
		return
	}
	h.reply(ctx, b, update, helpText)
}

func (h *Handler) handleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update) {
		return
	}

	deliveries, err := h.journal.Recent(statusLimit)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to get status: %v", err))
		return
	}
	operators, err := h.userService.GetAllUsers()
	if err != nil {
		h.logger.Warn("Failed to list operators", "error", err)
	}

	h.reply(ctx, b, update, FormatStatus(h.cfg, deliveries, len(operators)))
}

func (h *Handler) handleRecent(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorize(ctx, b, update) {
		return
	}

	deliveries, err := h.journal.Recent(recentLimit)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("❌ Failed to list deliveries: %v", err))
		return
	}

	h.reply(ctx, b, update, FormatRecent(deliveries))
}

// FormatStatus summarises the configuration and the recent delivery outcomes.
func FormatStatus(cfg *config.Config, deliveries []*notifyDomain.Delivery, operators int) string {
	counts := lo.CountValuesBy(deliveries, func(d *notifyDomain.Delivery) notifyDomain.Reason {
		return d.Reason
	})

	var text strings.Builder
	text.WriteString("📊 Notifier Status:\n\n")
	fmt.Fprintf(&text, "Chat configured: %s\n", yesNo(cfg.TelegramConfigured()))
	fmt.Fprintf(&text, "Time zone: %s\n", cfg.TimeZone)
	fmt.Fprintf(&text, "Request timeout: %s\n", cfg.RequestTimeout)
	fmt.Fprintf(&text, "Operators: %d\n", operators)
	fmt.Fprintf(&text, "\nLast %d deliveries:\n", len(deliveries))

	for _, reason := range notifyDomain.ReasonNames() {
		if n := counts[notifyDomain.Reason(reason)]; n > 0 {
			fmt.Fprintf(&text, "  %s: %d\n", reason, n)
		}
	}

	if last, ok := lo.Find(deliveries, func(d *notifyDomain.Delivery) bool {
		return d.Reason != notifyDomain.ReasonDelivered
	}); ok {
		fmt.Fprintf(&text, "\nLast failure: %s %s (%s)\n", last.Op, last.At.Format(time.RFC3339), last.Reason)
	}

	return strings.TrimRight(text.String(), "\n")
}

// FormatRecent lists deliveries newest first, one per line.
func FormatRecent(deliveries []*notifyDomain.Delivery) string {
	if len(deliveries) == 0 {
		return "📭 No deliveries yet."
	}

	var text strings.Builder
	text.WriteString("🕑 Recent deliveries:\n")
	for _, d := range deliveries {
		status := "✅"
		if d.Reason != notifyDomain.ReasonDelivered {
			status = "⚠️"
		}
		fmt.Fprintf(&text, "\n%s %s %s", status, d.At.Format("2006-01-02 15:04"), d.Op)
		if d.Subject != "" {
			fmt.Fprintf(&text, " · %s", d.Subject)
		}
		if d.Reason != notifyDomain.ReasonDelivered {
			fmt.Fprintf(&text, " (%s", d.Reason)
			if d.Description != "" {
				fmt.Fprintf(&text, ": %s", d.Description)
			}
			text.WriteString(")")
		}
		if len(d.Dropped) > 0 {
			fmt.Fprintf(&text, " [dropped %d]", len(d.Dropped))
		}
	}
	return text.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
