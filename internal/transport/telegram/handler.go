package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/channel-steward/internal/dispatch"
	channelDomain "github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
	channelService "github.com/reshetovitsme/channel-steward/internal/modules/channel/service"
	dialogueDomain "github.com/reshetovitsme/channel-steward/internal/modules/dialogue/domain"
	dialogueService "github.com/reshetovitsme/channel-steward/internal/modules/dialogue/service"
	statsService "github.com/reshetovitsme/channel-steward/internal/modules/stats/service"
	"github.com/reshetovitsme/channel-steward/internal/shared/config"
	sharederrors "github.com/reshetovitsme/channel-steward/internal/shared/errors"
)

// Handler handles Telegram bot interactions
type Handler struct {
	cfg        *config.Config
	registry   *channelService.Registry
	dialogue   *dialogueService.Manager
	dispatcher *dispatch.Service
	client     dispatch.Client
	stats      *statsService.Service
}

// New creates a new Telegram handler
func New(cfg *config.Config, registry *channelService.Registry, dialogue *dialogueService.Manager, dispatcher *dispatch.Service, client dispatch.Client, stats *statsService.Service) *Handler {
	return &Handler{
		cfg:        cfg,
		registry:   registry,
		dialogue:   dialogue,
		dispatcher: dispatcher,
		client:     client,
		stats:      stats,
	}
}

// RegisterCommands registers bot commands
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.handleHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact, h.handleStatus)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/channels", bot.MatchTypeExact, h.handleListChannels)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/add_channel", bot.MatchTypePrefix, h.handleAddChannel)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/remove_channel", bot.MatchTypePrefix, h.handleRemoveChannel)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/customize_poll", bot.MatchTypePrefix, h.handleCustomizePoll)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/test_welcome", bot.MatchTypePrefix, h.handleTestWelcome)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/confirm", bot.MatchTypeExact, h.handleConfirm)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, h.handleCancel)
}

// HandleUpdate processes incoming updates that no command matched
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.ChatMember != nil {
		h.processMembershipChange(update.ChatMember)
		return
	}

	// Plain text from an admin with a session in flight feeds the
	// poll configuration dialogue.
	if update.Message != nil && update.Message.From != nil && update.Message.Text != "" {
		userID := update.Message.From.ID
		if !strings.HasPrefix(update.Message.Text, "/") && h.dialogue.Active(userID) {
			reply, err := h.dialogue.Handle(userID, dialogueDomain.InputKindText, update.Message.Text)
			if err != nil {
				slog.Error("Dialogue input failed", "user_id", userID, "error", err)
				return
			}
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: update.Message.Chat.ID,
				Text:   reply,
			})
		}
	}
}

// processMembershipChange queues a welcome for users who just became
// members of a managed channel. The welcome goes to the member's
// private chat first and falls back to the channel itself.
func (h *Handler) processMembershipChange(cm *models.ChatMemberUpdated) {
	if isMember(cm.OldChatMember) || !isMember(cm.NewChatMember) {
		return
	}

	channelID := fmt.Sprintf("%d", cm.Chat.ID)
	channel, err := h.registry.Get(channelID)
	if err != nil {
		// Not one of ours
		return
	}
	if !channel.WelcomeEnabled {
		return
	}

	user := memberUser(cm.NewChatMember)
	if user == nil || user.IsBot {
		return
	}

	text, err := h.registry.WelcomeText(channelID, user.Username)
	if err != nil {
		slog.Error("Failed to render welcome", "channel_id", channelID, "error", err)
		return
	}

	err = h.dispatcher.Enqueue(dispatch.Request{
		Feature:        channelDomain.FeatureWelcome,
		ChannelID:      channelID,
		ChatID:         fmt.Sprintf("%d", user.ID),
		FallbackChatID: channelID,
		Text:           text,
	})
	if err != nil {
		slog.Error("Failed to enqueue welcome", "channel_id", channelID, "error", err)
		return
	}

	slog.Info("New member welcomed", "channel_id", channelID, "user_id", user.ID)
}

func (h *Handler) checkAuthorization(userID int64) bool {
	return h.cfg.IsAdmin(userID)
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	text := `👋 Welcome to Channel Steward!

I keep your channels alive: welcome messages for new members,
a daily rotating message, and a daily poll once the channel is
big enough.

Available commands:
/help - Show this help message
/status - Channel health, subscriber counts and delivery stats
/channels - List managed channels
/add_channel <channel_id> [title] - Start managing a channel
/remove_channel <channel_id> - Stop managing a channel
/customize_poll <channel_id> - Set up the daily poll step by step
/test_welcome <channel_id> [name] - Preview the welcome message
/cancel - Abort the current poll setup

Example:
/add_channel -1001234567890 My Channel`

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
}

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleStart(ctx, b, update)
}

func (h *Handler) handleAddChannel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.checkAuthorization(update.Message.From.ID) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Unauthorized",
		})
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Usage: /add_channel <channel_id> [title]\nExample: /add_channel -1001234567890 My Channel",
		})
		return
	}

	channelID := parts[1]
	title := strings.Join(parts[2:], " ")

	dailySchedule, err := h.cfg.DefaultDailySchedule()
	if err != nil {
		dailySchedule = channelDomain.TimeOfDay{Hour: 9}
	}
	pollSchedule, err := h.cfg.DefaultPollSchedule()
	if err != nil {
		pollSchedule = channelDomain.TimeOfDay{Hour: 10}
	}

	channel := channelDomain.Channel{
		ID:                      channelID,
		Title:                   title,
		WelcomeEnabled:          true,
		DailyMessageEnabled:     true,
		DailyMessageSchedule:    dailySchedule,
		PollSchedule:            pollSchedule,
		PollSubscriberThreshold: h.cfg.DefaultPollThreshold,
	}

	if err := h.registry.Upsert(channel); err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   fmt.Sprintf("❌ Failed to save channel: %v", err),
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: fmt.Sprintf("✅ Channel %s added!\nWelcome messages and the daily message at %s are on.\nRun /customize_poll %s to set up the daily poll.",
			channelID, dailySchedule, channelID),
	})
}

func (h *Handler) handleRemoveChannel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.checkAuthorization(update.Message.From.ID) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Unauthorized",
		})
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Usage: /remove_channel <channel_id>",
		})
		return
	}

	channelID := parts[1]
	if err := h.registry.Remove(channelID); err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   fmt.Sprintf("❌ Failed to remove channel: %v", err),
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   fmt.Sprintf("✅ Channel %s removed.", channelID),
	})
}

func (h *Handler) handleListChannels(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.checkAuthorization(update.Message.From.ID) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Unauthorized",
		})
		return
	}

	channels := h.registry.List()
	if len(channels) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "📭 No channels managed yet.\nUse /add_channel to add one.",
		})
		return
	}

	var text strings.Builder
	text.WriteString("📋 Managed Channels:\n\n")
	for i, ch := range channels {
		text.WriteString(fmt.Sprintf("%d. %s (%s)\n   welcome: %s  daily: %s  poll: %s\n\n",
			i+1, ch.Title, ch.ID,
			onOff(ch.WelcomeEnabled), onOff(ch.DailyMessageEnabled), onOff(ch.PollEnabled)))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text.String(),
	})
}

func (h *Handler) handleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.checkAuthorization(update.Message.From.ID) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Unauthorized",
		})
		return
	}

	channels := h.registry.List()
	var text strings.Builder
	text.WriteString(fmt.Sprintf("📊 Bot Status:\n\nChannels: %d\nTimezone: %s\nHTTP Port: %s\n",
		len(channels), h.cfg.Timezone, h.cfg.HTTPPort))

	for _, ch := range channels {
		text.WriteString(fmt.Sprintf("\n%s (%s)\n", ch.Title, ch.ID))
		text.WriteString(fmt.Sprintf("  welcome: %s\n", onOff(ch.WelcomeEnabled)))
		text.WriteString(fmt.Sprintf("  daily message: %s at %s\n", onOff(ch.DailyMessageEnabled), ch.DailyMessageSchedule))

		if ch.PollEnabled {
			count, err := h.client.SubscriberCount(ctx, ch.ID)
			switch {
			case err != nil:
				text.WriteString(fmt.Sprintf("  daily poll: on at %s (subscriber count unavailable)\n", ch.PollSchedule))
			case count >= ch.PollSubscriberThreshold:
				text.WriteString(fmt.Sprintf("  daily poll: on at %s (%d/%d subscribers, eligible)\n",
					ch.PollSchedule, count, ch.PollSubscriberThreshold))
			default:
				text.WriteString(fmt.Sprintf("  daily poll: on at %s (%d/%d subscribers, waiting)\n",
					ch.PollSchedule, count, ch.PollSubscriberThreshold))
			}
		} else {
			text.WriteString("  daily poll: off\n")
		}

		if totals, err := h.stats.Totals(ch.ID); err == nil && len(totals) > 0 {
			text.WriteString(fmt.Sprintf("  deliveries: %d welcome, %d daily, %d polls\n",
				totals[channelDomain.FeatureWelcome],
				totals[channelDomain.FeatureDailyMessage],
				totals[channelDomain.FeatureDailyPoll]))
		}
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text.String(),
	})
}

func (h *Handler) handleCustomizePoll(ctx context.Context, b *bot.Bot, update *models.Update) {
	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Usage: /customize_poll <channel_id>",
		})
		return
	}

	reply, err := h.dialogue.Start(update.Message.From.ID, parts[1])
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   startErrorReply(err),
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   reply,
	})
}

func (h *Handler) handleTestWelcome(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.checkAuthorization(update.Message.From.ID) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Unauthorized",
		})
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Usage: /test_welcome <channel_id> [name]",
		})
		return
	}

	username := update.Message.From.Username
	if len(parts) >= 3 {
		username = parts[2]
	}

	text, err := h.registry.WelcomeText(parts[1], username)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   fmt.Sprintf("❌ %v", err),
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "Preview:\n" + text,
	})
}

func (h *Handler) handleConfirm(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.feedDialogue(ctx, b, update, dialogueDomain.InputKindConfirm)
}

func (h *Handler) handleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.feedDialogue(ctx, b, update, dialogueDomain.InputKindCancel)
}

func (h *Handler) feedDialogue(ctx context.Context, b *bot.Bot, update *models.Update, kind dialogueDomain.InputKind) {
	reply, err := h.dialogue.Handle(update.Message.From.ID, kind, "")
	if errors.Is(err, sharederrors.ErrNoSession) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "There's no poll setup in progress. Start one with /customize_poll <channel_id>.",
		})
		return
	}
	if err != nil {
		slog.Error("Dialogue input failed", "user_id", update.Message.From.ID, "error", err)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   reply,
	})
}

func startErrorReply(err error) string {
	switch {
	case errors.Is(err, sharederrors.ErrUnauthorized):
		return "❌ Unauthorized"
	case errors.Is(err, sharederrors.ErrChannelNotFound):
		return "❌ I don't manage that channel. Check /channels."
	case errors.Is(err, sharederrors.ErrSessionConflict):
		return "❌ You already have a setup in progress. Finish it or send /cancel first."
	default:
		return fmt.Sprintf("❌ %v", err)
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "✅"
	}
	return "⏸️"
}

// Helper functions
func isMember(cm models.ChatMember) bool {
	switch cm.Type {
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator, models.ChatMemberTypeMember:
		return true
	case models.ChatMemberTypeRestricted:
		return cm.Restricted != nil && cm.Restricted.IsMember
	default:
		return false
	}
}

func memberUser(cm models.ChatMember) *models.User {
	switch cm.Type {
	case models.ChatMemberTypeOwner:
		if cm.Owner != nil {
			return cm.Owner.User
		}
	case models.ChatMemberTypeAdministrator:
		if cm.Administrator != nil {
			return &cm.Administrator.User
		}
	case models.ChatMemberTypeMember:
		if cm.Member != nil {
			return cm.Member.User
		}
	case models.ChatMemberTypeRestricted:
		if cm.Restricted != nil {
			return cm.Restricted.User
		}
	}
	return nil
}
