package dispatch

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"
)

// TelegramClient implements Client over the Bot API.
type TelegramClient struct {
	bot *bot.Bot
}

// NewTelegramClient wraps an initialized bot.
func NewTelegramClient(b *bot.Bot) *TelegramClient {
	return &TelegramClient{bot: b}
}

func (c *TelegramClient) SendText(ctx context.Context, chatID string, text string) error {
	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: asChatID(chatID),
		Text:   text,
	})
	return classify(err)
}

func (c *TelegramClient) SendPoll(ctx context.Context, chatID string, question string, options []string) error {
	pollOptions := lo.Map(options, func(o string, _ int) models.InputPollOption {
		return models.InputPollOption{Text: o}
	})

	_, err := c.bot.SendPoll(ctx, &bot.SendPollParams{
		ChatID:   asChatID(chatID),
		Question: question,
		Options:  pollOptions,
	})
	return classify(err)
}

func (c *TelegramClient) SubscriberCount(ctx context.Context, chatID string) (int, error) {
	count, err := c.bot.GetChatMemberCount(ctx, &bot.GetChatMemberCountParams{
		ChatID: asChatID(chatID),
	})
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

// asChatID converts numeric channel ids to int64; the Bot API treats
// string chat ids as @usernames.
func asChatID(chatID string) any {
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return id
	}
	return chatID
}

// classify maps Bot API failures onto the core's retry taxonomy. Access
// problems cannot be fixed by retrying; everything else (timeouts, rate
// limits, server hiccups) is worth another attempt.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, bot.ErrorForbidden),
		errors.Is(err, bot.ErrorUnauthorized),
		errors.Is(err, bot.ErrorNotFound),
		errors.Is(err, bot.ErrorBadRequest):
		return Permanent(err)
	default:
		return Transient(err)
	}
}
