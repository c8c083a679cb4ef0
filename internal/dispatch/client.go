package dispatch

import "context"

// Client is the outbound messaging capability consumed by the core. The
// Telegram implementation lives in this package; tests substitute fakes.
// Errors are classified as Transient or Permanent by the implementation.
type Client interface {
	SendText(ctx context.Context, chatID string, text string) error
	SendPoll(ctx context.Context, chatID string, question string, options []string) error
	SubscriberCount(ctx context.Context, chatID string) (int, error)
}
