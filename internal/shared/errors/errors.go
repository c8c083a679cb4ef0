package errors

import "errors"

var (
	ErrMissingBotToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	ErrUnauthorized    = errors.New("unauthorized user")
	ErrChannelNotFound = errors.New("channel not found")
	ErrEmptyPool       = errors.New("channel has no message pool configured")
	ErrSessionConflict = errors.New("another configuration session is already active for this admin")
	ErrNoSession       = errors.New("no active configuration session")
)
