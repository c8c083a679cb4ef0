package repository

import (
	"github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
)

// Repository persists the channels document (channel id -> definition,
// including each channel's rotation cursor).
// This abstraction allows easy replacement of storage implementations
// (e.g., FileStorage -> PostgreSQL -> MongoDB)
type Repository interface {
	LoadChannels() (map[string]domain.Channel, error)
	SaveChannels(channels map[string]domain.Channel) error
}
