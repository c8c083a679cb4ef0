package repository

import (
	"github.com/reshetovitsme/channel-steward/internal/modules/stats/domain"
)

// Repository persists per-channel delivery histories.
type Repository interface {
	Append(record domain.DeliveryRecord) error
	Recent(channelID string, limit int) ([]domain.DeliveryRecord, error)
}
