package domain

import (
	"time"

	channelDomain "github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
)

// DeliveryRecord is one successful outbound delivery, kept in a bounded
// per-channel history for status reporting and the delivery feed.
type DeliveryRecord struct {
	ChannelID   string                `json:"channel_id"`
	Feature     channelDomain.Feature `json:"feature"`
	Summary     string                `json:"summary"`
	SentAt      time.Time             `json:"sent_at"`
	Subscribers int                   `json:"subscribers,omitempty"`
}
