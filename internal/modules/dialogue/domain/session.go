package domain

import (
	"time"

	channelDomain "github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
)

// Draft accumulates the poll fields collected step by step. Nothing is
// applied to the channel until the admin confirms the complete draft.
type Draft struct {
	Question string
	Options  []string
	Schedule channelDomain.TimeOfDay
}

// Session is one admin's in-flight poll configuration. Sessions live in
// memory only; a restart drops them and the admin starts over.
type Session struct {
	AdminID        int64
	ChannelID      string
	State          SessionState
	Draft          Draft
	CreatedAt      time.Time
	LastActivityAt time.Time
}
