// Package poll holds the gate predicate deciding whether a channel
// qualifies for its daily poll.
package poll

import (
	"github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
)

// ShouldPoll reports whether the daily poll fires for this channel given
// a live subscriber count. The count must be fetched fresh at trigger
// time; membership changes continuously, so yesterday's number is never
// reused.
func ShouldPoll(ch domain.Channel, liveSubscriberCount int) bool {
	return ch.PollEnabled && liveSubscriberCount >= ch.PollSubscriberThreshold
}
