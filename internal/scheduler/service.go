package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/reshetovitsme/channel-steward/internal/dispatch"
	"github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
	"github.com/reshetovitsme/channel-steward/internal/modules/poll"
	sharederrors "github.com/reshetovitsme/channel-steward/internal/shared/errors"
	"github.com/robfig/cron/v3"
)

// Channels is the registry surface the scheduler depends on.
type Channels interface {
	Get(channelID string) (domain.Channel, error)
	ListEnabled(feature domain.Feature) []domain.Channel
	AdvanceRotation(channelID string) (string, error)
}

// Counter fetches a live subscriber count. The dispatch client
// implements it.
type Counter interface {
	SubscriberCount(ctx context.Context, chatID string) (int, error)
}

// Queue accepts outbound deliveries.
type Queue interface {
	Enqueue(req dispatch.Request) error
}

// Service maps each channel's configured times of day onto cron entries,
// one per (channel, feature). Cron gives the delivery semantics for
// free: fire at the configured local time, at most once per day, and
// times missed while the process was down are simply skipped.
type Service struct {
	location *time.Location
	channels Channels
	counter  Counter
	queue    Queue

	mu   sync.Mutex
	cron *cron.Cron
	ctx  context.Context
}

// New creates the scheduler. Times are interpreted in the given
// location.
func New(location *time.Location, channels Channels, counter Counter, queue Queue) *Service {
	return &Service{
		location: location,
		channels: channels,
		counter:  counter,
		queue:    queue,
		ctx:      context.Background(),
	}
}

// Start builds the initial trigger set and begins firing. Call Rebuild
// (typically via registry.Subscribe) after configuration changes.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.Rebuild()
}

// Stop halts the triggers, waiting for a running fire to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}
}

// Rebuild replaces the whole trigger set from the current channel
// configuration, so edits take effect without a restart.
func (s *Service) Rebuild() {
	next := cron.New(cron.WithLocation(s.location))

	for _, ch := range s.channels.ListEnabled(domain.FeatureDailyMessage) {
		channelID := ch.ID
		if _, err := next.AddFunc(ch.DailyMessageSchedule.CronSpec(), func() {
			s.fireDailyMessage(channelID)
		}); err != nil {
			slog.Error("Failed to schedule daily message", "channel_id", channelID, "error", err)
		}
	}

	for _, ch := range s.channels.ListEnabled(domain.FeatureDailyPoll) {
		channelID := ch.ID
		if _, err := next.AddFunc(ch.PollSchedule.CronSpec(), func() {
			s.fireDailyPoll(channelID)
		}); err != nil {
			slog.Error("Failed to schedule daily poll", "channel_id", channelID, "error", err)
		}
	}

	s.mu.Lock()
	prev := s.cron
	s.cron = next
	s.mu.Unlock()

	next.Start()
	if prev != nil {
		prev.Stop()
	}
	slog.Info("Trigger schedule rebuilt", "entries", len(next.Entries()))
}

// Entries reports the number of active triggers.
func (s *Service) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return 0
	}
	return len(s.cron.Entries())
}

// fireDailyMessage advances the rotation and hands the message to the
// delivery queue. Failures stay scoped to this channel.
func (s *Service) fireDailyMessage(channelID string) {
	message, err := s.channels.AdvanceRotation(channelID)
	if err != nil {
		if errors.Is(err, sharederrors.ErrEmptyPool) {
			slog.Warn("Skipping daily message: no messages configured", "channel_id", channelID)
		} else {
			slog.Error("Skipping daily message", "channel_id", channelID, "error", err)
		}
		return
	}

	err = s.queue.Enqueue(dispatch.Request{
		Feature:   domain.FeatureDailyMessage,
		ChannelID: channelID,
		ChatID:    channelID,
		Text:      message,
	})
	if err != nil {
		slog.Error("Failed to enqueue daily message", "channel_id", channelID, "error", err)
	}
}

// fireDailyPoll checks the live subscriber count against the channel's
// threshold and enqueues the poll when it passes. A failed count fetch
// skips this cycle; there is no same-cycle retry.
func (s *Service) fireDailyPoll(channelID string) {
	ch, err := s.channels.Get(channelID)
	if err != nil {
		slog.Error("Skipping daily poll: channel gone", "channel_id", channelID, "error", err)
		return
	}

	count, err := s.counter.SubscriberCount(s.ctx, channelID)
	if err != nil {
		slog.Warn("Skipping daily poll: subscriber count unavailable",
			"channel_id", channelID, "error", err)
		return
	}

	if !poll.ShouldPoll(ch, count) {
		slog.Info("Skipping daily poll: below subscriber threshold",
			"channel_id", channelID, "subscribers", count, "threshold", ch.PollSubscriberThreshold)
		return
	}

	err = s.queue.Enqueue(dispatch.Request{
		Feature:     domain.FeatureDailyPoll,
		ChannelID:   channelID,
		ChatID:      channelID,
		Question:    ch.PollQuestion,
		Options:     ch.PollOptions,
		Subscribers: count,
	})
	if err != nil {
		slog.Error("Failed to enqueue daily poll", "channel_id", channelID, "error", err)
	}
}
