package service

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/channel-steward/internal/modules/channel/repository"
	messageService "github.com/reshetovitsme/channel-steward/internal/modules/message/service"
	sharederrors "github.com/reshetovitsme/channel-steward/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Poll content constraints. Telegram rejects polls outside these bounds.
const (
	minPollOptions = 2
	maxPollOptions = 10
)

// Validation failures reported by ApplyPollUpdate. Each one names the
// violated constraint so the dialogue can explain it to the admin.
var (
	ErrEmptyQuestion    = errors.New("poll question must not be empty")
	ErrTooFewOptions    = errors.New("poll needs at least 2 distinct options")
	ErrTooManyOptions   = errors.New("poll allows at most 10 options")
	ErrDuplicateOptions = errors.New("poll options must be distinct")
)

// PollUpdate is a fully collected poll draft. Threshold is optional: nil
// keeps the channel's current subscriber threshold.
type PollUpdate struct {
	Question  string
	Options   []string
	Schedule  domain.TimeOfDay
	Threshold *int
}

// Registry is the single authoritative in-memory view of every managed
// channel. All reads return copies and all writes persist through the
// repository before they become visible, so concurrent readers never
// observe a half-applied update.
type Registry struct {
	mu       sync.RWMutex
	repo     channelRepo.Repository
	messages *messageService.Service
	channels map[string]domain.Channel

	subMu sync.Mutex
	subs  []func()
}

// New loads the channels document into memory. A broken document is a
// fatal configuration error: the bot must not run half-configured.
func New(repo channelRepo.Repository, messages *messageService.Service) (*Registry, error) {
	channels, err := repo.LoadChannels()
	if err != nil {
		return nil, oops.With("context", "failed to load channels document").Wrap(err)
	}

	return &Registry{
		repo:     repo,
		messages: messages,
		channels: channels,
	}, nil
}

// Subscribe registers a callback invoked after every committed
// configuration change. The scheduler uses this to rebuild its triggers
// without a restart.
func (r *Registry) Subscribe(fn func()) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	r.subs = append(r.subs, fn)
}

func (r *Registry) notify() {
	r.subMu.Lock()
	subs := append([]func(){}, r.subs...)
	r.subMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Get returns a copy of the channel definition.
func (r *Registry) Get(channelID string) (domain.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.channels[channelID]
	if !ok {
		return domain.Channel{}, sharederrors.ErrChannelNotFound
	}
	return ch.Clone(), nil
}

// List returns copies of all channels in stable order. JSON objects carry
// no ordering, so "configuration order" is defined as the lexicographic
// order of channel ids.
func (r *Registry) List() []domain.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []domain.Channel {
	ids := lo.Keys(r.channels)
	sort.Strings(ids)

	out := make([]domain.Channel, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.channels[id].Clone())
	}
	return out
}

// ListEnabled returns, in stable order, the channels with the given
// feature switched on.
func (r *Registry) ListEnabled(feature domain.Feature) []domain.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Filter(r.listLocked(), func(ch domain.Channel, _ int) bool {
		return ch.FeatureEnabled(feature)
	})
}

// Upsert adds or replaces a channel definition.
func (r *Registry) Upsert(ch domain.Channel) error {
	if ch.ID == "" {
		return oops.Errorf("channel id must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.persistWith(ch.ID, ch.Clone()); err != nil {
		return err
	}
	r.channels[ch.ID] = ch.Clone()

	go r.notify()
	return nil
}

// Remove deletes a channel definition.
func (r *Registry) Remove(channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[channelID]; !ok {
		return sharederrors.ErrChannelNotFound
	}

	next := r.cloneMapLocked()
	delete(next, channelID)
	if err := r.repo.SaveChannels(next); err != nil {
		return oops.With("channel_id", channelID, "context", "failed to persist channel removal").Wrap(err)
	}
	delete(r.channels, channelID)

	go r.notify()
	return nil
}

// ApplyPollUpdate validates the draft, atomically replaces the
// channel's poll fields and switches the poll on. On any failure the
// live channel is untouched.
func (r *Registry) ApplyPollUpdate(channelID string, upd PollUpdate) error {
	if err := validatePollUpdate(upd); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.channels[channelID]
	if !ok {
		return sharederrors.ErrChannelNotFound
	}

	next := ch.Clone()
	next.PollEnabled = true
	next.PollQuestion = upd.Question
	next.PollOptions = append([]string(nil), upd.Options...)
	next.PollSchedule = upd.Schedule
	if upd.Threshold != nil {
		next.PollSubscriberThreshold = *upd.Threshold
	}

	if err := r.persistWith(channelID, next); err != nil {
		return err
	}
	r.channels[channelID] = next

	go r.notify()
	return nil
}

func validatePollUpdate(upd PollUpdate) error {
	if upd.Question == "" {
		return ErrEmptyQuestion
	}

	distinct := lo.Uniq(lo.Filter(upd.Options, func(o string, _ int) bool { return o != "" }))
	switch {
	case len(distinct) < minPollOptions:
		return ErrTooFewOptions
	case len(distinct) != len(upd.Options):
		return ErrDuplicateOptions
	case len(distinct) > maxPollOptions:
		return ErrTooManyOptions
	}
	if upd.Threshold != nil && *upd.Threshold < 0 {
		return oops.Errorf("subscriber threshold must not be negative")
	}
	return nil
}

// AdvanceRotation returns the channel's current daily message and moves
// the rotation cursor one step forward, wrapping at the end of the pool.
// The cursor is persisted so rotation survives restarts. Channels without
// a pool of their own rotate through the shared default pool.
func (r *Registry) AdvanceRotation(channelID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.channels[channelID]
	if !ok {
		return "", sharederrors.ErrChannelNotFound
	}

	pool := ch.MessagePool
	if len(pool) == 0 {
		pool = r.messages.DefaultPool()
	}
	if len(pool) == 0 {
		return "", sharederrors.ErrEmptyPool
	}

	// Pool edits may have shrunk the pool since the cursor was written;
	// the modulo keeps it a valid index.
	idx := ch.RotationCursor % len(pool)
	if idx < 0 {
		idx = 0
	}
	message := pool[idx]

	next := ch.Clone()
	next.RotationCursor = (idx + 1) % len(pool)
	if err := r.persistWith(channelID, next); err != nil {
		// The message still goes out this cycle; a stale cursor on disk
		// only risks one repeat after a restart.
		slog.Error("Failed to persist rotation cursor", "channel_id", channelID, "error", err)
	}
	r.channels[channelID] = next

	return message, nil
}

// DisableFeature switches a feature off after a permanent dispatch
// failure (e.g. the bot was removed from the channel). The change is
// surfaced through the status command, not pushed proactively.
func (r *Registry) DisableFeature(channelID string, feature domain.Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.channels[channelID]
	if !ok {
		return sharederrors.ErrChannelNotFound
	}

	next := ch.Clone()
	switch feature {
	case domain.FeatureWelcome:
		next.WelcomeEnabled = false
	case domain.FeatureDailyMessage:
		next.DailyMessageEnabled = false
	case domain.FeatureDailyPoll:
		next.PollEnabled = false
	default:
		return oops.Errorf("unknown feature: %s", feature)
	}

	if err := r.persistWith(channelID, next); err != nil {
		return err
	}
	r.channels[channelID] = next

	go r.notify()
	return nil
}

// WelcomeText renders the welcome message for a new member of the
// channel, falling back to the shared template.
func (r *Registry) WelcomeText(channelID, username string) (string, error) {
	ch, err := r.Get(channelID)
	if err != nil {
		return "", err
	}

	template := ch.WelcomeTemplate
	if template == "" {
		template = r.messages.WelcomeTemplate()
	}
	return messageService.FormatWelcome(template, username), nil
}

func (r *Registry) cloneMapLocked() map[string]domain.Channel {
	next := make(map[string]domain.Channel, len(r.channels))
	for id, ch := range r.channels {
		next[id] = ch.Clone()
	}
	return next
}

// persistWith writes the channels document with one entry replaced. The
// in-memory map is only updated by the caller after this succeeds.
func (r *Registry) persistWith(channelID string, ch domain.Channel) error {
	next := r.cloneMapLocked()
	next[channelID] = ch
	if err := r.repo.SaveChannels(next); err != nil {
		return oops.With("channel_id", channelID, "context", "failed to persist channels document").Wrap(err)
	}
	return nil
}
