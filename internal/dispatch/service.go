package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
	"github.com/samber/oops"
)

// FeatureDisabler flags a channel feature off after a permanent failure.
// The channel registry implements it.
type FeatureDisabler interface {
	DisableFeature(channelID string, feature domain.Feature) error
}

// Recorder keeps the delivery history. The stats service implements it.
type Recorder interface {
	Record(channelID string, feature domain.Feature, summary string, subscribers int)
}

// Request is a fully formed outbound delivery. Scheduler triggers and
// membership events both funnel through the same queue.
type Request struct {
	Feature   domain.Feature
	ChannelID string
	// ChatID is the destination chat. Usually the channel itself;
	// welcome messages target the member with the channel as fallback.
	ChatID         string
	FallbackChatID string

	Text        string
	Question    string
	Options     []string
	Subscribers int
}

// Config controls the delivery workers.
type Config struct {
	Workers   int
	QueueSize int
	RetryMax  int
	RetryBase time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.RetryMax <= 0 {
		c.RetryMax = 3
	}
	if c.RetryBase <= 0 {
		c.RetryBase = time.Second
	}
	return c
}

// Service consumes the delivery queue with a small worker pool. Requests
// for the same (channel, feature) are serialized so a cycle still
// retrying can never overlap the next one, while distinct channels
// deliver concurrently.
type Service struct {
	cfg      Config
	client   Client
	registry FeatureDisabler
	stats    Recorder

	queue  chan Request
	stopCh chan struct{}
	wg     sync.WaitGroup

	keyMu sync.Mutex
	keys  map[string]*sync.Mutex

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

// New creates the delivery service.
func New(cfg Config, client Client, registry FeatureDisabler, stats Recorder) *Service {
	return &Service{
		cfg:      cfg.withDefaults(),
		client:   client,
		registry: registry,
		stats:    stats,
		keys:     map[string]*sync.Mutex{},
		sleep:    time.Sleep,
	}
}

// Start launches the delivery workers.
func (s *Service) Start(ctx context.Context) {
	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	s.queue = make(chan Request, s.cfg.QueueSize)

	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
}

// Stop drains the workers.
func (s *Service) Stop() {
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	s.wg.Wait()
	s.stopCh = nil
}

// Enqueue hands a delivery to the workers. A full queue is reported
// rather than blocking trigger processing.
func (s *Service) Enqueue(req Request) error {
	select {
	case s.queue <- req:
		return nil
	default:
		return oops.With("channel_id", req.ChannelID, "feature", req.Feature).
			Wrap(oops.Errorf("delivery queue is full"))
	}
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case req := <-s.queue:
			s.process(ctx, req)
		}
	}
}

// process serializes per (channel, feature) and runs the retry loop.
func (s *Service) process(ctx context.Context, req Request) {
	mu := s.keyLock(req.ChannelID + "/" + string(req.Feature))
	mu.Lock()
	defer mu.Unlock()

	err := s.deliver(ctx, req, req.ChatID)
	if err == nil {
		s.stats.Record(req.ChannelID, req.Feature, req.summary(), req.Subscribers)
		return
	}

	if req.FallbackChatID != "" && req.FallbackChatID != req.ChatID {
		slog.Info("Primary delivery failed, trying fallback chat",
			"channel_id", req.ChannelID, "feature", req.Feature, "error", err)
		if err = s.deliver(ctx, req, req.FallbackChatID); err == nil {
			s.stats.Record(req.ChannelID, req.Feature, req.summary(), req.Subscribers)
			return
		}
	}

	if IsPermanent(err) && req.targetsChannel() {
		slog.Error("Permanent delivery failure, disabling feature",
			"channel_id", req.ChannelID, "feature", req.Feature, "error", err)
		if derr := s.registry.DisableFeature(req.ChannelID, req.Feature); derr != nil {
			slog.Error("Failed to disable feature", "channel_id", req.ChannelID, "error", derr)
		}
		return
	}

	slog.Error("Delivery abandoned for this cycle",
		"channel_id", req.ChannelID, "feature", req.Feature, "error", err)
}

// deliver attempts the send with bounded exponential backoff. Permanent
// failures are returned immediately.
func (s *Service) deliver(ctx context.Context, req Request, chatID string) error {
	backoff := s.cfg.RetryBase
	var err error

	for attempt := 1; attempt <= s.cfg.RetryMax; attempt++ {
		err = s.send(ctx, req, chatID)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}
		if attempt < s.cfg.RetryMax {
			slog.Warn("Delivery attempt failed, retrying",
				"channel_id", req.ChannelID, "feature", req.Feature,
				"attempt", attempt, "backoff", backoff, "error", err)
			s.sleep(backoff)
			backoff *= 2
		}
	}
	return err
}

func (s *Service) send(ctx context.Context, req Request, chatID string) error {
	if req.Feature == domain.FeatureDailyPoll {
		return s.client.SendPoll(ctx, chatID, req.Question, req.Options)
	}
	return s.client.SendText(ctx, chatID, req.Text)
}

func (s *Service) keyLock(key string) *sync.Mutex {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	mu, ok := s.keys[key]
	if !ok {
		mu = &sync.Mutex{}
		s.keys[key] = mu
	}
	return mu
}

func (r Request) summary() string {
	if r.Feature == domain.FeatureDailyPoll {
		return r.Question
	}
	return r.Text
}

// targetsChannel reports whether the failed destination was the managed
// channel itself. Welcome messages aimed at a member's private chat must
// not disable the channel feature.
func (r Request) targetsChannel() bool {
	return r.ChatID == r.ChannelID || r.FallbackChatID == r.ChannelID
}
