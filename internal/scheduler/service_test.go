package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/reshetovitsme/channel-steward/internal/dispatch"
	"github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
	sharederrors "github.com/reshetovitsme/channel-steward/internal/shared/errors"
)

type fakeChannels struct {
	mu       sync.Mutex
	channels map[string]domain.Channel
	messages map[string]string // channel id -> next rotation message
	advanced []string
}

func (f *fakeChannels) Get(channelID string) (domain.Channel, error) {
	ch, ok := f.channels[channelID]
	if !ok {
		return domain.Channel{}, sharederrors.ErrChannelNotFound
	}
	return ch, nil
}

func (f *fakeChannels) ListEnabled(feature domain.Feature) []domain.Channel {
	var out []domain.Channel
	for _, ch := range f.channels {
		if ch.FeatureEnabled(feature) {
			out = append(out, ch)
		}
	}
	return out
}

func (f *fakeChannels) AdvanceRotation(channelID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.advanced = append(f.advanced, channelID)
	msg, ok := f.messages[channelID]
	if !ok {
		return "", sharederrors.ErrEmptyPool
	}
	return msg, nil
}

type fakeCounter struct {
	counts map[string]int
	err    error
}

func (f *fakeCounter) SubscriberCount(_ context.Context, chatID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[chatID], nil
}

type fakeQueue struct {
	mu       sync.Mutex
	requests []dispatch.Request
}

func (f *fakeQueue) Enqueue(req dispatch.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return nil
}

func at(hour, minute int) domain.TimeOfDay {
	return domain.TimeOfDay{Hour: hour, Minute: minute}
}

func TestRebuildCreatesOneEntryPerChannelFeature(t *testing.T) {
	channels := &fakeChannels{channels: map[string]domain.Channel{
		"-1": {ID: "-1", DailyMessageEnabled: true, DailyMessageSchedule: at(9, 0)},
		"-2": {
			ID: "-2",
			DailyMessageEnabled: true, DailyMessageSchedule: at(9, 0),
			PollEnabled: true, PollSchedule: at(10, 0),
		},
		"-3": {ID: "-3"},
	}}
	svc := New(time.UTC, channels, &fakeCounter{}, &fakeQueue{})
	defer svc.Stop()

	svc.Start(context.Background())
	if got := svc.Entries(); got != 3 {
		t.Fatalf("entries = %d, want 3 (two messages + one poll)", got)
	}

	// Disabling a feature and rebuilding drops its trigger.
	ch := channels.channels["-2"]
	ch.PollEnabled = false
	channels.channels["-2"] = ch
	svc.Rebuild()
	if got := svc.Entries(); got != 2 {
		t.Fatalf("entries after rebuild = %d, want 2", got)
	}
}

func TestFireDailyMessageEnqueuesRotationMessage(t *testing.T) {
	channels := &fakeChannels{
		channels: map[string]domain.Channel{"-1": {ID: "-1", DailyMessageEnabled: true}},
		messages: map[string]string{"-1": "good morning"},
	}
	queue := &fakeQueue{}
	svc := New(time.UTC, channels, &fakeCounter{}, queue)

	svc.fireDailyMessage("-1")

	if len(queue.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(queue.requests))
	}
	req := queue.requests[0]
	if req.Feature != domain.FeatureDailyMessage || req.ChatID != "-1" || req.Text != "good morning" {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestFireDailyMessageSkipsEmptyPool(t *testing.T) {
	channels := &fakeChannels{
		channels: map[string]domain.Channel{"-1": {ID: "-1", DailyMessageEnabled: true}},
	}
	queue := &fakeQueue{}
	svc := New(time.UTC, channels, &fakeCounter{}, queue)

	svc.fireDailyMessage("-1")

	if len(queue.requests) != 0 {
		t.Fatalf("empty pool must not enqueue, got %v", queue.requests)
	}
}

func TestFireDailyPoll(t *testing.T) {
	channel := domain.Channel{
		ID:                      "-1",
		PollEnabled:             true,
		PollQuestion:            "How are you?",
		PollOptions:             []string{"good", "bad"},
		PollSubscriberThreshold: 500,
	}

	tests := []struct {
		name     string
		count    int
		countErr error
		want     int
	}{
		{"at threshold", 500, nil, 1},
		{"below threshold", 499, nil, 0},
		{"count unavailable", 0, errors.New("telegram down"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channels := &fakeChannels{channels: map[string]domain.Channel{"-1": channel}}
			counter := &fakeCounter{counts: map[string]int{"-1": tt.count}, err: tt.countErr}
			queue := &fakeQueue{}
			svc := New(time.UTC, channels, counter, queue)

			svc.fireDailyPoll("-1")

			if len(queue.requests) != tt.want {
				t.Fatalf("requests = %d, want %d", len(queue.requests), tt.want)
			}
			if tt.want == 1 {
				req := queue.requests[0]
				if req.Question != "How are you?" || req.Subscribers != 500 {
					t.Errorf("unexpected request: %+v", req)
				}
			}
		})
	}
}
