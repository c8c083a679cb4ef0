package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	channelDomain "github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
	channelService "github.com/reshetovitsme/channel-steward/internal/modules/channel/service"
	"github.com/reshetovitsme/channel-steward/internal/modules/dialogue/domain"
	sharederrors "github.com/reshetovitsme/channel-steward/internal/shared/errors"
)

type fakeCommitter struct {
	channels  map[string]channelDomain.Channel
	applied   []channelService.PollUpdate
	applyErrs []error
}

func (f *fakeCommitter) Get(channelID string) (channelDomain.Channel, error) {
	ch, ok := f.channels[channelID]
	if !ok {
		return channelDomain.Channel{}, sharederrors.ErrChannelNotFound
	}
	return ch, nil
}

func (f *fakeCommitter) ApplyPollUpdate(_ string, upd channelService.PollUpdate) error {
	if len(f.applyErrs) > 0 {
		err := f.applyErrs[0]
		f.applyErrs = f.applyErrs[1:]
		return err
	}
	f.applied = append(f.applied, upd)
	return nil
}

func newTestManager(committer *fakeCommitter) *Manager {
	return New(Config{}, committer, func(id int64) bool { return id == 1 })
}

func TestDialogueHappyPath(t *testing.T) {
	committer := &fakeCommitter{channels: map[string]channelDomain.Channel{"-100": {ID: "-100"}}}
	m := newTestManager(committer)

	if _, err := m.Start(1, "-100"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	steps := []struct {
		kind domain.InputKind
		text string
	}{
		{domain.InputKindText, "How was your week?"},
		{domain.InputKindText, "great, fine, awful"},
		{domain.InputKindText, "10:30"},
		{domain.InputKindConfirm, ""},
	}
	for _, step := range steps {
		if _, err := m.Handle(1, step.kind, step.text); err != nil {
			t.Fatalf("Handle(%s, %q): %v", step.kind, step.text, err)
		}
	}

	if len(committer.applied) != 1 {
		t.Fatalf("applied updates = %d, want 1", len(committer.applied))
	}
	upd := committer.applied[0]
	if upd.Question != "How was your week?" {
		t.Errorf("question = %q", upd.Question)
	}
	if len(upd.Options) != 3 || upd.Options[0] != "great" || upd.Options[2] != "awful" {
		t.Errorf("options = %v", upd.Options)
	}
	if upd.Schedule != (channelDomain.TimeOfDay{Hour: 10, Minute: 30}) {
		t.Errorf("schedule = %v", upd.Schedule)
	}
	if m.Active(1) {
		t.Error("session should be destroyed after commit")
	}
}

func TestStartRejections(t *testing.T) {
	committer := &fakeCommitter{channels: map[string]channelDomain.Channel{"-100": {ID: "-100"}}}
	m := newTestManager(committer)

	if _, err := m.Start(2, "-100"); !errors.Is(err, sharederrors.ErrUnauthorized) {
		t.Errorf("non-admin start: %v, want ErrUnauthorized", err)
	}
	if _, err := m.Start(1, "-999"); !errors.Is(err, sharederrors.ErrChannelNotFound) {
		t.Errorf("unknown channel start: %v, want ErrChannelNotFound", err)
	}

	if _, err := m.Start(1, "-100"); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if _, err := m.Start(1, "-100"); !errors.Is(err, sharederrors.ErrSessionConflict) {
		t.Errorf("second start: %v, want ErrSessionConflict", err)
	}
}

func TestInvalidInputsKeepState(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string // inputs leading up to the bad one, bad one last
		state  domain.SessionState
	}{
		{"empty question", []string{"   "}, domain.SessionStateAwaitingQuestion},
		{"single option", []string{"Q?", "only one"}, domain.SessionStateAwaitingOptions},
		{"too many options", []string{"Q?", "a,b,c,d,e,f,g,h,i,j,k"}, domain.SessionStateAwaitingOptions},
		{"duplicate options", []string{"Q?", "a, b, a"}, domain.SessionStateAwaitingOptions},
		{"bad time", []string{"Q?", "a, b", "25:99"}, domain.SessionStateAwaitingSchedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			committer := &fakeCommitter{channels: map[string]channelDomain.Channel{"-100": {ID: "-100"}}}
			m := newTestManager(committer)
			if _, err := m.Start(1, "-100"); err != nil {
				t.Fatalf("Start: %v", err)
			}

			for _, input := range tt.inputs {
				if _, err := m.Handle(1, domain.InputKindText, input); err != nil {
					t.Fatalf("Handle(%q): %v", input, err)
				}
			}

			if got := m.sessions[1].State; got != tt.state {
				t.Errorf("state = %s, want %s", got, tt.state)
			}
		})
	}
}

func TestUnexpectedInputIsRejected(t *testing.T) {
	committer := &fakeCommitter{channels: map[string]channelDomain.Channel{"-100": {ID: "-100"}}}
	m := newTestManager(committer)
	if _, err := m.Start(1, "-100"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	reply, err := m.Handle(1, domain.InputKindConfirm, "")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(reply, "/cancel") {
		t.Errorf("reply = %q, want a pointer to /cancel", reply)
	}
	if got := m.sessions[1].State; got != domain.SessionStateAwaitingQuestion {
		t.Errorf("state = %s, confirm before confirmation step must not move it", got)
	}
}

func TestCancelDestroysSessionEverywhere(t *testing.T) {
	prefixes := [][]string{
		{},
		{"Q?"},
		{"Q?", "a, b"},
		{"Q?", "a, b", "10:00"},
	}

	for _, prefix := range prefixes {
		committer := &fakeCommitter{channels: map[string]channelDomain.Channel{"-100": {ID: "-100"}}}
		m := newTestManager(committer)
		if _, err := m.Start(1, "-100"); err != nil {
			t.Fatalf("Start: %v", err)
		}
		for _, input := range prefix {
			if _, err := m.Handle(1, domain.InputKindText, input); err != nil {
				t.Fatalf("Handle(%q): %v", input, err)
			}
		}

		if _, err := m.Handle(1, domain.InputKindCancel, ""); err != nil {
			t.Fatalf("cancel after %d steps: %v", len(prefix), err)
		}
		if m.Active(1) {
			t.Errorf("session survived cancel after %d steps", len(prefix))
		}
		if len(committer.applied) != 0 {
			t.Errorf("cancel must not apply anything, got %v", committer.applied)
		}
	}
}

func TestCommitValidationFailureRestartsCollection(t *testing.T) {
	committer := &fakeCommitter{
		channels:  map[string]channelDomain.Channel{"-100": {ID: "-100"}},
		applyErrs: []error{channelService.ErrTooFewOptions},
	}
	m := newTestManager(committer)

	if _, err := m.Start(1, "-100"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, input := range []string{"Q?", "a, b", "10:00"} {
		if _, err := m.Handle(1, domain.InputKindText, input); err != nil {
			t.Fatalf("Handle(%q): %v", input, err)
		}
	}

	if _, err := m.Handle(1, domain.InputKindConfirm, ""); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !m.Active(1) {
		t.Fatal("session should survive a rejected commit")
	}
	if got := m.sessions[1].State; got != domain.SessionStateAwaitingQuestion {
		t.Errorf("state = %s, want awaiting_question", got)
	}
}

func TestHandleWithoutSession(t *testing.T) {
	m := newTestManager(&fakeCommitter{})
	if _, err := m.Handle(1, domain.InputKindText, "hello"); !errors.Is(err, sharederrors.ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestSweepCancelsIdleSessions(t *testing.T) {
	committer := &fakeCommitter{channels: map[string]channelDomain.Channel{"-100": {ID: "-100"}}}
	m := New(Config{IdleTimeout: 10 * time.Minute}, committer, func(int64) bool { return true })

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	if _, err := m.Start(1, "-100"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	m.now = func() time.Time { return base.Add(5 * time.Minute) }
	m.sweep()
	if !m.Active(1) {
		t.Fatal("fresh session swept too early")
	}

	m.now = func() time.Time { return base.Add(11 * time.Minute) }
	m.sweep()
	if m.Active(1) {
		t.Fatal("idle session survived the sweep")
	}
}
