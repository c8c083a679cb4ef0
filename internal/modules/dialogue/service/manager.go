package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	channelDomain "github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
	channelService "github.com/reshetovitsme/channel-steward/internal/modules/channel/service"
	"github.com/reshetovitsme/channel-steward/internal/modules/dialogue/domain"
	sharederrors "github.com/reshetovitsme/channel-steward/internal/shared/errors"
	"github.com/samber/lo"
)

// Committer applies a confirmed poll draft. The channel registry
// implements it.
type Committer interface {
	Get(channelID string) (channelDomain.Channel, error)
	ApplyPollUpdate(channelID string, upd channelService.PollUpdate) error
}

// Config controls the dialogue manager.
type Config struct {
	// IdleTimeout cancels sessions with no admin activity.
	IdleTimeout time.Duration
	// SweepInterval is how often stale sessions are collected.
	SweepInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 10 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	return c
}

// Manager runs the poll configuration dialogues. One session per admin;
// all state lives in memory and is dropped on restart.
type Manager struct {
	cfg       Config
	committer Committer
	isAdmin   func(int64) bool

	mu       sync.Mutex
	sessions map[int64]*domain.Session

	stopCh chan struct{}
	wg     sync.WaitGroup

	// now is swapped out in tests
	now func() time.Time
}

// New creates the dialogue manager. isAdmin gates who may start a
// session.
func New(cfg Config, committer Committer, isAdmin func(int64) bool) *Manager {
	return &Manager{
		cfg:       cfg.withDefaults(),
		committer: committer,
		isAdmin:   isAdmin,
		sessions:  map[int64]*domain.Session{},
		now:       time.Now,
	}
}

// Start opens a session for the admin targeting the given channel.
// It returns the first prompt of the dialogue.
func (m *Manager) Start(adminID int64, channelID string) (string, error) {
	if !m.isAdmin(adminID) {
		return "", sharederrors.ErrUnauthorized
	}
	if _, err := m.committer.Get(channelID); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[adminID]; ok {
		return "", sharederrors.ErrSessionConflict
	}

	now := m.now()
	m.sessions[adminID] = &domain.Session{
		AdminID:        adminID,
		ChannelID:      channelID,
		State:          domain.SessionStateAwaitingQuestion,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	return "Let's set up the daily poll. Send me the poll question.", nil
}

// Active reports whether the admin has a session in flight. The
// transport uses it to route plain text into the dialogue.
func (m *Manager) Active(adminID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[adminID]
	return ok
}

// Handle feeds one admin input through the transition table and returns
// the reply to send back.
func (m *Manager) Handle(adminID int64, kind domain.InputKind, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[adminID]
	if !ok {
		return "", sharederrors.ErrNoSession
	}
	session.LastActivityAt = m.now()

	handler, ok := transitions[transitionKey{state: session.State, input: kind}]
	if !ok {
		return "I didn't expect that here. Answer the current question or send /cancel.", nil
	}

	reply := handler(m, session, text)
	if session.State == domain.SessionStateCommitted || session.State == domain.SessionStateCancelled {
		delete(m.sessions, adminID)
	}
	return reply, nil
}

// StartSweeper launches the idle-session collector.
func (m *Manager) StartSweeper(ctx context.Context) {
	if m.stopCh != nil {
		return
	}
	m.stopCh = make(chan struct{})

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

// Stop halts the sweeper.
func (m *Manager) Stop() {
	if m.stopCh == nil {
		return
	}
	close(m.stopCh)
	m.wg.Wait()
	m.stopCh = nil
}

// sweep cancels sessions idle longer than the configured timeout.
func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.cfg.IdleTimeout)
	stale := lo.PickBy(m.sessions, func(_ int64, s *domain.Session) bool {
		return s.LastActivityAt.Before(cutoff)
	})
	for adminID, session := range stale {
		slog.Info("Cancelling idle configuration session",
			"admin_id", adminID, "channel_id", session.ChannelID, "state", session.State)
		delete(m.sessions, adminID)
	}
}
