package service

import (
	"errors"
	"fmt"
	"strings"

	channelDomain "github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
	channelService "github.com/reshetovitsme/channel-steward/internal/modules/channel/service"
	"github.com/reshetovitsme/channel-steward/internal/modules/dialogue/domain"
	"github.com/samber/lo"
)

type transitionKey struct {
	state domain.SessionState
	input domain.InputKind
}

type transitionFunc func(m *Manager, s *domain.Session, text string) string

// transitions is the whole dialogue. A (state, input) pair without an
// entry is rejected with a generic help reply, so there is no way to
// drive a session somewhere undefined.
var transitions = map[transitionKey]transitionFunc{
	{domain.SessionStateAwaitingQuestion, domain.InputKindText}:        handleQuestion,
	{domain.SessionStateAwaitingOptions, domain.InputKindText}:         handleOptions,
	{domain.SessionStateAwaitingSchedule, domain.InputKindText}:        handleSchedule,
	{domain.SessionStateAwaitingConfirmation, domain.InputKindConfirm}: handleConfirm,

	{domain.SessionStateAwaitingQuestion, domain.InputKindCancel}:     handleCancel,
	{domain.SessionStateAwaitingOptions, domain.InputKindCancel}:      handleCancel,
	{domain.SessionStateAwaitingSchedule, domain.InputKindCancel}:     handleCancel,
	{domain.SessionStateAwaitingConfirmation, domain.InputKindCancel}: handleCancel,
}

func handleQuestion(_ *Manager, s *domain.Session, text string) string {
	question := strings.TrimSpace(text)
	if question == "" {
		return "The question can't be empty. Send me the poll question."
	}

	s.Draft.Question = question
	s.State = domain.SessionStateAwaitingOptions
	return "Got it. Now send the answer options, separated by commas (2 to 10 of them)."
}

func handleOptions(_ *Manager, s *domain.Session, text string) string {
	options := lo.FilterMap(strings.Split(text, ","), func(o string, _ int) (string, bool) {
		trimmed := strings.TrimSpace(o)
		return trimmed, trimmed != ""
	})
	distinct := lo.Uniq(options)

	switch {
	case len(distinct) < 2:
		return "I need at least 2 distinct options, separated by commas. Try again."
	case len(distinct) > 10:
		return "That's too many: polls allow at most 10 options. Try again."
	case len(distinct) != len(options):
		return "Some options repeat. Send distinct options, separated by commas."
	}

	s.Draft.Options = options
	s.State = domain.SessionStateAwaitingSchedule
	return "Good. What time should the poll go out each day? Send it as HH:MM."
}

func handleSchedule(_ *Manager, s *domain.Session, text string) string {
	schedule, err := channelDomain.ParseTimeOfDay(strings.TrimSpace(text))
	if err != nil {
		return "I couldn't read that time. Send it as HH:MM, for example 10:00."
	}

	s.Draft.Schedule = schedule
	s.State = domain.SessionStateAwaitingConfirmation
	return fmt.Sprintf(
		"Here's the plan:\nQuestion: %s\nOptions: %s\nTime: %s\nSend /confirm to apply it, or /cancel to drop it.",
		s.Draft.Question, strings.Join(s.Draft.Options, " | "), s.Draft.Schedule,
	)
}

func handleConfirm(m *Manager, s *domain.Session, _ string) string {
	err := m.committer.ApplyPollUpdate(s.ChannelID, channelService.PollUpdate{
		Question: s.Draft.Question,
		Options:  s.Draft.Options,
		Schedule: s.Draft.Schedule,
	})
	if err == nil {
		s.State = domain.SessionStateCommitted
		return "Done. The poll is configured and the schedule is live."
	}

	if isValidationError(err) {
		// The draft passed the step checks but the registry rejected it;
		// restart the collection rather than leave a doomed draft around.
		s.Draft = domain.Draft{}
		s.State = domain.SessionStateAwaitingQuestion
		return fmt.Sprintf("That didn't work: %s. Let's start over — send me the poll question.", err)
	}

	// Persistence trouble: keep the draft so the admin can retry.
	return fmt.Sprintf("I couldn't save that (%s). Send /confirm to retry, or /cancel.", err)
}

func handleCancel(_ *Manager, s *domain.Session, _ string) string {
	s.State = domain.SessionStateCancelled
	return "Cancelled. The channel's poll settings are unchanged."
}

func isValidationError(err error) bool {
	return errors.Is(err, channelService.ErrEmptyQuestion) ||
		errors.Is(err, channelService.ErrTooFewOptions) ||
		errors.Is(err, channelService.ErrTooManyOptions) ||
		errors.Is(err, channelService.ErrDuplicateOptions)
}
