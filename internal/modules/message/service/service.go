package service

import (
	"strings"

	"github.com/reshetovitsme/channel-steward/internal/modules/message/domain"
	"github.com/reshetovitsme/channel-steward/internal/modules/message/repository"
	"github.com/samber/oops"
)

// Service holds the shared messages document in memory. The document is
// loaded once at startup; a broken document is a fatal configuration error.
type Service struct {
	repo     repository.Repository
	defaults domain.Defaults
}

// New loads the shared messages document.
func New(repo repository.Repository) (*Service, error) {
	defaults, err := repo.LoadDefaults()
	if err != nil {
		return nil, oops.With("context", "failed to load messages document").Wrap(err)
	}
	return &Service{repo: repo, defaults: defaults}, nil
}

// DefaultPool returns the shared daily message pool.
func (s *Service) DefaultPool() []string {
	return append([]string(nil), s.defaults.DailyMessages...)
}

// WelcomeTemplate returns the shared welcome template.
func (s *Service) WelcomeTemplate() string {
	return s.defaults.WelcomeMessage
}

// FormatWelcome substitutes the single {username} placeholder. Usernames
// are displayed with a leading @; an empty name gets a neutral fallback.
func FormatWelcome(template, username string) string {
	switch {
	case username == "":
		username = "new subscriber"
	case !strings.HasPrefix(username, "@"):
		username = "@" + username
	}
	return strings.ReplaceAll(template, "{username}", username)
}
