package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/reshetovitsme/channel-steward/internal/modules/message/domain"
	"github.com/samber/oops"
)

const messagesFile = "messages.json"

// FileStorage implements message.Repository using a single JSON document.
type FileStorage struct {
	path string
	mu   sync.RWMutex
}

// NewFileStorage creates the messages document repository under configDir.
// A missing document is seeded with defaults on first save.
func NewFileStorage(configDir string) (Repository, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, oops.With("config_dir", configDir, "context", "failed to create config directory").Wrap(err)
	}

	return &FileStorage{path: filepath.Join(configDir, messagesFile)}, nil
}

func (s *FileStorage) LoadDefaults() (domain.Defaults, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Defaults{WelcomeMessage: domain.FallbackWelcome}, nil
		}
		return domain.Defaults{}, oops.With("path", s.path, "context", "failed to read messages document").Wrap(err)
	}

	var defaults domain.Defaults
	if err := json.Unmarshal(data, &defaults); err != nil {
		return domain.Defaults{}, oops.With("path", s.path, "context", "failed to unmarshal messages document").Wrap(err)
	}
	if defaults.WelcomeMessage == "" {
		defaults.WelcomeMessage = domain.FallbackWelcome
	}

	return defaults, nil
}

func (s *FileStorage) SaveDefaults(defaults domain.Defaults) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(defaults, "", "  ")
	if err != nil {
		return oops.With("path", s.path, "context", "failed to marshal messages document").Wrap(err)
	}
	data = append(data, '\n')

	return os.WriteFile(s.path, data, 0644)
}
