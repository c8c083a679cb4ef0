package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
	"github.com/samber/oops"
)

const channelsFile = "channels.json"

// FileStorage implements channel.Repository on top of a single JSON
// document. encoding/json writes map keys in sorted order, so saving and
// reloading an unchanged registry reproduces the file byte for byte.
type FileStorage struct {
	path string
	mu   sync.RWMutex
}

// NewFileStorage creates a channels document repository under configDir.
// A missing document is not an error: the bot starts with no managed
// channels and creates the file on first save.
func NewFileStorage(configDir string) (Repository, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, oops.With("config_dir", configDir, "context", "failed to create config directory").Wrap(err)
	}

	return &FileStorage{path: filepath.Join(configDir, channelsFile)}, nil
}

func (s *FileStorage) LoadChannels() (map[string]domain.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]domain.Channel{}, nil
		}
		return nil, oops.With("path", s.path, "context", "failed to read channels document").Wrap(err)
	}

	var channels map[string]domain.Channel
	if err := json.Unmarshal(data, &channels); err != nil {
		return nil, oops.With("path", s.path, "context", "failed to unmarshal channels document").Wrap(err)
	}
	if channels == nil {
		channels = map[string]domain.Channel{}
	}

	// The map key is authoritative for the channel id.
	for id, ch := range channels {
		if ch.ID == "" {
			ch.ID = id
			channels[id] = ch
		}
	}

	return channels, nil
}

func (s *FileStorage) SaveChannels(channels map[string]domain.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(channels, "", "  ")
	if err != nil {
		return oops.With("path", s.path, "context", "failed to marshal channels document").Wrap(err)
	}
	data = append(data, '\n')

	return os.WriteFile(s.path, data, 0644)
}
