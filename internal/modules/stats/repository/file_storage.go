package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/reshetovitsme/channel-steward/internal/modules/stats/domain"
	"github.com/samber/oops"
)

// Each channel's history is capped so the files stay small; the feed and
// status views only ever need the recent tail.
const historyMaxRecords = 200

// FileStorage implements stats.Repository with one JSON document per
// channel under basePath/deliveries.
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates the delivery history repository.
func NewFileStorage(basePath string) (Repository, error) {
	dir := filepath.Join(basePath, "deliveries")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create deliveries directory").Wrap(err)
	}

	return &FileStorage{basePath: dir}, nil
}

func (s *FileStorage) Append(record domain.DeliveryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readLocked(record.ChannelID)
	if err != nil {
		return err
	}

	records = append(records, record)
	if len(records) > historyMaxRecords {
		records = records[len(records)-historyMaxRecords:]
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return oops.With("channel_id", record.ChannelID, "context", "failed to marshal delivery history").Wrap(err)
	}

	return os.WriteFile(s.pathFor(record.ChannelID), data, 0644)
}

func (s *FileStorage) Recent(channelID string, limit int) ([]domain.DeliveryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.readLocked(channelID)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

func (s *FileStorage) pathFor(channelID string) string {
	return filepath.Join(s.basePath, channelID+".json")
}

func (s *FileStorage) readLocked(channelID string) ([]domain.DeliveryRecord, error) {
	data, err := os.ReadFile(s.pathFor(channelID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, oops.With("channel_id", channelID, "context", "failed to read delivery history").Wrap(err)
	}

	var records []domain.DeliveryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, oops.With("channel_id", channelID, "context", "failed to unmarshal delivery history").Wrap(err)
	}
	return records, nil
}
