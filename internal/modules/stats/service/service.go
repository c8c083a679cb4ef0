package service

import (
	"log/slog"
	"time"

	channelDomain "github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
	"github.com/reshetovitsme/channel-steward/internal/modules/stats/domain"
	"github.com/reshetovitsme/channel-steward/internal/modules/stats/repository"
)

// Service records successful deliveries and answers status queries.
// Recording is best effort: a failed write never blocks a delivery.
type Service struct {
	repo repository.Repository
}

// New creates a stats service.
func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// Record appends a delivery to the channel's history.
func (s *Service) Record(channelID string, feature channelDomain.Feature, summary string, subscribers int) {
	record := domain.DeliveryRecord{
		ChannelID:   channelID,
		Feature:     feature,
		Summary:     summary,
		SentAt:      time.Now(),
		Subscribers: subscribers,
	}
	if err := s.repo.Append(record); err != nil {
		slog.Error("Failed to record delivery", "channel_id", channelID, "feature", feature, "error", err)
	}
}

// Recent returns the channel's latest deliveries, newest last.
func (s *Service) Recent(channelID string, limit int) ([]domain.DeliveryRecord, error) {
	return s.repo.Recent(channelID, limit)
}

// Totals counts recorded deliveries per feature for a channel.
func (s *Service) Totals(channelID string) (map[channelDomain.Feature]int, error) {
	records, err := s.repo.Recent(channelID, 0)
	if err != nil {
		return nil, err
	}

	totals := make(map[channelDomain.Feature]int)
	for _, r := range records {
		totals[r.Feature]++
	}
	return totals, nil
}
