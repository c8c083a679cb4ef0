package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	channelService "github.com/reshetovitsme/channel-steward/internal/modules/channel/service"
	statsService "github.com/reshetovitsme/channel-steward/internal/modules/stats/service"
	"github.com/reshetovitsme/channel-steward/internal/shared/config"
	sloghttp "github.com/samber/slog-http"
)

// Server exposes channel status and delivery feeds over HTTP
type Server struct {
	cfg      *config.Config
	registry *channelService.Registry
	stats    *statsService.Service
	logger   *slog.Logger
}

// New creates a new HTTP server
func New(cfg *config.Config, registry *channelService.Registry, stats *statsService.Service) *Server {
	return &Server{
		cfg:      cfg,
		registry: registry,
		stats:    stats,
		logger:   slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /feed/{channelID}", s.handleDeliveryFeed)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)

	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("Status server starting", "addr", addr)

	// Use slog-http middleware with recovery
	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

type channelStatus struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	WelcomeEnabled      bool           `json:"welcome_enabled"`
	DailyMessageEnabled bool           `json:"daily_message_enabled"`
	DailyMessageTime    string         `json:"daily_message_time"`
	PollEnabled         bool           `json:"poll_enabled"`
	PollTime            string         `json:"poll_time"`
	PollThreshold       int            `json:"poll_threshold"`
	Deliveries          map[string]int `json:"deliveries"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	channels := s.registry.List()

	statuses := make([]channelStatus, 0, len(channels))
	for _, ch := range channels {
		status := channelStatus{
			ID:                  ch.ID,
			Title:               ch.Title,
			WelcomeEnabled:      ch.WelcomeEnabled,
			DailyMessageEnabled: ch.DailyMessageEnabled,
			DailyMessageTime:    ch.DailyMessageSchedule.String(),
			PollEnabled:         ch.PollEnabled,
			PollTime:            ch.PollSchedule.String(),
			PollThreshold:       ch.PollSubscriberThreshold,
			Deliveries:          map[string]int{},
		}
		if totals, err := s.stats.Totals(ch.ID); err == nil {
			for feature, count := range totals {
				status.Deliveries[feature.String()] = count
			}
		}
		statuses = append(statuses, status)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{"channels": statuses}); err != nil {
		s.logger.Error("Error encoding status", "error", err)
	}
}

func (s *Server) handleDeliveryFeed(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channelID")
	if channelID == "" {
		http.Error(w, "Channel ID is required", http.StatusBadRequest)
		return
	}

	// Get base URL from request
	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed, err := s.generateFeed(channelID, baseURL)
	if err != nil {
		s.logger.Error("Error generating feed", "channel_id", channelID, "error", err)
		http.Error(w, "Failed to generate feed", http.StatusNotFound)
		return
	}

	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300") // Cache for 5 minutes
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

// generateFeed renders the channel's recent delivery log as RSS.
func (s *Server) generateFeed(channelID string, baseURL string) (*feeds.Feed, error) {
	channel, err := s.registry.Get(channelID)
	if err != nil {
		return nil, err
	}

	records, err := s.stats.Recent(channelID, 50)
	if err != nil {
		return nil, err
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s - Delivery Log", channel.Title),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/feed/%s", baseURL, channel.ID)},
		Description: fmt.Sprintf("Automated deliveries for Telegram channel: %s", channel.Title),
		Created:     time.Now(),
	}

	items := make([]*feeds.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, &feeds.Item{
			Title:       fmt.Sprintf("%s: %s", rec.Feature, truncate(rec.Summary, 100)),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/feed/%s", baseURL, channel.ID)},
			Description: rec.Summary,
			Created:     rec.SentAt,
			Id:          fmt.Sprintf("%s-%s-%d", rec.ChannelID, rec.Feature, rec.SentAt.Unix()),
		})
	}

	feed.Items = items
	return feed, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
