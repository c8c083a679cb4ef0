package repository

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
)

func testChannels() map[string]domain.Channel {
	return map[string]domain.Channel{
		"-1001": {
			ID:                   "-1001",
			Title:                "Main",
			WelcomeEnabled:       true,
			WelcomeTemplate:      "Welcome, {username}!",
			DailyMessageEnabled:  true,
			MessagePool:          []string{"good morning", "have a nice day"},
			RotationCursor:       1,
			DailyMessageSchedule: domain.TimeOfDay{Hour: 9},
			PollEnabled:          true,
			PollSchedule:         domain.TimeOfDay{Hour: 10},
			PollQuestion:         "How are you today?",
			PollOptions:          []string{"Great", "Tired"},

			PollSubscriberThreshold: 500,
		},
		"-1002": {
			ID:                   "-1002",
			Title:                "Secondary",
			DailyMessageEnabled:  true,
			DailyMessageSchedule: domain.TimeOfDay{Hour: 8, Minute: 30},
		},
	}
}

func TestChannelsDocumentRoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}

	if err := repo.SaveChannels(testChannels()); err != nil {
		t.Fatalf("SaveChannels: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(dir, "channels.json"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}

	loaded, err := repo.LoadChannels()
	if err != nil {
		t.Fatalf("LoadChannels: %v", err)
	}
	if err := repo.SaveChannels(loaded); err != nil {
		t.Fatalf("SaveChannels after reload: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(dir, "channels.json"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("save/load/save is not byte-for-byte stable:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestLoadChannelsMissingFile(t *testing.T) {
	repo, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}

	channels, err := repo.LoadChannels()
	if err != nil {
		t.Fatalf("LoadChannels: %v", err)
	}
	if len(channels) != 0 {
		t.Fatalf("expected empty map, got %d entries", len(channels))
	}
}

func TestLoadChannelsFillsID(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}

	doc := []byte(`{"-1003": {"title": "No explicit id", "daily_message_schedule": "09:00", "poll_schedule": "10:00"}}`)
	if err := os.WriteFile(filepath.Join(dir, "channels.json"), doc, 0644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	channels, err := repo.LoadChannels()
	if err != nil {
		t.Fatalf("LoadChannels: %v", err)
	}
	if channels["-1003"].ID != "-1003" {
		t.Fatalf("expected map key to backfill channel id, got %q", channels["-1003"].ID)
	}
}

func TestLoadChannelsInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "channels.json"), []byte("{broken"), 0644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	if _, err := repo.LoadChannels(); err == nil {
		t.Fatal("expected error for invalid document")
	}
}
