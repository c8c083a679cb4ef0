package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	channelDomain "github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
)

func TestParseAdminUsers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []int64
	}{
		{"", []int64{}},
		{"123", []int64{123}},
		{"123,456", []int64{123, 456}},
		{" 123 , 456 ", []int64{123, 456}},
		{"123,,abc,456", []int64{123, 456}},
	}

	for _, tt := range tests {
		if got := ParseAdminUsers(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseAdminUsers(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	t.Parallel()

	cfg := &Config{AdminUsers: []int64{1, 2}}
	if !cfg.IsAdmin(1) {
		t.Error("user 1 should be admin")
	}
	if cfg.IsAdmin(3) {
		t.Error("user 3 should not be admin")
	}
}

func TestScheduleDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Timezone:                "Europe/Moscow",
		DefaultDailyMessageTime: "09:00",
		DefaultPollTime:         "10:00",
		DialogueTimeoutMinutes:  10,
	}

	if _, err := cfg.Location(); err != nil {
		t.Fatalf("Location: %v", err)
	}
	daily, err := cfg.DefaultDailySchedule()
	if err != nil || daily != (channelDomain.TimeOfDay{Hour: 9}) {
		t.Errorf("DefaultDailySchedule = %v, %v", daily, err)
	}
	poll, err := cfg.DefaultPollSchedule()
	if err != nil || poll != (channelDomain.TimeOfDay{Hour: 10}) {
		t.Errorf("DefaultPollSchedule = %v, %v", poll, err)
	}
	if cfg.DialogueTimeout() != 10*time.Minute {
		t.Errorf("DialogueTimeout = %v", cfg.DialogueTimeout())
	}
}

func TestSlogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.in}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
