package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	channelDomain "github.com/reshetovitsme/channel-steward/internal/modules/channel/domain"
	"github.com/reshetovitsme/channel-steward/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	TelegramBotToken string  `koanf:"telegram_bot_token"`
	TelegramAPIURL   string  `koanf:"telegram_api_url"`
	ConfigDir        string  `koanf:"config_dir"`
	StoragePath      string  `koanf:"storage_path"`
	HTTPPort         string  `koanf:"http_port"`
	Timezone         string  `koanf:"timezone"`
	LogLevel         string  `koanf:"log_level"`
	AdminUsers       []int64 `koanf:"admin_users"`

	DefaultDailyMessageTime string `koanf:"default_daily_message_time"`
	DefaultPollTime         string `koanf:"default_poll_time"`
	DefaultPollThreshold    int    `koanf:"default_poll_threshold"`

	DialogueTimeoutMinutes int `koanf:"dialogue_timeout_minutes"`
	DispatchWorkers        int `koanf:"dispatch_workers"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	// Use lo.Find to find the first existing config file
	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Load environment variables (they override config file values)
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	// Set defaults
	if !k.Exists("telegram_api_url") {
		k.Set("telegram_api_url", "https://api.telegram.org")
	}
	if !k.Exists("config_dir") {
		k.Set("config_dir", "./config")
	}
	if !k.Exists("storage_path") {
		k.Set("storage_path", "./data")
	}
	if !k.Exists("http_port") {
		k.Set("http_port", "8080")
	}
	if !k.Exists("timezone") {
		k.Set("timezone", "UTC")
	}
	if !k.Exists("log_level") {
		k.Set("log_level", "info")
	}
	if !k.Exists("default_daily_message_time") {
		k.Set("default_daily_message_time", "09:00")
	}
	if !k.Exists("default_poll_time") {
		k.Set("default_poll_time", "10:00")
	}
	if !k.Exists("default_poll_threshold") {
		k.Set("default_poll_threshold", 500)
	}
	if !k.Exists("dialogue_timeout_minutes") {
		k.Set("dialogue_timeout_minutes", 10)
	}
	if !k.Exists("dispatch_workers") {
		k.Set("dispatch_workers", 2)
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	// Parse AdminUsers from comma-separated string if it's a string
	if adminUsers := k.Get("admin_users"); adminUsers != nil {
		switch v := adminUsers.(type) {
		case string:
			cfg.AdminUsers = ParseAdminUsers(v)
		case []interface{}:
			cfg.AdminUsers = lo.FilterMap(v, func(item interface{}, _ int) (int64, bool) {
				switch val := item.(type) {
				case int64:
					return val, true
				case int:
					return int64(val), true
				case float64:
					return int64(val), true
				default:
					return 0, false
				}
			})
		}
	}

	// Validate required fields
	if cfg.TelegramBotToken == "" {
		return nil, errors.ErrMissingBotToken
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if _, err := cfg.DefaultDailySchedule(); err != nil {
		return nil, err
	}
	if _, err := cfg.DefaultPollSchedule(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ParseAdminUsers parses comma-separated user IDs string into []int64
func ParseAdminUsers(s string) []int64 {
	if s == "" {
		return []int64{}
	}
	parts := strings.Split(s, ",")
	return lo.FilterMap(parts, func(part string, _ int) (int64, bool) {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, false
		}
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
			return id, true
		}
		return 0, false
	})
}

// IsAdmin reports whether the user may manage the bot.
func (c *Config) IsAdmin(userID int64) bool {
	return lo.Contains(c.AdminUsers, userID)
}

// Location resolves the configured timezone. All schedule times are
// interpreted in it.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, oops.With("timezone", c.Timezone).Wrap(err)
	}
	return loc, nil
}

// DefaultDailySchedule is the time of day new channels post their daily
// message.
func (c *Config) DefaultDailySchedule() (channelDomain.TimeOfDay, error) {
	return channelDomain.ParseTimeOfDay(c.DefaultDailyMessageTime)
}

// DefaultPollSchedule is the time of day new channels run their poll.
func (c *Config) DefaultPollSchedule() (channelDomain.TimeOfDay, error) {
	return channelDomain.ParseTimeOfDay(c.DefaultPollTime)
}

// DialogueTimeout is how long an admin configuration session may sit
// idle before it is cancelled.
func (c *Config) DialogueTimeout() time.Duration {
	return time.Duration(c.DialogueTimeoutMinutes) * time.Minute
}

// SlogLevel maps the configured log level onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
