package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/julianstephens/murmur/internal/constants"
)

type Config struct {
	Storage       StorageConfig      `koanf:"storage"`
	Log           LogConfig          `koanf:"log"`
	Audio         AudioConfig        `koanf:"audio"`
	Notifications NotificationConfig `koanf:"notifications"`
}

type StorageConfig struct {
	// Path is a SQLite file, ":memory:" or a PostgreSQL connection string
	Path string `koanf:"path"`
}

type LogConfig struct {
	Debug bool `koanf:"debug"`
}

type AudioConfig struct {
	Dir            string `koanf:"dir"`
	FFmpegPath     string `koanf:"ffmpeg_path"`
	FFplayPath     string `koanf:"ffplay_path"`
	InputFormat    string `koanf:"input_format"`
	InputDevice    string `koanf:"input_device"`
	RemoveOnDelete bool   `koanf:"remove_on_delete"`
}

type NotificationConfig struct {
	Enabled        bool          `koanf:"enabled"`
	LeadTime       time.Duration `koanf:"lead_time"`
	SavedDelay     time.Duration `koanf:"saved_delay"`
	DurationMs     int           `koanf:"duration_ms"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryDelay     time.Duration `koanf:"retry_delay"`
	PollInterval   time.Duration `koanf:"poll_interval"`
	TrayIdentifier string        `koanf:"tray_identifier"`
}

// Load layers defaults, the YAML file at configPath (if it exists) and
// MURMUR_ environment variables. A double underscore in a variable name
// separates nesting levels: MURMUR_AUDIO__INPUT_DEVICE sets audio.input_device.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = ExpandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(constants.EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if !isConnString(cfg.Storage.Path) {
		cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
	}
	cfg.Audio.Dir = ExpandPath(cfg.Audio.Dir)

	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, constants.EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Audio.Dir == "" {
		return fmt.Errorf("audio.dir is required")
	}
	if c.Audio.FFmpegPath == "" {
		return fmt.Errorf("audio.ffmpeg_path is required")
	}
	if c.Audio.FFplayPath == "" {
		return fmt.Errorf("audio.ffplay_path is required")
	}

	durations := map[string]time.Duration{
		"notifications.lead_time":     c.Notifications.LeadTime,
		"notifications.saved_delay":   c.Notifications.SavedDelay,
		"notifications.retry_delay":   c.Notifications.RetryDelay,
		"notifications.poll_interval": c.Notifications.PollInterval,
	}
	for key, d := range durations {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	}
	if c.Notifications.PollInterval == 0 {
		return fmt.Errorf("notifications.poll_interval must be positive")
	}
	if c.Notifications.MaxRetries < 1 {
		return fmt.Errorf("notifications.max_retries must be at least 1")
	}
	if c.Notifications.DurationMs < 0 {
		return fmt.Errorf("notifications.duration_ms must not be negative")
	}

	return nil
}

// ExpandPath replaces a leading "~/" with the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

func isConnString(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}
