package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Notifications.LeadTime != time.Hour {
		t.Errorf("lead_time = %v, want 1h", cfg.Notifications.LeadTime)
	}
	if cfg.Notifications.SavedDelay != time.Second {
		t.Errorf("saved_delay = %v, want 1s", cfg.Notifications.SavedDelay)
	}
	if !cfg.Notifications.Enabled {
		t.Error("notifications should be enabled by default")
	}
	if strings.HasPrefix(cfg.Storage.Path, "~") || strings.HasPrefix(cfg.Audio.Dir, "~") {
		t.Errorf("paths were not expanded: %q %q", cfg.Storage.Path, cfg.Audio.Dir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
storage:
  path: ":memory:"
audio:
  input_device: "hw:1"
notifications:
  lead_time: 30m
  max_retries: 5
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Path != ":memory:" {
		t.Errorf("storage.path = %q", cfg.Storage.Path)
	}
	if cfg.Audio.InputDevice != "hw:1" {
		t.Errorf("audio.input_device = %q", cfg.Audio.InputDevice)
	}
	if cfg.Notifications.LeadTime != 30*time.Minute {
		t.Errorf("lead_time = %v, want 30m", cfg.Notifications.LeadTime)
	}
	if cfg.Notifications.MaxRetries != 5 {
		t.Errorf("max_retries = %d, want 5", cfg.Notifications.MaxRetries)
	}
	// Untouched keys keep their defaults
	if cfg.Notifications.SavedDelay != time.Second {
		t.Errorf("saved_delay = %v, want 1s", cfg.Notifications.SavedDelay)
	}
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Errorf("missing config file should not fail: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MURMUR_AUDIO__INPUT_DEVICE", "env-mic")
	t.Setenv("MURMUR_NOTIFICATIONS__ENABLED", "false")
	t.Setenv("MURMUR_NOTIFICATIONS__LEAD_TIME", "2h")
	t.Setenv("MURMUR_STORAGE__PATH", "postgres://me@localhost/murmur")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Audio.InputDevice != "env-mic" {
		t.Errorf("audio.input_device = %q", cfg.Audio.InputDevice)
	}
	if cfg.Notifications.Enabled {
		t.Error("notifications.enabled should be false")
	}
	if cfg.Notifications.LeadTime != 2*time.Hour {
		t.Errorf("lead_time = %v, want 2h", cfg.Notifications.LeadTime)
	}
	if cfg.Storage.Path != "postgres://me@localhost/murmur" {
		t.Errorf("connection string should be left alone, got %q", cfg.Storage.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty storage path", func(c *Config) { c.Storage.Path = " " }},
		{"empty ffmpeg path", func(c *Config) { c.Audio.FFmpegPath = "" }},
		{"empty ffplay path", func(c *Config) { c.Audio.FFplayPath = "" }},
		{"negative lead time", func(c *Config) { c.Notifications.LeadTime = -time.Minute }},
		{"negative saved delay", func(c *Config) { c.Notifications.SavedDelay = -time.Second }},
		{"zero poll interval", func(c *Config) { c.Notifications.PollInterval = 0 }},
		{"zero retries", func(c *Config) { c.Notifications.MaxRetries = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := map[string]string{
		"~/notes":     filepath.Join(home, "notes"),
		"~":           home,
		"/abs/path":   "/abs/path",
		"relative":    "relative",
		"~other/path": "~other/path",
		"":            "",
	}
	for in, want := range tests {
		if got := ExpandPath(in); got != want {
			t.Errorf("ExpandPath(%q) = %q, want %q", in, got, want)
		}
	}
}
