// Package config handles configuration loading and validation for nudge.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Alarm    AlarmConfig    `yaml:"alarm"`
	Notify   NotifyConfig   `yaml:"notify"`
	Sound    SoundConfig    `yaml:"sound"`
	Database DatabaseConfig `yaml:"database"`
	TUI      TUIConfig      `yaml:"tui"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// AlarmConfig controls the reminder scan.
type AlarmConfig struct {
	Interval time.Duration `yaml:"interval"` // scan period
	Title    string        `yaml:"title"`    // notification title
	Timeout  time.Duration `yaml:"timeout"`  // per side-effect deadline
}

// NotifyConfig controls desktop notifications.
type NotifyConfig struct {
	Enabled *bool  `yaml:"enabled"` // nil means enabled
	Command string `yaml:"command"` // optional shell template, receives .Title and .Body
}

// SoundConfig controls the reminder sound.
type SoundConfig struct {
	Enabled *bool  `yaml:"enabled"` // nil means enabled
	File    string `yaml:"file"`    // audio file; empty rings the terminal bell
	Player  string `yaml:"player"`  // audio player binary; empty probes paplay/aplay/afplay
}

// DatabaseConfig holds SQLite connection pool settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// TUIConfig holds interactive list settings.
type TUIConfig struct {
	DateFormat string `yaml:"date_format"` // Go time layout for due dates
	Theme      string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Alarm: AlarmConfig{
			Interval: 5 * time.Second,
			Title:    "To-Do List Reminder",
			Timeout:  30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		TUI: TUIConfig{
			DateFormat: "Mon, Jan 2 15:04",
			Theme:      "tokyo-night",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Alarm.Interval == 0 {
		c.Alarm.Interval = defaults.Alarm.Interval
	}
	if c.Alarm.Title == "" {
		c.Alarm.Title = defaults.Alarm.Title
	}
	if c.Alarm.Timeout == 0 {
		c.Alarm.Timeout = defaults.Alarm.Timeout
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.TUI.DateFormat == "" {
		c.TUI.DateFormat = defaults.TUI.DateFormat
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// NotificationsEnabled reports whether desktop notifications may be sent.
func (c *Config) NotificationsEnabled() bool {
	return c.Notify.Enabled == nil || *c.Notify.Enabled
}

// SoundEnabled reports whether the reminder sound plays.
func (c *Config) SoundEnabled() bool {
	return c.Sound.Enabled == nil || *c.Sound.Enabled
}
