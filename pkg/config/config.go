package config

import (
	"os"
	"strconv"
	"time"
)

// StoreConfig holds the flat files the app reads and writes.
type StoreConfig struct {
	HabitsFile  string `yaml:"habits_file"`
	ProfileFile string `yaml:"profile_file"`
	ReportFile  string `yaml:"report_file"`
}

// ReminderConfig tunes the reminder scheduler.
type ReminderConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Snooze        time.Duration `yaml:"snooze"`
	DailyInterval time.Duration `yaml:"daily_interval"`
}

// MQConfig enables broker publishing when URL is set.
type MQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// ServerConfig is the local HTTP API.
type ServerConfig struct {
	Port        string `yaml:"port"`
	TokenSecret string `yaml:"token_secret"`
}

// LogConfig selects the zap preset and level.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func OverrideStoreFromEnv(cfg *StoreConfig) {
	if path := os.Getenv("HABITPAL_HABITS_FILE"); path != "" {
		cfg.HabitsFile = path
	}
	if path := os.Getenv("HABITPAL_PROFILE_FILE"); path != "" {
		cfg.ProfileFile = path
	}
	if path := os.Getenv("HABITPAL_REPORT_FILE"); path != "" {
		cfg.ReportFile = path
	}
}

func OverrideReminderFromEnv(cfg *ReminderConfig) {
	if enabled := os.Getenv("HABITPAL_REMINDERS"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = b
		}
	}
	if snooze := os.Getenv("HABITPAL_SNOOZE"); snooze != "" {
		if d, err := time.ParseDuration(snooze); err == nil && d > 0 {
			cfg.Snooze = d
		}
	}
}

func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
	if secret := os.Getenv("HABITPAL_TOKEN_SECRET"); secret != "" {
		cfg.TokenSecret = secret
	}
}

func OverrideLogFromEnv(cfg *LogConfig) {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = level
	}
}
