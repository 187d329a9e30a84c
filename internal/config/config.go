package config

import (
	"errors"
	"fmt"
	"os"

	"habitpal/internal/reminder"
	"habitpal/pkg/config"
	"habitpal/pkg/mq"
)

type Config struct {
	Store    config.StoreConfig    `yaml:"store"`
	Reminder config.ReminderConfig `yaml:"reminder"`
	Server   config.ServerConfig   `yaml:"server"`
	MQ       config.MQConfig       `yaml:"mq"`
	Log      config.LogConfig      `yaml:"log"`
}

// Default is used when no config directory is present.
func Default() *Config {
	return &Config{
		Store: config.StoreConfig{
			HabitsFile:  "habits.txt",
			ProfileFile: "user.txt",
			ReportFile:  "habit_report.csv",
		},
		Reminder: config.ReminderConfig{
			Enabled:       true,
			Snooze:        reminder.DefaultSnooze,
			DailyInterval: reminder.DefaultDailyInterval,
		},
		Server: config.ServerConfig{
			Port: "127.0.0.1:8085",
		},
		MQ: config.MQConfig{
			Exchange: mq.DefaultExchange,
		},
		Log: config.LogConfig{
			Level: "info",
		},
	}
}

// Load reads CONFIG_DIR/base.yaml plus the CONFIG_ENV overlay on top of
// Default, then applies environment overrides. fellBack reports that no
// base.yaml was found and only defaults and env were used.
func Load() (cfg *Config, fellBack bool, err error) {
	cfg = Default()

	cfgMap, err := config.LoadConfig(config.GetConfigEnv(), os.Getenv("CONFIG_DIR"))
	switch {
	case errors.Is(err, config.ErrNoBaseConfig):
		fellBack = true
	case err != nil:
		return nil, false, err
	default:
		if err := config.Decode(cfgMap, cfg); err != nil {
			return nil, false, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	config.OverrideStoreFromEnv(&cfg.Store)
	config.OverrideReminderFromEnv(&cfg.Reminder)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideLogFromEnv(&cfg.Log)

	if cfg.MQ.Exchange == "" {
		cfg.MQ.Exchange = mq.DefaultExchange
	}
	return cfg, fellBack, nil
}
