package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"habitpal/internal/config"
	"habitpal/internal/reminder"
	"habitpal/internal/repository"
	"habitpal/internal/service"
	"habitpal/pkg/logger"
)

type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	scheduler *reminder.Scheduler
	svc       *service.HabitService
}

// bootstrap loads config and builds the process logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, fellBack, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if fellBack {
		log.Warn("No base.yaml found, using built-in defaults")
	}
	return cfg, log, nil
}

// newApp starts the habit service. With reminders off the scheduler arms
// nothing, which is what one-shot commands want.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, reminders bool, notifier reminder.Notifier) (*app, error) {
	scheduler := reminder.NewScheduler(reminder.Options{
		Notifier:      notifier,
		Snooze:        cfg.Reminder.Snooze,
		DailyInterval: cfg.Reminder.DailyInterval,
		Disabled:      !reminders || !cfg.Reminder.Enabled,
	}, log)

	svc := service.NewHabitService(
		repository.NewHabitFileRepository(cfg.Store.HabitsFile, log),
		repository.NewProfileFileRepository(cfg.Store.ProfileFile, log),
		scheduler,
		notifier,
		log,
	)
	if err := svc.Start(ctx); err != nil {
		scheduler.Close()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    log,
		scheduler: scheduler,
		svc:       svc,
	}, nil
}

// openApp is the setup shared by the one-shot commands.
func openApp(ctx context.Context) (*app, error) {
	cfg, log, err := bootstrap()
	if err != nil {
		return nil, err
	}
	a, err := newApp(ctx, cfg, log, false, noopNotifier{})
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	a.scheduler.Close()
	_ = a.logger.Sync()
}

type noopNotifier struct{}

func (noopNotifier) ReminderFired(context.Context, reminder.Prompt)        {}
func (noopNotifier) ReminderResolved(context.Context, reminder.Resolution) {}
