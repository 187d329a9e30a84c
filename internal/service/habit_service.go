package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"habitpal/internal/model"
	"habitpal/internal/reminder"
)

type HabitStore interface {
	Load(ctx context.Context) ([]*model.Habit, error)
	Save(ctx context.Context, habits []*model.Habit) error
}

type ProfileStore interface {
	Load(ctx context.Context) (*model.Profile, error)
	Save(ctx context.Context, p model.Profile) error
}

type ReminderScheduler interface {
	Arm(h model.Habit) error
	Disarm(habitID string) error
	RescheduleAll(habits []model.Habit) error
	Respond(promptID string, decision reminder.Decision) (reminder.Prompt, error)
	Snapshot() []reminder.Status
	OpenPrompts() []reminder.Prompt
}

// AddHabitInput is what the presentation layer supplies for a new habit.
type AddHabitInput struct {
	Name         string `json:"name"`
	Frequency    string `json:"frequency"`
	TotalDays    int    `json:"total_days"`
	ReminderTime string `json:"reminder_time"`
}

// HabitService owns the habit list. Every mutation is written through to
// the store and every add or delete adjusts the reminder scheduler. Calls
// are serialised by mu, so reminder decisions arriving from other
// goroutines are safe.
type HabitService struct {
	mu     sync.Mutex
	habits []*model.Habit

	store     HabitStore
	profiles  ProfileStore
	scheduler ReminderScheduler
	notifier  reminder.Notifier
	now       func() time.Time
	logger    *zap.Logger
}

func NewHabitService(
	store HabitStore,
	profiles ProfileStore,
	scheduler ReminderScheduler,
	notifier reminder.Notifier,
	logger *zap.Logger,
) *HabitService {
	return &HabitService{
		habits:    make([]*model.Habit, 0),
		store:     store,
		profiles:  profiles,
		scheduler: scheduler,
		notifier:  notifier,
		now:       time.Now,
		logger:    logger,
	}
}

// Start loads the habit file and arms every reminder.
func (s *HabitService) Start(ctx context.Context) error {
	habits, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	s.mu.Lock()
	s.habits = habits
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("Habit service started", zap.Int("habits", len(snapshot)))

	if err := s.scheduler.RescheduleAll(snapshot); err != nil {
		s.logger.Warn("Failed to arm reminders", zap.Error(err))
	}
	return nil
}

// ListHabits returns copies of the habits in list order.
func (s *HabitService) ListHabits() []model.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *HabitService) AddHabit(ctx context.Context, in AddHabitInput) (model.Habit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Habit{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !storable(name) {
		return model.Habit{}, fmt.Errorf("%w: name must not contain commas or line breaks", ErrValidation)
	}
	freq, err := model.ParseFrequency(in.Frequency)
	if err != nil {
		return model.Habit{}, fmt.Errorf("%w: frequency must be Daily or Weekly", ErrValidation)
	}
	if in.TotalDays <= 0 {
		return model.Habit{}, fmt.Errorf("%w: total days must be positive", ErrValidation)
	}
	if !storable(in.ReminderTime) {
		return model.Habit{}, fmt.Errorf("%w: reminder time must not contain commas or line breaks", ErrValidation)
	}

	h := model.NewHabit(name, freq, in.TotalDays, in.ReminderTime)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.habits = append(s.habits, h)
	persistErr := s.persistLocked(ctx)

	if err := s.scheduler.Arm(*h); err != nil {
		s.logger.Warn("Failed to arm reminder", zap.String("habit_id", h.ID), zap.Error(err))
	}

	s.logger.Info("Habit added",
		zap.String("habit_id", h.ID),
		zap.String("habit", h.Name),
		zap.String("reminder_time", h.ReminderTime),
	)
	return *h, persistErr
}

// DeleteHabit removes the habit at index. An index out of range is a no-op.
func (s *HabitService) DeleteHabit(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.habits) {
		s.logger.Debug("Ignoring delete of missing habit", zap.Int("index", index))
		return nil
	}

	h := s.habits[index]
	s.habits = append(s.habits[:index], s.habits[index+1:]...)

	if err := s.scheduler.Disarm(h.ID); err != nil {
		s.logger.Warn("Failed to disarm reminder", zap.String("habit_id", h.ID), zap.Error(err))
	}

	s.logger.Info("Habit deleted", zap.String("habit_id", h.ID), zap.String("habit", h.Name))
	return s.persistLocked(ctx)
}

// MarkComplete counts one more completed day for the habit at index.
func (s *HabitService) MarkComplete(ctx context.Context, index int) (model.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.habits) {
		return model.Habit{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return s.markCompleteLocked(ctx, s.habits[index])
}

// MarkCompleteByID is the form used when answering a reminder.
func (s *HabitService) MarkCompleteByID(ctx context.Context, habitID string) (model.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.habits {
		if h.ID == habitID {
			return s.markCompleteLocked(ctx, h)
		}
	}
	return model.Habit{}, fmt.Errorf("%w: %s", ErrHabitNotFound, habitID)
}

func (s *HabitService) markCompleteLocked(ctx context.Context, h *model.Habit) (model.Habit, error) {
	h.MarkComplete()

	s.logger.Info("Habit marked complete",
		zap.String("habit_id", h.ID),
		zap.Int("completed_days", h.CompletedDays),
		zap.Int("total_days", h.TotalDays),
	)
	return *h, s.persistLocked(ctx)
}

// RescheduleAllReminders rebuilds every reminder from the current list.
func (s *HabitService) RescheduleAllReminders(ctx context.Context) error {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.scheduler.RescheduleAll(snapshot)
}

// RespondToReminder applies the user's answer to an open prompt. For
// DecisionMarkDone the habit is completed through MarkCompleteByID.
func (s *HabitService) RespondToReminder(ctx context.Context, promptID string, decision reminder.Decision) (reminder.Resolution, error) {
	prompt, err := s.scheduler.Respond(promptID, decision)
	if err != nil {
		return reminder.Resolution{}, err
	}

	res := reminder.Resolution{
		Prompt:   prompt,
		Decision: decision,
	}

	var applyErr error
	if decision == reminder.DecisionMarkDone {
		if _, applyErr = s.MarkCompleteByID(ctx, prompt.HabitID); applyErr != nil {
			res.Err = applyErr.Error()
		}
	}
	res.ResolvedAt = s.now()

	s.notifier.ReminderResolved(ctx, res)
	return res, applyErr
}

func (s *HabitService) ReminderStatus() []reminder.Status {
	return s.scheduler.Snapshot()
}

func (s *HabitService) OpenPrompts() []reminder.Prompt {
	return s.scheduler.OpenPrompts()
}

// LoadProfile returns ErrProfileNotFound when no profile was ever saved.
func (s *HabitService) LoadProfile(ctx context.Context) (*model.Profile, error) {
	return s.profiles.Load(ctx)
}

func (s *HabitService) SaveProfile(ctx context.Context, name, email, gender string) (model.Profile, error) {
	p := model.Profile{
		Name:   strings.TrimSpace(name),
		Email:  strings.TrimSpace(email),
		Gender: strings.TrimSpace(gender),
	}
	if p.Name == "" {
		return model.Profile{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !storable(p.Name) || !storable(p.Email) || !storable(p.Gender) {
		return model.Profile{}, fmt.Errorf("%w: profile fields must not contain commas or line breaks", ErrValidation)
	}

	if err := s.profiles.Save(ctx, p); err != nil {
		return p, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.logger.Info("Profile saved", zap.String("name", p.Name))
	return p, nil
}

// storable reports whether a text field survives the line format unchanged.
func storable(field string) bool {
	return !strings.ContainsAny(field, ",\r\n")
}

func (s *HabitService) persistLocked(ctx context.Context) error {
	if err := s.store.Save(ctx, s.habits); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *HabitService) snapshotLocked() []model.Habit {
	out := make([]model.Habit, len(s.habits))
	for i, h := range s.habits {
		out[i] = *h
	}
	return out
}
