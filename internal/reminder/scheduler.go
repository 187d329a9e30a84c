// Package reminder arms one daily reminder per habit and drives the
// fire, snooze and re-arm cycle.
//
// All state lives on a single event loop goroutine. Public methods are
// requests on the loop's queue and return once the loop has applied them.
// Timer callbacks only enqueue a fire event tagged with a generation number,
// so a fire that races with Disarm or a re-Arm is recognised as stale and
// dropped.
package reminder

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"habitpal/internal/clock"
	"habitpal/internal/model"
	"habitpal/pkg/metrics"
)

const (
	DefaultSnooze        = 10 * time.Minute
	DefaultDailyInterval = 24 * time.Hour

	eventQueueSize  = 64
	outboxQueueSize = 256
)

type Options struct {
	Clock         clock.Clock
	Notifier      Notifier
	Snooze        time.Duration
	DailyInterval time.Duration
	// Disabled turns Arm into a no-op. Respond and Snapshot still work.
	Disabled bool
}

type entry struct {
	habitID   string
	name      string
	frequency model.Frequency

	state State

	daily    clock.Timer
	dailyGen uint64
	nextFire time.Time

	snooze      clock.Timer
	snoozeGen   uint64
	snoozeUntil time.Time

	prompt *Prompt
}

type Scheduler struct {
	clock    clock.Clock
	notifier Notifier
	logger   *zap.Logger

	snoozeDelay time.Duration
	interval    time.Duration
	disabled    bool

	events    chan func()
	closed    chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	// notifier calls, delivered in the order the loop produced them
	outbox    chan func()
	delivered chan struct{}

	// owned by the loop goroutine
	entries map[string]*entry
	gen     uint64
}

// NewScheduler starts the event loop. Call Close to stop it.
func NewScheduler(opts Options, logger *zap.Logger) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Snooze <= 0 {
		opts.Snooze = DefaultSnooze
	}
	if opts.DailyInterval <= 0 {
		opts.DailyInterval = DefaultDailyInterval
	}

	s := &Scheduler{
		clock:       opts.Clock,
		notifier:    opts.Notifier,
		logger:      logger,
		snoozeDelay: opts.Snooze,
		interval:    opts.DailyInterval,
		disabled:    opts.Disabled,
		events:      make(chan func(), eventQueueSize),
		closed:      make(chan struct{}),
		stopped:     make(chan struct{}),
		outbox:      make(chan func(), outboxQueueSize),
		delivered:   make(chan struct{}),
		entries:     make(map[string]*entry),
	}

	go s.deliver()
	go s.loop()

	return s
}

func (s *Scheduler) loop() {
	defer close(s.stopped)
	defer close(s.outbox)

	for {
		select {
		case fn := <-s.events:
			fn()
		case <-s.closed:
			for id := range s.entries {
				s.removeEntry(id, false)
			}
			return
		}
	}
}

// deliver runs queued notifier calls one at a time, so a cancellation is
// never seen before the prompt it cancels.
func (s *Scheduler) deliver() {
	defer close(s.delivered)

	for fn := range s.outbox {
		fn()
	}
}

// notify queues fn behind every earlier notification. Loop goroutine only.
func (s *Scheduler) notify(fn func(ctx context.Context)) {
	s.outbox <- func() { fn(context.Background()) }
}

// do runs fn on the loop and waits for it.
func (s *Scheduler) do(fn func()) error {
	done := make(chan struct{})
	select {
	case s.events <- func() { fn(); close(done) }:
	case <-s.closed:
		return ErrSchedulerClosed
	}

	select {
	case <-done:
		return nil
	case <-s.stopped:
		return ErrSchedulerClosed
	}
}

// enqueue hands fn to the loop without waiting for it to run.
func (s *Scheduler) enqueue(fn func()) {
	select {
	case s.events <- fn:
	case <-s.closed:
	}
}

// Arm schedules the daily reminder for h, replacing any previous one. A
// habit without a reminder time, or with an unparseable one, ends up
// unscheduled and no error is returned.
func (s *Scheduler) Arm(h model.Habit) error {
	return s.do(func() { s.arm(h) })
}

// Disarm cancels the daily and snooze timers of a habit and closes any
// open prompt for it.
func (s *Scheduler) Disarm(habitID string) error {
	return s.do(func() {
		s.removeEntry(habitID, true)
		s.updateGauge()
	})
}

// RescheduleAll disarms every habit and arms the given list afresh.
func (s *Scheduler) RescheduleAll(habits []model.Habit) error {
	return s.do(func() {
		for id := range s.entries {
			s.removeEntry(id, true)
		}
		for _, h := range habits {
			s.arm(h)
		}
		s.logger.Info("Reminders rescheduled",
			zap.Int("habits", len(habits)),
			zap.Int("armed", len(s.entries)),
		)
	})
}

// Respond applies the user's decision to an open prompt and returns it.
// Completing the habit on DecisionMarkDone is left to the caller.
func (s *Scheduler) Respond(promptID string, decision Decision) (Prompt, error) {
	if _, err := ParseDecision(string(decision)); err != nil {
		return Prompt{}, err
	}

	var (
		prompt Prompt
		err    error
	)
	if doErr := s.do(func() { prompt, err = s.respond(promptID, decision) }); doErr != nil {
		return Prompt{}, doErr
	}
	return prompt, err
}

// Snapshot lists armed habits ordered by name.
func (s *Scheduler) Snapshot() []Status {
	var out []Status
	_ = s.do(func() {
		out = make([]Status, 0, len(s.entries))
		for _, e := range s.entries {
			st := Status{
				HabitID:     e.habitID,
				HabitName:   e.name,
				State:       e.state,
				NextFire:    e.nextFire,
				SnoozeUntil: e.snoozeUntil,
			}
			if e.prompt != nil {
				st.PromptID = e.prompt.ID
			}
			out = append(out, st)
		}
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].HabitName == out[j].HabitName {
			return out[i].HabitID < out[j].HabitID
		}
		return out[i].HabitName < out[j].HabitName
	})
	return out
}

// OpenPrompts lists prompts waiting for a decision.
func (s *Scheduler) OpenPrompts() []Prompt {
	var out []Prompt
	_ = s.do(func() {
		for _, e := range s.entries {
			if e.prompt != nil {
				out = append(out, *e.prompt)
			}
		}
	})

	sort.Slice(out, func(i, j int) bool { return out[i].FiredAt.Before(out[j].FiredAt) })
	return out
}

// Close stops every timer and the event loop, then waits for queued
// notifications to be delivered. It is safe to call twice.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	<-s.stopped
	<-s.delivered
}

func (s *Scheduler) arm(h model.Habit) {
	s.removeEntry(h.ID, true)
	defer s.updateGauge()

	if s.disabled || !h.HasReminder() {
		return
	}

	hour, minute, err := model.ParseReminderTime(h.ReminderTime)
	if err != nil {
		s.logger.Warn("Ignoring invalid reminder time",
			zap.String("habit_id", h.ID),
			zap.String("habit", h.Name),
			zap.String("reminder_time", h.ReminderTime),
		)
		return
	}

	e := &entry{
		habitID:   h.ID,
		name:      h.Name,
		frequency: h.Frequency,
		state:     StateArmed,
	}
	s.entries[h.ID] = e
	s.scheduleDaily(e, NextOccurrence(s.clock.Now(), hour, minute))

	s.logger.Info("Reminder armed",
		zap.String("habit_id", h.ID),
		zap.String("habit", h.Name),
		zap.Time("next_fire", e.nextFire),
	)
}

func (s *Scheduler) scheduleDaily(e *entry, at time.Time) {
	if e.daily != nil {
		e.daily.Stop()
	}

	s.gen++
	gen := s.gen
	id := e.habitID

	e.dailyGen = gen
	e.nextFire = at
	e.daily = s.clock.AfterFunc(at.Sub(s.clock.Now()), func() {
		s.enqueue(func() { s.handleDaily(id, gen, at) })
	})
}

func (s *Scheduler) scheduleSnooze(e *entry) {
	s.stopSnooze(e)

	s.gen++
	gen := s.gen
	id := e.habitID

	e.snoozeGen = gen
	e.snoozeUntil = s.clock.Now().Add(s.snoozeDelay)
	e.snooze = s.clock.AfterFunc(s.snoozeDelay, func() {
		s.enqueue(func() { s.handleSnooze(id, gen) })
	})
}

func (s *Scheduler) stopSnooze(e *entry) {
	if e.snooze != nil {
		e.snooze.Stop()
	}
	e.snooze = nil
	e.snoozeGen = 0
	e.snoozeUntil = time.Time{}
}

func (s *Scheduler) handleDaily(habitID string, gen uint64, scheduledAt time.Time) {
	e, ok := s.entries[habitID]
	if !ok || e.dailyGen != gen {
		s.logger.Debug("Dropping stale daily fire", zap.String("habit_id", habitID))
		return
	}

	// the next day is counted from the scheduled instant, not from the
	// user's answer
	e.daily = nil
	s.scheduleDaily(e, scheduledAt.Add(s.interval))
	metrics.IncrementReminderFired(string(KindDaily))

	switch e.state {
	case StateAwaitingResponse:
		s.logger.Info("Previous prompt still open, not stacking another",
			zap.String("habit_id", habitID),
			zap.String("prompt_id", e.prompt.ID),
		)
		return
	case StateSnoozed:
		s.stopSnooze(e)
	}

	s.present(e, KindDaily)
}

func (s *Scheduler) handleSnooze(habitID string, gen uint64) {
	e, ok := s.entries[habitID]
	if !ok || e.snoozeGen != gen || e.state != StateSnoozed {
		s.logger.Debug("Dropping stale snooze fire", zap.String("habit_id", habitID))
		return
	}

	e.snooze = nil
	e.snoozeGen = 0
	e.snoozeUntil = time.Time{}
	metrics.IncrementReminderFired(string(KindSnooze))

	s.present(e, KindSnooze)
}

func (s *Scheduler) present(e *entry, kind Kind) {
	p := Prompt{
		ID:        uuid.New().String(),
		HabitID:   e.habitID,
		HabitName: e.name,
		Frequency: e.frequency,
		Kind:      kind,
		FiredAt:   s.clock.Now(),
	}
	e.prompt = &p
	e.state = StateAwaitingResponse

	s.logger.Info("Reminder fired",
		zap.String("habit_id", e.habitID),
		zap.String("habit", e.name),
		zap.String("prompt_id", p.ID),
		zap.String("kind", string(kind)),
	)

	s.notify(func(ctx context.Context) { s.notifier.ReminderFired(ctx, p) })
}

func (s *Scheduler) respond(promptID string, decision Decision) (Prompt, error) {
	var e *entry
	for _, cur := range s.entries {
		if cur.prompt != nil && cur.prompt.ID == promptID {
			e = cur
			break
		}
	}
	if e == nil {
		return Prompt{}, ErrPromptNotFound
	}

	p := *e.prompt
	e.prompt = nil

	switch decision {
	case DecisionSnooze:
		e.state = StateSnoozed
		s.scheduleSnooze(e)
	default:
		e.state = StateArmed
	}
	metrics.IncrementReminderDecision(string(decision))

	s.logger.Info("Reminder answered",
		zap.String("habit_id", e.habitID),
		zap.String("prompt_id", promptID),
		zap.String("decision", string(decision)),
	)
	return p, nil
}

// removeEntry stops both timers of a habit and forgets it. With notify set,
// an open prompt is reported as cancelled.
func (s *Scheduler) removeEntry(habitID string, notify bool) {
	e, ok := s.entries[habitID]
	if !ok {
		return
	}

	if e.daily != nil {
		e.daily.Stop()
	}
	s.stopSnooze(e)
	delete(s.entries, habitID)

	if notify && e.prompt != nil {
		r := Resolution{
			Prompt:     *e.prompt,
			Cancelled:  true,
			ResolvedAt: s.clock.Now(),
		}
		s.notify(func(ctx context.Context) { s.notifier.ReminderResolved(ctx, r) })
	}

	s.logger.Debug("Reminder disarmed", zap.String("habit_id", habitID))
}

func (s *Scheduler) updateGauge() {
	metrics.SetArmedReminders(len(s.entries))
}
