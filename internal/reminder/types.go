package reminder

import (
	"context"
	"errors"
	"strings"
	"time"

	"habitpal/internal/model"
)

var (
	ErrPromptNotFound  = errors.New("reminder prompt not found")
	ErrUnknownDecision = errors.New("unknown reminder decision")
	ErrSchedulerClosed = errors.New("reminder scheduler closed")
)

// State of an armed habit. A habit with no entry is unscheduled.
type State int

const (
	StateArmed State = iota
	StateAwaitingResponse
	StateSnoozed
)

func (s State) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateSnoozed:
		return "snoozed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Decision string

const (
	DecisionMarkDone Decision = "mark_done"
	DecisionSnooze   Decision = "snooze"
	DecisionSkip     Decision = "skip"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionMarkDone, DecisionSnooze, DecisionSkip:
		return d, nil
	default:
		return "", ErrUnknownDecision
	}
}

// Kind tells whether a prompt came from the daily timeline or a snooze.
type Kind string

const (
	KindDaily  Kind = "daily"
	KindSnooze Kind = "snooze"
)

// Prompt is an open question to the user about one habit.
type Prompt struct {
	ID        string          `json:"id"`
	HabitID   string          `json:"habit_id"`
	HabitName string          `json:"habit_name"`
	Frequency model.Frequency `json:"frequency"`
	Kind      Kind            `json:"kind"`
	FiredAt   time.Time       `json:"fired_at"`
}

// Resolution closes a prompt. Cancelled is set when the habit was disarmed
// while the prompt was open; Decision is empty then.
type Resolution struct {
	Prompt     Prompt    `json:"prompt"`
	Decision   Decision  `json:"decision,omitempty"`
	Cancelled  bool      `json:"cancelled,omitempty"`
	Err        string    `json:"error,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// Notifier is the presentation side of reminders. Implementations must not
// call back into the scheduler synchronously.
type Notifier interface {
	ReminderFired(ctx context.Context, p Prompt)
	ReminderResolved(ctx context.Context, r Resolution)
}

// Status describes one armed habit.
type Status struct {
	HabitID     string    `json:"habit_id"`
	HabitName   string    `json:"habit_name"`
	State       State     `json:"state"`
	NextFire    time.Time `json:"next_fire"`
	SnoozeUntil time.Time `json:"snooze_until,omitempty"`
	PromptID    string    `json:"prompt_id,omitempty"`
}

type nopNotifier struct{}

func (nopNotifier) ReminderFired(context.Context, Prompt)        {}
func (nopNotifier) ReminderResolved(context.Context, Resolution) {}
