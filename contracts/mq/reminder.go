package mq

import "time"

const (
	RoutingReminderFired    = "habit.reminder.fired"
	RoutingReminderResolved = "habit.reminder.resolved"
)

type ReminderFiredPayload struct {
	PromptID  string    `json:"prompt_id"`
	HabitID   string    `json:"habit_id"`
	HabitName string    `json:"habit_name"`
	Frequency string    `json:"frequency"`
	Kind      string    `json:"kind"` // daily / snooze
	FiredAt   time.Time `json:"fired_at"`
}

type ReminderResolvedPayload struct {
	PromptID   string    `json:"prompt_id"`
	HabitID    string    `json:"habit_id"`
	HabitName  string    `json:"habit_name"`
	Decision   string    `json:"decision"` // mark_done / snooze / skip
	Error      string    `json:"error,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}
