package notifier

import (
	"context"

	"habitpal/internal/reminder"
)

// Multi forwards every event to each notifier in order.
type Multi []reminder.Notifier

func (m Multi) ReminderFired(ctx context.Context, p reminder.Prompt) {
	for _, n := range m {
		n.ReminderFired(ctx, p)
	}
}

func (m Multi) ReminderResolved(ctx context.Context, r reminder.Resolution) {
	for _, n := range m {
		n.ReminderResolved(ctx, r)
	}
}
