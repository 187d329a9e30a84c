package notifier

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"habitpal/internal/reminder"
)

const (
	EventFired    = "fired"
	EventResolved = "resolved"
)

// Event is what subscribers of the Hub receive.
type Event struct {
	Type       string               `json:"type"`
	Prompt     *reminder.Prompt     `json:"prompt,omitempty"`
	Resolution *reminder.Resolution `json:"resolution,omitempty"`
}

// Hub fans reminder events out to in-process subscribers such as SSE
// streams. A subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[int]chan Event),
		logger: logger,
	}
}

// Subscribe returns an event channel and a func that closes it.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) ReminderFired(_ context.Context, p reminder.Prompt) {
	h.broadcast(Event{Type: EventFired, Prompt: &p})
}

func (h *Hub) ReminderResolved(_ context.Context, r reminder.Resolution) {
	h.broadcast(Event{Type: EventResolved, Resolution: &r})
}

func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("Dropping reminder event for slow subscriber",
				zap.Int("subscriber", id),
				zap.String("type", ev.Type),
			)
		}
	}
}
