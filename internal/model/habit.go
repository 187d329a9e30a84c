package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	fieldSeparator = ","
	habitFields    = 5

	// ReminderLayout accepts both "7:00" and "07:00".
	ReminderLayout = "15:04"
)

var (
	ErrMalformedLine       = errors.New("malformed habit line")
	ErrInvalidReminderTime = errors.New("invalid reminder time")
)

// Habit is a tracked behaviour with a completion target. Only CompletedDays
// changes after construction, and only through MarkComplete.
type Habit struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Frequency     Frequency `json:"frequency"`
	TotalDays     int       `json:"total_days"`
	CompletedDays int       `json:"completed_days"`
	ReminderTime  string    `json:"reminder_time"`
}

// NewHabit builds a habit with zero progress and a fresh runtime ID.
func NewHabit(name string, frequency Frequency, totalDays int, reminderTime string) *Habit {
	return &Habit{
		ID:           uuid.New().String(),
		Name:         name,
		Frequency:    frequency,
		TotalDays:    totalDays,
		ReminderTime: strings.TrimSpace(reminderTime),
	}
}

// MarkComplete saturates at TotalDays instead of failing.
func (h *Habit) MarkComplete() {
	if h.CompletedDays < h.TotalDays {
		h.CompletedDays++
	}
}

// Progress returns the completion percentage, 0 when TotalDays is 0.
func (h Habit) Progress() float64 {
	if h.TotalDays == 0 {
		return 0
	}
	return float64(h.CompletedDays) * 100.0 / float64(h.TotalDays)
}

// HasReminder reports whether a reminder time is set, valid or not.
func (h Habit) HasReminder() bool {
	return h.ReminderTime != ""
}

func (h Habit) String() string {
	return fmt.Sprintf("%s (%s) - %d/%d done (%.1f%%)  [%s]",
		h.Name, h.Frequency, h.CompletedDays, h.TotalDays, h.Progress(), h.ReminderTime)
}

// MarshalLine encodes the habit as "name,frequency,total,completed,reminder".
// Commas inside Name are not escaped.
func (h Habit) MarshalLine() string {
	return strings.Join([]string{
		h.Name,
		h.Frequency.String(),
		strconv.Itoa(h.TotalDays),
		strconv.Itoa(h.CompletedDays),
		h.ReminderTime,
	}, fieldSeparator)
}

// ParseHabitLine decodes one stored line. Extra trailing fields are ignored.
// A completed count above the total is clamped to the total.
func ParseHabitLine(line string) (*Habit, error) {
	parts := strings.Split(strings.TrimRight(line, "\r"), fieldSeparator)
	if len(parts) < habitFields {
		return nil, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedLine, habitFields, len(parts))
	}

	freq, err := ParseFrequency(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %w %q", ErrMalformedLine, err, parts[1])
	}

	total, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || total < 0 {
		return nil, fmt.Errorf("%w: bad total days %q", ErrMalformedLine, parts[2])
	}

	completed, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil || completed < 0 {
		return nil, fmt.Errorf("%w: bad completed days %q", ErrMalformedLine, parts[3])
	}
	if completed > total {
		completed = total
	}

	h := NewHabit(strings.TrimSpace(parts[0]), freq, total, parts[4])
	h.CompletedDays = completed
	return h, nil
}

// ParseReminderTime parses an "H:mm" wall-clock value and returns the hour
// and minute.
func ParseReminderTime(s string) (hour, minute int, err error) {
	t, err := time.Parse(ReminderLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidReminderTime, s)
	}
	return t.Hour(), t.Minute(), nil
}
