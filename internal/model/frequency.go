package model

import (
	"errors"
	"strings"
)

// Frequency is informational only; it does not change reminder math.
type Frequency string

const (
	FrequencyDaily  Frequency = "Daily"
	FrequencyWeekly Frequency = "Weekly"
)

var ErrUnknownFrequency = errors.New("unknown frequency")

// ParseFrequency accepts any casing and returns the canonical form.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return FrequencyDaily, nil
	case "weekly":
		return FrequencyWeekly, nil
	default:
		return "", ErrUnknownFrequency
	}
}

func (f Frequency) String() string {
	return string(f)
}
