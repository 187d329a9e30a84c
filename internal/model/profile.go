package model

import (
	"errors"
	"fmt"
	"strings"
)

const profileFields = 3

var ErrMalformedProfile = errors.New("malformed profile line")

// Profile is the single user of the installation. It is always written
// whole.
type Profile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Gender string `json:"gender"`
}

func (p Profile) MarshalLine() string {
	return strings.Join([]string{p.Name, p.Email, p.Gender}, fieldSeparator)
}

// ParseProfileLine requires three fields; ",," is a valid empty profile.
func ParseProfileLine(line string) (Profile, error) {
	parts := strings.Split(strings.TrimRight(line, "\r"), fieldSeparator)
	if len(parts) < profileFields {
		return Profile{}, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedProfile, profileFields, len(parts))
	}
	return Profile{
		Name:   parts[0],
		Email:  parts[1],
		Gender: parts[2],
	}, nil
}
