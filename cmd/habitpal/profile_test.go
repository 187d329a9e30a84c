package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"habitpal/internal/model"
	"habitpal/internal/service"
)

type savedProfiles struct {
	saved []model.Profile
}

func (s *savedProfiles) SaveProfile(_ context.Context, name, email, gender string) (model.Profile, error) {
	if name == "" {
		return model.Profile{}, fmt.Errorf("%w: name is required", service.ErrValidation)
	}
	p := model.Profile{Name: name, Email: email, Gender: gender}
	s.saved = append(s.saved, p)
	return p, nil
}

func TestPromptProfileRetriesOnEmptyName(t *testing.T) {
	store := &savedProfiles{}
	in := strings.NewReader("\n\n\nAna\nana@example.com\nF\n")
	var out bytes.Buffer

	p, err := promptProfile(context.Background(), store, in, &out)
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	if p.Name != "Ana" || p.Email != "ana@example.com" || p.Gender != "F" {
		t.Fatalf("unexpected profile %+v", p)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d profiles want 1", len(store.saved))
	}
	if !strings.Contains(out.String(), "please try again") {
		t.Fatalf("expected retry message, got %q", out.String())
	}
}

func TestPromptProfileLastLineWithoutNewline(t *testing.T) {
	store := &savedProfiles{}

	p, err := promptProfile(context.Background(), store, strings.NewReader("Ana\n\nF"), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	if p.Gender != "F" || p.Email != "" {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestPromptProfileInputClosed(t *testing.T) {
	store := &savedProfiles{}

	_, err := promptProfile(context.Background(), store, strings.NewReader(""), &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error on closed input")
	}
	if len(store.saved) != 0 {
		t.Fatalf("nothing should be saved, got %+v", store.saved)
	}
}

func TestHabitIndex(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"1", 0, false},
		{"12", 11, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"x", 0, true},
	}

	for _, tt := range tests {
		got, err := habitIndex(tt.arg)
		if (err != nil) != tt.wantErr {
			t.Errorf("habitIndex(%q) err = %v", tt.arg, err)
			continue
		}
		if got != tt.want {
			t.Errorf("habitIndex(%q) = %d want %d", tt.arg, got, tt.want)
		}
	}
}
