package service

import (
	"errors"

	"habitpal/internal/repository"
)

var (
	// ErrValidation rejects a request before any state changes.
	ErrValidation      = errors.New("validation failed")
	ErrIndexOutOfRange = errors.New("habit index out of range")
	ErrHabitNotFound   = errors.New("habit not found")
	// ErrPersist means the change was applied in memory but not written.
	ErrPersist = errors.New("failed to persist")

	ErrProfileNotFound = repository.ErrProfileNotFound
)
