package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"habitpal/internal/model"
	"habitpal/pkg/metrics"
)

// HabitFileRepository keeps the habit list in a line-oriented text file.
// Every save rewrites the whole file.
type HabitFileRepository struct {
	path   string
	logger *zap.Logger
}

func NewHabitFileRepository(path string, logger *zap.Logger) *HabitFileRepository {
	return &HabitFileRepository{
		path:   path,
		logger: logger,
	}
}

func (r *HabitFileRepository) Path() string {
	return r.path
}

// Load returns the habits in file order. A missing file is an empty list and
// unparseable lines are skipped.
func (r *HabitFileRepository) Load(ctx context.Context) ([]*model.Habit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Info("Habit file not found, starting empty", zap.String("path", r.path))
			return []*model.Habit{}, nil
		}
		return nil, fmt.Errorf("failed to open habit file: %w", err)
	}
	defer f.Close()

	habits := make([]*model.Habit, 0)
	reader := bufio.NewReader(f)
	lineNo := 0
	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("failed to read habit file: %w", readErr)
		}
		if line == "" && readErr != nil {
			break
		}
		lineNo++

		line = strings.TrimRight(line, "\n")
		if strings.TrimSpace(line) != "" {
			if h, err := model.ParseHabitLine(line); err != nil {
				metrics.IncrementSkippedLines()
				r.logger.Warn("Skipping unparseable habit line",
					zap.String("path", r.path),
					zap.Int("line", lineNo),
					zap.Int("length", len(line)),
					zap.Error(err),
				)
			} else {
				habits = append(habits, h)
			}
		}

		if readErr != nil {
			break
		}
	}

	r.logger.Debug("Habits loaded",
		zap.String("path", r.path),
		zap.Int("count", len(habits)),
	)
	return habits, nil
}

// Save overwrites the file with one line per habit in list order.
func (r *HabitFileRepository) Save(ctx context.Context, habits []*model.Habit) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lines := make([]string, 0, len(habits))
	for _, h := range habits {
		lines = append(lines, h.MarshalLine())
	}

	err := writeLinesAtomic(r.path, lines)
	metrics.RecordStoreWrite("habits", err)
	if err != nil {
		r.logger.Error("Failed to save habits",
			zap.String("path", r.path),
			zap.Error(err),
		)
		return err
	}
	return nil
}
