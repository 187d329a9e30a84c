package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var reportHeader = []string{"Name", "Frequency", "TotalDays", "CompletedDays", "Progress", "ReminderTime"}

// ExportReport writes a CSV summary of every habit to path. Fields follow
// RFC 4180, so a name holding a quote or leading space is written quoted.
func (s *HabitService) ExportReport(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: report path is required", ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	habits := s.ListHabits()

	f, err := os.Create(path)
	if err != nil {
		s.logger.Error("Failed to create report", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	w := csv.NewWriter(f)
	rows := make([][]string, 0, len(habits)+1)
	rows = append(rows, reportHeader)
	for _, h := range habits {
		rows = append(rows, []string{
			h.Name,
			h.Frequency.String(),
			strconv.Itoa(h.TotalDays),
			strconv.Itoa(h.CompletedDays),
			strconv.FormatFloat(h.Progress(), 'f', 1, 64),
			h.ReminderTime,
		})
	}

	if err := w.WriteAll(rows); err != nil {
		f.Close()
		s.logger.Error("Failed to write report", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	s.logger.Info("Report exported", zap.String("path", path), zap.Int("habits", len(habits)))
	return nil
}

// ReportPathIn resolves a report name requested over the API against the
// directory of the configured report file. Only a bare file name is
// accepted; an empty name selects defaultPath itself.
func ReportPathIn(defaultPath, name string) (string, error) {
	if name == "" {
		return defaultPath, nil
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%w: report path must be a file name without directories", ErrValidation)
	}
	return filepath.Join(filepath.Dir(defaultPath), name), nil
}
