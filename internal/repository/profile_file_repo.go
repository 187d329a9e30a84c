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

// ErrProfileNotFound means no profile has been saved yet.
var ErrProfileNotFound = errors.New("profile not found")

type ProfileFileRepository struct {
	path   string
	logger *zap.Logger
}

func NewProfileFileRepository(path string, logger *zap.Logger) *ProfileFileRepository {
	return &ProfileFileRepository{
		path:   path,
		logger: logger,
	}
}

// Load reads the first line of the profile file. A missing file, an empty
// file or a line with too few fields all mean ErrProfileNotFound.
func (r *ProfileFileRepository) Load(ctx context.Context) (*model.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to open profile file: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	line = strings.TrimRight(line, "\n")
	if line == "" {
		return nil, ErrProfileNotFound
	}

	p, err := model.ParseProfileLine(line)
	if err != nil {
		r.logger.Warn("Ignoring malformed profile", zap.String("path", r.path), zap.Error(err))
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (r *ProfileFileRepository) Save(ctx context.Context, p model.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := writeLinesAtomic(r.path, []string{p.MarshalLine()})
	metrics.RecordStoreWrite("profile", err)
	if err != nil {
		r.logger.Error("Failed to save profile",
			zap.String("path", r.path),
			zap.Error(err),
		)
		return err
	}
	return nil
}
