package mirror

import (
	"context"
	"fmt"
	"log/slog"

	"tempo/internal/mirror/google"
	"tempo/internal/mirror/snapshot"
)

// Backend selects a mirror implementation.
type Backend string

const (
	SnapshotBackend Backend = "snapshot"
	SheetsBackend   Backend = "sheets"
)

// String implements fmt.Stringer
func (b Backend) String() string {
	return string(b)
}

// IsValid returns true if the backend type is valid
func (b Backend) IsValid() bool {
	switch b {
	case SnapshotBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for mirror creation.
type Config struct {
	Type Backend

	// Snapshot specific
	SnapshotDir string
}

// Factory creates mirrors based on configuration.
type Factory interface {
	CreateMirror(ctx context.Context, config Config) (DocumentMirror, error)
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new mirror factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateMirror implements Factory.CreateMirror
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (DocumentMirror, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid mirror backend: %s", config.Type)
	}

	switch config.Type {
	case SnapshotBackend:
		dir := config.SnapshotDir
		if dir == "" {
			dir = "data/snapshots"
		}
		f.logger.Info("Initialized snapshot mirror", "dir", dir)
		return snapshot.New(dir), nil
	case SheetsBackend:
		cli, err := google.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets mirror: %w", err)
		}
		f.logger.Info("Initialized Google Sheets mirror")
		return cli, nil
	default:
		return nil, fmt.Errorf("unsupported mirror backend: %s", config.Type)
	}
}
