package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/vidmark/internal/logger"
)

// OptionsSource restores options at startup.
type OptionsSource interface {
	LoadFile(path string) error
	Load(ctx context.Context)
}

// SnapshotSource restores the video bookmarks at startup.
type SnapshotSource interface {
	Load(ctx context.Context)
	Len() int
}

// Loader restores persisted state before the service starts answering.
type Loader struct {
	options     OptionsSource
	registry    SnapshotSource
	optionsFile string
	logger      logger.Logger
}

// NewLoader creates a loader. optionsFile may be empty.
func NewLoader(opts OptionsSource, reg SnapshotSource, optionsFile string, log logger.Logger) *Loader {
	return &Loader{
		options:     opts,
		registry:    reg,
		optionsFile: optionsFile,
		logger:      log,
	}
}

// Load applies the options file, then the persisted options, then the saved
// bookmarks. Persisted options win over the file. Only a broken options file
// is an error; missing or unreadable stored state is logged by the sources.
func (l *Loader) Load(ctx context.Context) error {
	l.logger.Info("restoring persisted state")

	if l.optionsFile != "" {
		if err := l.options.LoadFile(l.optionsFile); err != nil {
			return fmt.Errorf("failed to apply options file: %w", err)
		}
	}
	l.options.Load(ctx)
	l.registry.Load(ctx)

	l.logger.Info("persisted state restored",
		logger.Int("bookmarks", l.registry.Len()))
	return nil
}
