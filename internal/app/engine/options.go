package engine

import (
	"time"

	"github.com/muhammadchandra19/exchange-engine/internal/config"
)

// Options represents configuration options for the Engine.
type Options struct {
	SnapshotInterval time.Duration
	// SnapshotCommandDelta is the number of commands processed since the last
	// stored snapshot before a tick takes a new one.
	SnapshotCommandDelta int64
	OutboxSize           int
	PublishTimeout       time.Duration
}

// DefaultEngineOptions returns the default engine options.
func DefaultEngineOptions() *Options {
	return &Options{
		SnapshotInterval:     3 * time.Second,
		SnapshotCommandDelta: 1,
		OutboxSize:           4096,
		PublishTimeout:       2 * time.Second,
	}
}

// OptionsFromConfig builds Options from the ENGINE_* settings, falling back
// to defaults for unset values.
func OptionsFromConfig(cfg config.EngineConfig) *Options {
	opts := DefaultEngineOptions()
	if cfg.SnapshotInterval > 0 {
		opts.SnapshotInterval = cfg.SnapshotInterval
	}
	if cfg.SnapshotCommandDelta > 0 {
		opts.SnapshotCommandDelta = cfg.SnapshotCommandDelta
	}
	if cfg.OutboxSize > 0 {
		opts.OutboxSize = cfg.OutboxSize
	}
	if cfg.PublishTimeout > 0 {
		opts.PublishTimeout = cfg.PublishTimeout
	}
	return opts
}
