// Package config defines service configuration and its loading.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory recompute queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many submission ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// Store selects the snapshot store: memory or sqlite.
	Store string `koanf:"store"`

	// SQLitePath is the database file used when Store is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// DefaultViewMode is used when a request names no mode and the meet
	// has none stored.
	DefaultViewMode string `koanf:"default_view_mode"`

	// ComputeTimeoutMS bounds one recompute job. Zero disables the bound.
	ComputeTimeoutMS int `koanf:"compute_timeout_ms"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		QueueSize:        1024,
		WorkerCount:      runtime.NumCPU(),
		DedupeSize:       50_000,
		Store:            "memory",
		SQLitePath:       "data/meets.db",
		DefaultViewMode:  string(model.ViewHybrid),
		ComputeTimeoutMS: 5000,
	}
}

// ComputeTimeout returns ComputeTimeoutMS as a duration.
func (c *Config) ComputeTimeout() time.Duration {
	return time.Duration(c.ComputeTimeoutMS) * time.Millisecond
}

// ViewMode returns the parsed default view mode.
func (c *Config) ViewMode() model.ViewMode {
	m, err := model.ParseViewMode(c.DefaultViewMode)
	if err != nil {
		return model.ViewHybrid
	}
	return m
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("addr must not be empty: %w", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("queue_size must be positive, got %d: %w", c.QueueSize, ErrInvalidConfig)
	case c.WorkerCount < 0:
		return fmt.Errorf("worker_count must not be negative, got %d: %w", c.WorkerCount, ErrInvalidConfig)
	case c.ComputeTimeoutMS < 0:
		return fmt.Errorf("compute_timeout_ms must not be negative: %w", ErrInvalidConfig)
	}
	switch c.Store {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite_path must be set for the sqlite store: %w", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("unknown store %q: %w", c.Store, ErrInvalidConfig)
	}
	if _, err := model.ParseViewMode(c.DefaultViewMode); err != nil {
		return fmt.Errorf("default_view_mode: %v: %w", err, ErrInvalidConfig)
	}
	return nil
}
