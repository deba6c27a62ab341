package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kilianp07/elevsim/core/factory"
	"github.com/kilianp07/elevsim/infra/logger"
)

// LoggingConfig defines the log output and the assignment journal storage.
// The rotation settings apply to both files.
type LoggingConfig struct {
	// Level is the minimum zerolog level: debug, info, warn, error.
	Level string `json:"level"`
	// File also writes service logs to this rotated file when set.
	File string `json:"file"`
	// Backend selects the journal store type: "jsonl", "sqlite" or "none".
	Backend string `json:"backend"`
	// Path is the file location of the journal.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "assignments.jsonl"
	}
}

// FileOptions describes the rotated service log file.
func (c LoggingConfig) FileOptions() logger.FileOptions {
	return logger.FileOptions{
		Path:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	}
}

// JournalEnabled reports whether assignments are persisted.
func (c LoggingConfig) JournalEnabled() bool { return c.Backend != "none" }

// JournalModule describes the journal store for the store registry.
func (c LoggingConfig) JournalModule() factory.ModuleConfig {
	return factory.ModuleConfig{
		Type: c.Backend,
		Conf: map[string]any{
			"path":         c.Path,
			"max_size_mb":  c.MaxSizeMB,
			"max_backups":  c.MaxBackups,
			"max_age_days": c.MaxAgeDays,
		},
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	switch c.Backend {
	case "jsonl", "sqlite", "none":
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.JournalEnabled() && c.Path == "" {
		return fmt.Errorf("path is required")
	}
	if c.File != "" && c.File == c.Path {
		return fmt.Errorf("file and path must differ")
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("rotation settings must not be negative")
	}
	return nil
}
