package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPriorityThreshold is the age after which a call bypasses the peak heuristics.
const DefaultPriorityThreshold = 30 * time.Second

// Config holds the scheduler tunables.
type Config struct {
	PriorityThresholdSeconds float64 `json:"priority_threshold_seconds" yaml:"priority_threshold_seconds"`
}

// PriorityThreshold returns the configured ageing threshold, or the default when unset.
func (c Config) PriorityThreshold() time.Duration {
	if c.PriorityThresholdSeconds <= 0 {
		return DefaultPriorityThreshold
	}
	return time.Duration(c.PriorityThresholdSeconds * float64(time.Second))
}

// Validate rejects negative thresholds. Zero means default.
func (c Config) Validate() error {
	if c.PriorityThresholdSeconds < 0 {
		return fmt.Errorf("priority_threshold_seconds must not be negative")
	}
	return nil
}

// LoadConfig reads a Config from a .yaml, .yml or .json file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeConfig(f, strings.TrimPrefix(filepath.Ext(path), "."))
}

// DecodeConfig parses a yaml or json document and validates it.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var (
		cfg Config
		err error
	)
	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(&cfg)
	case "json":
		err = json.NewDecoder(r).Decode(&cfg)
	default:
		return cfg, fmt.Errorf("unsupported scheduler config format %q", format)
	}
	if err != nil {
		return cfg, fmt.Errorf("decode scheduler config: %w", err)
	}
	return cfg, cfg.Validate()
}
