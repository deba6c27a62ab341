package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/elevsim/core/metrics"
	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/core/scheduler"
	"github.com/kilianp07/elevsim/infra/mqtt"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: ELEVSIM_SIMULATION__NUMBEROFFLOORS=20.
const EnvPrefix = "ELEVSIM_"

type Config struct {
	Simulation model.SimulationConfig `json:"simulation"`
	Scheduler  scheduler.Config       `json:"scheduler"`
	HTTP       HTTPConfig             `json:"http"`
	MQTT       mqtt.Config            `json:"mqtt"`
	Metrics    metrics.Config         `json:"metrics"`
	Logging    LoggingConfig          `json:"logging"`
	Sentry     SentryConfig           `json:"sentry"`
	// Seed drives the random source. Zero picks a time based seed.
	Seed int64 `json:"seed"`
	// AutoStart starts the simulation when the service starts.
	AutoStart bool `json:"autostart"`
}

// Default returns the configuration used when no file or override is given.
func Default() *Config {
	cfg := &Config{Simulation: model.DefaultSimulationConfig()}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset fields of every section.
func (c *Config) SetDefaults() {
	c.HTTP.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate checks every section and returns the first error.
func (c *Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if c.Metrics.SampleIntervalMS < 0 {
		return fmt.Errorf("metrics: sample_interval_ms must not be negative")
	}
	if err := c.Sentry.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// Load reads the optional file at path, applies ELEVSIM_ environment
// overrides on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := &Config{Simulation: model.DefaultSimulationConfig()}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
