package metrics

import "github.com/kilianp07/elevsim/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint. Empty disables it.
	PrometheusAddr string `json:"prometheus_addr"`
	// SampleIntervalMS is the period of per-car state sampling. Zero disables it.
	SampleIntervalMS int `json:"sample_interval_ms"`
}
