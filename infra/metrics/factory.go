package metrics

import (
	"fmt"
	"os"

	"github.com/kilianp07/elevsim/core/factory"
	coremetrics "github.com/kilianp07/elevsim/core/metrics"
)

// influxOptions are the settings of the "influx" sink. The token falls back
// to INFLUX_TOKEN so it can stay out of config files.
type influxOptions struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

func (o *influxOptions) validate() error {
	if o.Token == "" {
		o.Token = os.Getenv("INFLUX_TOKEN")
	}
	if o.URL == "" || o.Bucket == "" {
		return fmt.Errorf("url and bucket are required")
	}
	return nil
}

func newInfluxFromConf(conf map[string]any) (coremetrics.MetricsSink, error) {
	var o influxOptions
	if err := factory.Decode(conf, &o); err != nil {
		return nil, err
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return NewInfluxSinkWithFallback(o.URL, o.Token, o.Org, o.Bucket), nil
}

func init() {
	builtins := map[string]factory.Factory[coremetrics.MetricsSink]{
		"nop": func(map[string]any) (coremetrics.MetricsSink, error) {
			return coremetrics.NopSink{}, nil
		},
		"prometheus": func(map[string]any) (coremetrics.MetricsSink, error) {
			return NewPromSink()
		},
		"influx": newInfluxFromConf,
	}
	for name, f := range builtins {
		_ = coremetrics.RegisterMetricsSink(name, f)
	}
}
