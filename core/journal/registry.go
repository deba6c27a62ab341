package journal

import "github.com/kilianp07/elevsim/core/factory"

// Options are the settings shared by the built-in stores.
type Options struct {
	Path string `json:"path"`
	// MaxSizeMB enables rotation of JSONL journals when positive; sqlite ignores it.
	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
	MaxAgeDays int `json:"max_age_days"`
}

var storeRegistry = factory.NewRegistry[Store]()

func init() {
	_ = storeRegistry.Register("jsonl", func(conf map[string]any) (Store, error) {
		var o Options
		if err := factory.Decode(conf, &o); err != nil {
			return nil, err
		}
		return NewJSONLStore(o.Path, Rotation{
			MaxSizeMB:  o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAgeDays: o.MaxAgeDays,
		})
	})
	_ = storeRegistry.Register("sqlite", func(conf map[string]any) (Store, error) {
		var o Options
		if err := factory.Decode(conf, &o); err != nil {
			return nil, err
		}
		return NewSQLiteStore(o.Path)
	})
}

// RegisterStore adds a store factory identified by name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return storeRegistry.Register(name, f)
}

// NewStore creates the Store described by cfg.
func NewStore(cfg factory.ModuleConfig) (Store, error) {
	return storeRegistry.Create(cfg)
}
