package planlog

import (
	"fmt"

	"github.com/kilianp07/productionplan/core/factory"
)

// FileConfig configures the file backed stores.
type FileConfig struct {
	Path string `json:"path"`
	// MaxSizeMB above zero enables rotation of JSONL files.
	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
	MaxAgeDays int `json:"max_age_days"`
}

var storeRegistry = factory.NewRegistry[LogStore]()

func init() {
	_ = RegisterStore("jsonl", func(conf map[string]any) (LogStore, error) {
		var c FileConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("jsonl plan log: path required")
		}
		if c.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
		}
		return NewJSONLStore(c.Path)
	})
	_ = RegisterStore("sqlite", func(conf map[string]any) (LogStore, error) {
		var c FileConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("sqlite plan log: path required")
		}
		return NewSQLiteStore(c.Path)
	})
}

// RegisterStore adds a log store factory identified by name.
func RegisterStore(name string, f factory.Factory[LogStore]) error {
	return storeRegistry.Register(name, f)
}

// NewStore creates the store described by cfg. An empty type disables plan
// logging and returns a nil store.
func NewStore(cfg factory.ModuleConfig) (LogStore, error) {
	if cfg.Type == "" {
		return nil, nil
	}
	return storeRegistry.Create(cfg)
}
