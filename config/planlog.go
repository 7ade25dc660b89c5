package config

import (
	"fmt"

	"github.com/kilianp07/productionplan/core/factory"
)

// PlanLogConfig defines settings for plan log storage and rotation.
type PlanLogConfig struct {
	// Backend selects the log store type: "jsonl", "sqlite" or "none".
	Backend string `json:"backend"`
	// Path is the file location of the log store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *PlanLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.Path == "" {
		switch c.Backend {
		case "jsonl":
			c.Path = "plans.jsonl"
		case "sqlite":
			c.Path = "plans.db"
		}
	}
}

// Validate checks mandatory fields.
func (c PlanLogConfig) Validate() error {
	switch c.Backend {
	case "none":
		return nil
	case "jsonl", "sqlite":
	default:
		return fmt.Errorf("plan_log: unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("plan_log: path is required")
	}
	return nil
}

// Module converts the settings into a store module configuration. The
// "none" backend yields an empty type.
func (c PlanLogConfig) Module() factory.ModuleConfig {
	if c.Backend == "none" || c.Backend == "" {
		return factory.ModuleConfig{}
	}
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
