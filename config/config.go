package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/infra/mqtt"
)

// EnvPrefix prefixes environment overrides. K_SERVER__ADDRESS sets
// server.address.
const EnvPrefix = "K_"

type Config struct {
	LogLevel string         `json:"log_level"`
	Server   ServerConfig   `json:"server"`
	Solver   SolverConfig   `json:"solver"`
	Metrics  metrics.Config `json:"metrics"`
	PlanLog  PlanLogConfig  `json:"plan_log"`
	MQTT     mqtt.Config    `json:"mqtt"`
	Sentry   SentryConfig   `json:"sentry"`
	Client   ClientConfig   `json:"client"`
}

// Load reads the configuration file at path, applies environment overrides
// and defaults, then validates the result. An empty path loads defaults and
// environment only.
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
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.Server.SetDefaults()
	c.PlanLog.SetDefaults()
	c.MQTT.SetDefaults()
	c.Client.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate checks every section and reports all failures.
func (c Config) Validate() error {
	return errors.Join(
		c.Server.Validate(),
		c.PlanLog.Validate(),
		c.MQTT.Validate(),
		c.Sentry.Validate(),
	)
}
