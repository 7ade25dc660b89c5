package config

import "fmt"

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
	// SampleRate is the share of error events sent, in [0,1].
	SampleRate float64 `json:"sample_rate"`
	Debug      bool    `json:"debug"`
}

// SetDefaults reports every error from the production environment.
func (c *SentryConfig) SetDefaults() {
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1
	}
}

// Validate checks the sample rate.
func (c SentryConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sentry: sample_rate must be within [0,1], got %v", c.SampleRate)
	}
	return nil
}
