package config

import "fmt"

// DefaultAddress is the listen address of the plan service.
const DefaultAddress = ":8888"

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address string `json:"address"`
	// LogToken protects the plan log endpoint. Empty disables the endpoint.
	LogToken            string `json:"log_token"`
	ReadTimeoutSeconds  int    `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `json:"write_timeout_seconds"`
	// MaxBodyBytes caps request payloads.
	MaxBodyBytes int64 `json:"max_body_bytes"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.ReadTimeoutSeconds <= 0 {
		c.ReadTimeoutSeconds = 10
	}
	if c.WriteTimeoutSeconds <= 0 {
		c.WriteTimeoutSeconds = 10
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
}

func (c ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("server: address is required")
	}
	return nil
}

// SolverConfig tunes how plans are computed and reported.
type SolverConfig struct {
	// RejectUndersupply answers 422 instead of returning an exhausted plan.
	RejectUndersupply bool `json:"reject_undersupply"`
	// LowerBound computes the LP cost bound of each plan.
	LowerBound bool `json:"lower_bound"`
}
