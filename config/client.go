package config

import "github.com/kilianp07/productionplan/auth"

// ClientConfig configures the submit command.
type ClientConfig struct {
	URL            string    `json:"url"`
	TimeoutSeconds int       `json:"timeout_seconds"`
	Auth           auth.Conf `json:"auth"`
}

func (c *ClientConfig) SetDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost" + DefaultAddress + "/productionplan"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}
