package metrics

import "github.com/kilianp07/productionplan/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddress is the listen address of the /metrics endpoint.
	// Empty disables the endpoint.
	PrometheusAddress string `json:"prometheus_address"`
}
