// Package metrics defines the sinks recording production plans for
// observability. Implementations such as the Prometheus and InfluxDB sinks
// live in infra/metrics and register themselves on the sink factory.
package metrics
