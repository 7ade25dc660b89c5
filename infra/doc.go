// Package infra contains the technical adapters behind the core
// interfaces: the zerolog logger, Prometheus and InfluxDB sinks, the Paho
// setpoint publisher and the Sentry monitor.
package infra
