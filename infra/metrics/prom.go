package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/productionplan/core/metrics"
)

// PromSink records plans in Prometheus metrics.
type PromSink struct {
	solves    *prometheus.CounterVec
	duration  prometheus.Histogram
	shortfall prometheus.Gauge
	cost      prometheus.Gauge
	gap       prometheus.Gauge
	setpoints *prometheus.GaugeVec
	rejected  *prometheus.CounterVec
}

// NewPromSink registers plan metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered under the same name are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plan_solves_total",
			Help: "Number of production plans computed",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plan_solve_duration_seconds",
			Help:    "Time spent computing a production plan",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		shortfall: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plan_shortfall_mw",
			Help: "Load left unserved by the last plan",
		}),
		cost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plan_cost_euro_per_hour",
			Help: "Fuel cost of the last plan",
		}),
		gap: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plan_cost_gap_euro_per_hour",
			Help: "Cost of the last plan above its LP lower bound",
		}),
		setpoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unit_setpoint_mw",
			Help: "Power requested from each unit by the last plan",
		}, []string{"unit", "kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plan_requests_rejected_total",
			Help: "Requests refused before solving",
		}, []string{"reason"}),
	}
	var err error
	if s.solves, err = register(reg, s.solves); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.shortfall, err = register(reg, s.shortfall); err != nil {
		return nil, err
	}
	if s.cost, err = register(reg, s.cost); err != nil {
		return nil, err
	}
	if s.gap, err = register(reg, s.gap); err != nil {
		return nil, err
	}
	if s.setpoints, err = register(reg, s.setpoints); err != nil {
		return nil, err
	}
	if s.rejected, err = register(reg, s.rejected); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve updates counters and last-plan gauges.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.solves.WithLabelValues(ev.Status.String()).Inc()
	s.duration.Observe(ev.Duration.Seconds())
	s.shortfall.Set(ev.Shortfall)
	s.cost.Set(ev.Cost)
	if ev.LowerBound > 0 {
		s.gap.Set(ev.Cost - ev.LowerBound)
	}
	return nil
}

// RecordSetpoints sets the per-unit gauge.
func (s *PromSink) RecordSetpoints(evs []coremetrics.SetpointEvent) error {
	for _, ev := range evs {
		s.setpoints.WithLabelValues(ev.Unit, ev.Kind).Set(ev.PowerMW)
	}
	return nil
}

// RecordRejection increments the rejection counter.
func (s *PromSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	s.rejected.WithLabelValues(ev.Reason).Inc()
	return nil
}
