package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/productionplan/core/factory"
	metrics "github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/core/model"
	_ "github.com/kilianp07/productionplan/infra/metrics"
)

func TestNewMetricsSink(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	require.NoError(t, err)
	multi, ok := s.(*metrics.MultiSink)
	require.True(t, ok, "got %T", s)
	assert.Len(t, multi.Sinks, 2)

	_, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "statsd"}})
	assert.Error(t, err)
}

// Unreachable InfluxDB falls back to a no-op sink instead of failing startup.
func TestNewMetricsSink_InfluxFallback(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{
		Type: "influx",
		Conf: map[string]any{"url": "http://127.0.0.1:1", "org": "o", "bucket": "plans"},
	}})
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)
}

type recordingSink struct {
	solves     []metrics.SolveEvent
	setpoints  []metrics.SetpointEvent
	rejections []metrics.RejectionEvent
	err        error
	closed     bool
}

func (r *recordingSink) RecordSolve(ev metrics.SolveEvent) error {
	r.solves = append(r.solves, ev)
	return r.err
}

func (r *recordingSink) RecordSetpoints(evs []metrics.SetpointEvent) error {
	r.setpoints = append(r.setpoints, evs...)
	return r.err
}

func (r *recordingSink) RecordRejection(ev metrics.RejectionEvent) error {
	r.rejections = append(r.rejections, ev)
	return r.err
}

func (r *recordingSink) Close() { r.closed = true }

func TestMultiSink_Forwarding(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := metrics.NewMultiSink(a, metrics.NopSink{}, b)

	require.NoError(t, m.RecordSolve(metrics.SolveEvent{PlanID: "p1", Status: model.PlanExhausted}))
	require.NoError(t, m.RecordSetpoints([]metrics.SetpointEvent{{Unit: "G1", PowerMW: 180}}))
	require.NoError(t, m.RecordRejection(metrics.RejectionEvent{Reason: "validation"}))
	for _, s := range []*recordingSink{a, b} {
		assert.Len(t, s.solves, 1)
		assert.Len(t, s.setpoints, 1)
		assert.Len(t, s.rejections, 1)
	}

	a.err = errors.New("write failed")
	assert.EqualError(t, m.RecordSolve(metrics.SolveEvent{}), "write failed")
	assert.Len(t, b.solves, 1, "forwarding stops at the first error")

	m.Close()
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestSetpointsFromPlan(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	plan := model.Plan{
		ID: "p1",
		Assignments: []model.Assignment{
			{Name: "W1", Power: 50},
			{Name: "G1", Power: 180},
		},
		Units: []model.NormalizedUnit{
			{GeneratingUnit: model.GeneratingUnit{Name: "W1", Kind: model.VariableOutput{}}},
			{GeneratingUnit: model.GeneratingUnit{Name: "G1", Kind: model.Thermal{Fuel: model.FuelGas, Efficiency: 0.5}}, Cost: 20},
		},
	}
	evs := metrics.SetpointsFromPlan(plan, at)
	require.Len(t, evs, 2)
	assert.Equal(t, metrics.SetpointEvent{PlanID: "p1", Unit: "W1", Kind: "windturbine", PowerMW: 50, Time: at}, evs[0])
	assert.Equal(t, metrics.SetpointEvent{PlanID: "p1", Unit: "G1", Kind: "gasfired", PowerMW: 180, Cost: 20, Time: at}, evs[1])
}
