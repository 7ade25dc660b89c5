package metrics

import (
	"time"

	"github.com/kilianp07/productionplan/core/model"
)

// SolveEvent summarises one computed plan.
type SolveEvent struct {
	PlanID     string
	Load       float64
	Supplied   float64
	Shortfall  float64
	Cost       float64
	LowerBound float64
	Status     model.PlanStatus
	Units      int
	Duration   time.Duration
	Time       time.Time
}

// MetricsSink records plans for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// SetpointEvent is the power requested from one unit in a plan.
type SetpointEvent struct {
	PlanID  string
	Unit    string
	Kind    string
	PowerMW float64
	Cost    float64 // euro per MWh
	Time    time.Time
}

// SetpointRecorder records per-unit setpoints.
type SetpointRecorder interface {
	RecordSetpoints(evs []SetpointEvent) error
}

// RejectionEvent records a request refused before solving.
type RejectionEvent struct {
	Reason string
	Time   time.Time
}

// RejectionRecorder records rejected requests.
type RejectionRecorder interface {
	RecordRejection(ev RejectionEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error          { return nil }
func (NopSink) RecordSetpoints([]SetpointEvent) error { return nil }
func (NopSink) RecordRejection(RejectionEvent) error  { return nil }

// SetpointsFromPlan expands a plan into setpoint events.
func SetpointsFromPlan(p model.Plan, at time.Time) []SetpointEvent {
	evs := make([]SetpointEvent, len(p.Assignments))
	for i, a := range p.Assignments {
		ev := SetpointEvent{PlanID: p.ID, Unit: a.Name, PowerMW: a.Power, Time: at}
		if i < len(p.Units) {
			ev.Kind = p.Units[i].Kind.Tag()
			ev.Cost = p.Units[i].Cost
		}
		evs[i] = ev
	}
	return evs
}
