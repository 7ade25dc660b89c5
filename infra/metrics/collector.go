package metrics

import (
	"context"
	"errors"

	"github.com/kilianp07/productionplan/core/events"
	"github.com/kilianp07/productionplan/core/merit"
	coremetrics "github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/core/monitoring"
	"github.com/kilianp07/productionplan/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records plan events on
// the sink. It stops when the context is canceled or the bus is closed. The
// returned channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					monitoring.CaptureException(err, map[string]string{"component": "metrics"})
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.PlanEvent:
		p := e.Plan
		err := sink.RecordSolve(coremetrics.SolveEvent{
			PlanID:     p.ID,
			Load:       p.Load,
			Supplied:   p.Supplied,
			Shortfall:  p.Shortfall,
			Cost:       p.Cost,
			LowerBound: p.LowerBound,
			Status:     p.Status,
			Units:      len(p.Assignments),
			Duration:   e.Duration,
			Time:       e.Time,
		})
		if r, ok := sink.(coremetrics.SetpointRecorder); ok {
			err = errors.Join(err, r.RecordSetpoints(coremetrics.SetpointsFromPlan(p, e.Time)))
		}
		return err
	case events.RejectionEvent:
		if r, ok := sink.(coremetrics.RejectionRecorder); ok {
			return r.RecordRejection(coremetrics.RejectionEvent{Reason: e.Reason, Time: e.Time})
		}
	}
	return nil
}

// RejectionReason maps a solve error to a metric label.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, merit.ErrUnsupportedUnitType):
		return "unsupported_type"
	case errors.Is(err, merit.ErrValidation):
		return "validation"
	default:
		return "decode"
	}
}
