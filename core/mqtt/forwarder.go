package mqtt

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/productionplan/core/events"
	"github.com/kilianp07/productionplan/core/logger"
	"github.com/kilianp07/productionplan/core/monitoring"
	"github.com/kilianp07/productionplan/internal/eventbus"
)

// Forwarder publishes the setpoints of every plan seen on the bus.
type Forwarder struct {
	Publisher SetpointPublisher
	// AckTimeout enables acknowledgment tracking when positive.
	AckTimeout time.Duration
	Log        logger.Logger
}

// Start subscribes to the bus. The returned channel is closed once the
// forwarder has exited.
func (f *Forwarder) Start(ctx context.Context, bus eventbus.EventBus) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || f.Publisher == nil {
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
				if pe, isPlan := ev.(events.PlanEvent); isPlan {
					if err := f.Forward(ctx, pe); err != nil {
						monitoring.CaptureException(err, map[string]string{
							"module":  "mqtt",
							"plan_id": pe.Plan.ID,
						})
					}
				}
			}
		}
	}()
	return done
}

// Forward publishes one setpoint per unit of the plan, in merit order. All
// units are attempted; failures are joined.
func (f *Forwarder) Forward(ctx context.Context, ev events.PlanEvent) error {
	var errs []error
	pending := make(map[string]string, len(ev.Plan.Assignments))
	for _, a := range ev.Plan.Assignments {
		id, err := f.Publisher.PublishSetpoint(ctx, Setpoint{
			PlanID:  ev.Plan.ID,
			Unit:    a.Name,
			PowerMW: a.Power,
			Time:    ev.Time,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		pending[a.Name] = id
	}
	if f.AckTimeout > 0 {
		for unit, id := range pending {
			ok, err := f.Publisher.WaitForAck(id, f.AckTimeout)
			if err != nil || !ok {
				if f.Log != nil {
					f.Log.Warnf("setpoint for %s (plan %s) not acknowledged: %v", unit, ev.Plan.ID, err)
				}
				if err != nil {
					errs = append(errs, err)
				}
			}
		}
	}
	return errors.Join(errs...)
}
