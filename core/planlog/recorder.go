package planlog

import (
	"context"

	"github.com/kilianp07/productionplan/core/events"
	"github.com/kilianp07/productionplan/core/logger"
	"github.com/kilianp07/productionplan/core/monitoring"
	"github.com/kilianp07/productionplan/internal/eventbus"
)

// StartRecorder appends every plan published on the bus to store. The
// returned channel is closed once the recorder has exited.
func StartRecorder(ctx context.Context, bus eventbus.EventBus, store LogStore, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil {
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
				pe, isPlan := ev.(events.PlanEvent)
				if !isPlan {
					continue
				}
				if err := store.Append(ctx, NewLogRecord(pe)); err != nil {
					if log != nil {
						log.Errorf("plan log append %s: %v", pe.Plan.ID, err)
					}
					monitoring.CaptureException(err, map[string]string{"component": "planlog"})
				}
			}
		}
	}()
	return done
}
