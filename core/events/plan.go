package events

import (
	"time"

	"github.com/kilianp07/productionplan/core/model"
)

// PlanEvent is published after every successful solve.
type PlanEvent struct {
	Plan     model.Plan
	Fuels    model.FuelPrices
	Duration time.Duration
	Time     time.Time
}

// RejectionEvent is published when a request fails validation.
type RejectionEvent struct {
	// Reason is a short label such as "validation" or "unsupported_type".
	Reason string
	Err    error
	Time   time.Time
}
