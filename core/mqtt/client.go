package mqtt

import (
	"context"
	"time"
)

// Setpoint is the power order sent to one generating unit.
type Setpoint struct {
	PlanID  string
	Unit    string
	PowerMW float64
	Time    time.Time
}

// SetpointPublisher sends setpoints to plant controllers and waits for their
// acknowledgments.
type SetpointPublisher interface {
	// PublishSetpoint sends the order and returns the command identifier
	// used to track the acknowledgment.
	PublishSetpoint(ctx context.Context, sp Setpoint) (commandID string, err error)

	// WaitForAck waits for an acknowledgment for the provided command
	// identifier or until the timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)
}
