// Package events defines the planning events emitted on the event bus.
//
// Available event types:
//   - PlanEvent: a production plan was computed
//   - RejectionEvent: a request was refused before solving
package events
