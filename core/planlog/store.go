package planlog

import (
	"context"
	"time"

	"github.com/kilianp07/productionplan/core/events"
	"github.com/kilianp07/productionplan/core/model"
)

// Fuels is the fuel snapshot stored with a plan.
type Fuels struct {
	Gas         float64 `json:"gas(euro/MWh)"`
	Kerosine    float64 `json:"kerosine(euro/MWh)"`
	CO2         float64 `json:"co2(euro/ton)"`
	WindPercent float64 `json:"wind(%)"`
}

// LogRecord captures one computed plan.
type LogRecord struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Load        float64            `json:"load"`
	Fuels       Fuels              `json:"fuels"`
	Status      string             `json:"status"`
	Supplied    float64            `json:"supplied"`
	Shortfall   float64            `json:"shortfall"`
	Cost        float64            `json:"cost"`
	LowerBound  float64            `json:"lower_bound,omitempty"`
	DurationMS  float64            `json:"duration_ms"`
	Assignments []model.Assignment `json:"assignments"`
}

// NewLogRecord converts a plan event into a record.
func NewLogRecord(ev events.PlanEvent) LogRecord {
	p := ev.Plan
	return LogRecord{
		ID:        p.ID,
		Timestamp: ev.Time,
		Load:      p.Load,
		Fuels: Fuels{
			Gas:         ev.Fuels.Gas,
			Kerosine:    ev.Fuels.Kerosine,
			CO2:         ev.Fuels.CO2,
			WindPercent: ev.Fuels.WindPercent,
		},
		Status:      p.Status.String(),
		Supplied:    p.Supplied,
		Shortfall:   p.Shortfall,
		Cost:        p.Cost,
		LowerBound:  p.LowerBound,
		DurationMS:  float64(ev.Duration.Microseconds()) / 1000,
		Assignments: p.Assignments,
	}
}

// LogQuery defines filters for retrieving records. Zero values match everything.
type LogQuery struct {
	Start  time.Time
	End    time.Time
	Unit   string
	Status string
}

// Match reports whether the record passes every filter of q.
func (q LogQuery) Match(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if q.Unit == "" {
		return true
	}
	for _, a := range r.Assignments {
		if a.Name == q.Unit {
			return true
		}
	}
	return false
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}
