package model

// PlanStatus is the terminal state reached by the allocator.
type PlanStatus int

const (
	// PlanSatisfied means the load was met exactly.
	PlanSatisfied PlanStatus = iota
	// PlanExhausted means the merit order ran out before the load was met.
	PlanExhausted
)

// String returns a human-readable representation of the status.
func (s PlanStatus) String() string {
	switch s {
	case PlanSatisfied:
		return "satisfied"
	case PlanExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// ParsePlanStatus is the inverse of String.
func ParsePlanStatus(s string) (PlanStatus, bool) {
	switch s {
	case "satisfied":
		return PlanSatisfied, true
	case "exhausted":
		return PlanExhausted, true
	default:
		return 0, false
	}
}

// Problem is one unit-commitment request.
type Problem struct {
	Load  float64 // MW
	Fuels FuelPrices
	Units []GeneratingUnit
}

// Assignment is the power requested from one unit.
type Assignment struct {
	Name  string  `json:"name"`
	Power float64 `json:"p"`
}

// Plan is the result of one solve. Assignments follow the merit order and
// list every unit of the problem.
type Plan struct {
	ID          string
	Load        float64
	Assignments []Assignment
	Status      PlanStatus
	// Supplied is the sum of assigned power.
	Supplied float64
	// Shortfall is Load minus Supplied, zero when satisfied.
	Shortfall float64
	// Cost is the fuel cost of the plan in euro per hour.
	Cost float64
	// LowerBound is the LP relaxation cost when computed, otherwise zero.
	LowerBound float64
	// Units holds the normalized units in merit order.
	Units []NormalizedUnit
}

// Power returns the power assigned to the named unit.
func (p Plan) Power(name string) (float64, bool) {
	for _, a := range p.Assignments {
		if a.Name == name {
			return a.Power, true
		}
	}
	return 0, false
}
