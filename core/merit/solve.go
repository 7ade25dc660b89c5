package merit

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/productionplan/core/logger"
	"github.com/kilianp07/productionplan/core/model"
)

// Solver runs the full pipeline for one problem at a time. A Solver holds no
// per-request state and may be shared between goroutines.
type Solver struct {
	// ComputeBound enables the LP lower bound on each plan.
	ComputeBound bool
	log          logger.Logger
	newID        func() string
}

// NewSolver returns a Solver logging through log. A nil logger is allowed.
func NewSolver(log logger.Logger, computeBound bool) *Solver {
	return &Solver{ComputeBound: computeBound, log: log, newID: uuid.NewString}
}

// Solve validates, normalizes, ranks and allocates. Validation failures
// abort the solve before ranking. Under-supply is not an error: check
// Plan.Status.
func (s *Solver) Solve(p model.Problem) (model.Plan, error) {
	start := time.Now()
	if err := Validate(p); err != nil {
		return model.Plan{}, err
	}
	normalized, err := Normalize(p.Units, p.Fuels)
	if err != nil {
		return model.Plan{}, err
	}
	plan := Allocate(Rank(normalized), p.Load)
	if s.newID != nil {
		plan.ID = s.newID()
	}
	if s.ComputeBound {
		lb, err := CostLowerBound(plan.Units, p.Load)
		switch {
		case err == nil:
			plan.LowerBound = lb
		case s.log != nil:
			s.log.Debugf("plan %s: no lower bound: %v", plan.ID, err)
		}
	}
	if s.log != nil {
		s.log.Debugw("plan solved", map[string]any{
			"plan_id":  plan.ID,
			"load":     p.Load,
			"units":    len(p.Units),
			"status":   plan.Status.String(),
			"supplied": plan.Supplied,
			"elapsed":  time.Since(start).String(),
		})
	}
	return plan, nil
}

// Solve runs the pipeline without plan IDs, bounds or logging.
func Solve(p model.Problem) (model.Plan, error) {
	return (&Solver{}).Solve(p)
}
