package merit

import (
	"fmt"
	"math"

	"github.com/kilianp07/productionplan/core/model"
)

// supplyTolerance is the gap in MW under which a plan counts as meeting the
// load when no unit closed it exactly.
const supplyTolerance = 1e-9

// Allocate assigns power to the ranked units. It expects the output of Rank
// and returns one assignment per unit in the same order.
//
// For each unit, with committed the power already assigned:
//   - a unit whose pmin would overshoot the load is left at zero;
//   - a variable unit runs at its available output;
//   - a thermal unit able to close the gap takes the exact remainder and
//     ends the pass;
//   - any other thermal unit runs at pmax minus the next unit's pmin so the
//     next floor stays reachable; the last unit gets nothing.
func Allocate(ranked []model.NormalizedUnit, load float64) model.Plan {
	plan := model.Plan{
		Load:        load,
		Assignments: make([]model.Assignment, len(ranked)),
		Status:      model.PlanExhausted,
		Units:       ranked,
	}
	for i, u := range ranked {
		plan.Assignments[i] = model.Assignment{Name: u.Name}
	}

	committed := 0.0
	satisfied := false
	for i, u := range ranked {
		if u.PMin+committed > load {
			continue
		}
		switch u.Kind.(type) {
		case model.VariableOutput:
			plan.Assignments[i].Power = u.PMax
			committed += u.PMax
			continue
		case model.Thermal:
		default:
			panic(fmt.Sprintf("merit: unit %q has unsupported kind %T", u.Name, u.Kind))
		}
		if u.PMax+committed >= load {
			plan.Assignments[i].Power = load - committed
			satisfied = true
			break
		}
		if i < len(ranked)-1 {
			p := u.PMax - ranked[i+1].PMin
			plan.Assignments[i].Power = p
			committed += p
		}
	}

	for i, a := range plan.Assignments {
		plan.Supplied += a.Power
		plan.Cost += a.Power * ranked[i].Cost
	}
	if satisfied || math.Abs(load-plan.Supplied) <= supplyTolerance {
		plan.Status = model.PlanSatisfied
	} else {
		plan.Shortfall = load - plan.Supplied
	}
	return plan
}
