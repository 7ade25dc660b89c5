package merit

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/productionplan/core/model"
)

// ErrBoundInfeasible indicates the capacity cannot cover the load.
var ErrBoundInfeasible = errors.New("lp infeasible")

// lpTolerance is passed to the simplex solver.
const lpTolerance = 1e-9

// CostLowerBound solves the LP relaxation of the dispatch: every unit may
// run anywhere in [0, pmax], pmin floors are dropped. The optimum bounds the
// cost of any plan meeting the load and measures how far the merit-order
// plan is from it.
func CostLowerBound(units []model.NormalizedUnit, load float64) (float64, error) {
	if load == 0 {
		return 0, nil
	}
	capacity := 0.0
	for _, u := range units {
		capacity += u.PMax
	}
	if len(units) == 0 || capacity < load {
		return 0, ErrBoundInfeasible
	}
	return lpSolve(units, load)
}

// lpSolve can be overridden in tests to simulate solver failures.
var lpSolve = solveLP

func solveLP(units []model.NormalizedUnit, load float64) (float64, error) {
	n := len(units)
	c := make([]float64, n)
	g := mat.NewDense(2*n, n, nil)
	h := make([]float64, 2*n)
	a := mat.NewDense(1, n, nil)
	for i, u := range units {
		c[i] = u.Cost
		g.Set(i, i, 1)
		h[i] = u.PMax
		g.Set(n+i, i, -1)
		a.Set(0, i, 1)
	}
	cStd, aStd, bStd := lp.Convert(c, g, h, a, []float64{load})
	opt, _, err := lp.Simplex(cStd, aStd, bStd, lpTolerance, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return 0, ErrBoundInfeasible
		}
		return 0, err
	}
	return opt, nil
}
