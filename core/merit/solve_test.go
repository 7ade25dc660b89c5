package merit

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/productionplan/core/model"
	"github.com/kilianp07/productionplan/infra/logger"
)

func TestSolve_Example(t *testing.T) {
	plan, err := Solve(exampleProblem(300))
	require.NoError(t, err)
	assert.Equal(t, []string{"W1", "G1", "G2"}, names(plan))
	assert.Equal(t, model.PlanSatisfied, plan.Status)
}

func TestSolve_ValidationAbortsBeforeRanking(t *testing.T) {
	cases := map[string]model.Problem{
		"negative load": {Load: -1, Units: []model.GeneratingUnit{gas("g", 0.5, 0, 10)}},
		"pmin > pmax":   {Load: 1, Units: []model.GeneratingUnit{gas("g", 0.5, 20, 10)}},
		"zero eff":      {Load: 1, Units: []model.GeneratingUnit{gas("g", 0, 0, 10)}},
		"eff above one": {Load: 1, Units: []model.GeneratingUnit{gas("g", 1.5, 0, 10)}},
		"duplicate":     {Load: 1, Units: []model.GeneratingUnit{gas("g", 0.5, 0, 10), gas("g", 0.5, 0, 10)}},
		"no name":       {Load: 1, Units: []model.GeneratingUnit{gas("", 0.5, 0, 10)}},
		"wind range":    {Load: 1, Fuels: model.FuelPrices{WindPercent: 120}, Units: []model.GeneratingUnit{wind("w", 10)}},
		"nan load":      {Load: math.NaN()},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			plan, err := Solve(p)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error got %v", err)
			}
			assert.Empty(t, plan.Assignments)
		})
	}
}

func TestSolve_UnsupportedKind(t *testing.T) {
	p := model.Problem{Load: 1, Units: []model.GeneratingUnit{{Name: "x", PMax: 1}}}
	_, err := Solve(p)
	assert.ErrorIs(t, err, ErrUnsupportedUnitType)
}

func TestSolve_CompletenessAndOrdering(t *testing.T) {
	p := model.Problem{
		Load:  910,
		Fuels: model.FuelPrices{Gas: 13.4, Kerosine: 50.8, WindPercent: 60},
		Units: []model.GeneratingUnit{
			gas("gasfiredbig1", 0.53, 100, 460),
			gas("gasfiredbig2", 0.53, 100, 460),
			gas("gasfiredsomewhatsmaller", 0.37, 40, 210),
			jet("tj1", 0.3, 0, 16),
			wind("windpark1", 150),
			wind("windpark2", 36),
		},
	}
	plan, err := Solve(p)
	require.NoError(t, err)
	require.Len(t, plan.Assignments, len(p.Units))

	seen := map[string]int{}
	for _, a := range plan.Assignments {
		seen[a.Name]++
	}
	for _, u := range p.Units {
		assert.Equal(t, 1, seen[u.Name], u.Name)
	}
	for i := 1; i < len(plan.Units); i++ {
		assert.LessOrEqual(t, plan.Units[i-1].Cost, plan.Units[i].Cost)
	}
	assert.InDelta(t, 910, plan.Supplied, 1e-9)
}

func TestSolve_DeterministicAcrossGoroutines(t *testing.T) {
	want, err := Solve(exampleProblem(300))
	require.NoError(t, err)
	wantJSON, err := json.Marshal(want.Assignments)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plan, err := Solve(exampleProblem(300))
			if err != nil {
				return
			}
			results[i], _ = json.Marshal(plan.Assignments)
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		assert.Equal(t, string(wantJSON), string(r), "goroutine %d", i)
	}
}

func TestSolver_AssignsIDAndBound(t *testing.T) {
	s := NewSolver(logger.NopLogger{}, true)
	s.newID = func() string { return "plan-1" }
	plan, err := s.Solve(exampleProblem(300))
	require.NoError(t, err)
	assert.Equal(t, "plan-1", plan.ID)
	assert.InDelta(t, 6000, plan.LowerBound, 1e-6)
	assert.GreaterOrEqual(t, plan.Cost, plan.LowerBound)
}

func TestSolver_BoundSkippedWhenInfeasible(t *testing.T) {
	s := NewSolver(logger.NopLogger{}, true)
	plan, err := s.Solve(exampleProblem(1000))
	require.NoError(t, err)
	assert.Zero(t, plan.LowerBound)
	assert.NotEmpty(t, plan.ID)
}
