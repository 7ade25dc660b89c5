package scenarios

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/productionplan/core/merit"
	coremetrics "github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/infra/logger"
	"github.com/kilianp07/productionplan/infra/metrics"
)

const powerTolerance = 1e-6

func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	problem, err := sc.Problem()
	if err != nil {
		t.Fatalf("problem: %v", err)
	}
	solver := merit.NewSolver(logger.NopLogger{}, sc.Expected.LowerBound != nil)
	start := time.Now()
	plan, err := solver.Solve(problem)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if err := sink.RecordSolve(coremetrics.SolveEvent{
		PlanID:     plan.ID,
		Load:       plan.Load,
		Supplied:   plan.Supplied,
		Shortfall:  plan.Shortfall,
		Cost:       plan.Cost,
		LowerBound: plan.LowerBound,
		Status:     plan.Status,
		Units:      len(plan.Assignments),
		Duration:   time.Since(start),
		Time:       start,
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if n, err := testutil.GatherAndCount(reg, "plan_solves_total"); err != nil || n != 1 {
		t.Errorf("expected one solve series, got %d (%v)", n, err)
	}

	exp := sc.Expected
	if exp.Status != "" && plan.Status.String() != exp.Status {
		t.Errorf("status: got %s want %s", plan.Status, exp.Status)
	}
	if diff := plan.Shortfall - exp.Shortfall; diff > powerTolerance || diff < -powerTolerance {
		t.Errorf("shortfall: got %v want %v", plan.Shortfall, exp.Shortfall)
	}
	if len(plan.Assignments) != len(problem.Units) {
		t.Errorf("expected %d assignments, got %d", len(problem.Units), len(plan.Assignments))
	}
	if len(exp.Order) > 0 {
		if len(exp.Order) != len(plan.Assignments) {
			t.Fatalf("order: got %d units want %d", len(plan.Assignments), len(exp.Order))
		}
		for i, name := range exp.Order {
			if plan.Assignments[i].Name != name {
				t.Errorf("order[%d]: got %s want %s", i, plan.Assignments[i].Name, name)
			}
		}
	}
	for name, want := range exp.Power {
		got, ok := plan.Power(name)
		if !ok {
			t.Errorf("unit %s missing from plan", name)
			continue
		}
		if diff := got - want; diff > powerTolerance || diff < -powerTolerance {
			t.Errorf("unit %s: got %v want %v", name, got, want)
		}
	}
	if exp.Cost != nil {
		if diff := plan.Cost - *exp.Cost; diff > powerTolerance || diff < -powerTolerance {
			t.Errorf("cost: got %v want %v", plan.Cost, *exp.Cost)
		}
	}
	if exp.LowerBound != nil {
		if diff := plan.LowerBound - *exp.LowerBound; diff > powerTolerance || diff < -powerTolerance {
			t.Errorf("lower bound: got %v want %v", plan.LowerBound, *exp.LowerBound)
		}
	}
}
