package merit

import "github.com/kilianp07/productionplan/core/model"

func gas(name string, eff, pmin, pmax float64) model.GeneratingUnit {
	return model.GeneratingUnit{Name: name, Kind: model.Thermal{Fuel: model.FuelGas, Efficiency: eff}, PMin: pmin, PMax: pmax}
}

func jet(name string, eff, pmin, pmax float64) model.GeneratingUnit {
	return model.GeneratingUnit{Name: name, Kind: model.Thermal{Fuel: model.FuelKerosine, Efficiency: eff}, PMin: pmin, PMax: pmax}
}

func wind(name string, pmax float64) model.GeneratingUnit {
	return model.GeneratingUnit{Name: name, Kind: model.VariableOutput{}, PMax: pmax}
}

// exampleProblem is the three-unit scenario used across the tests.
func exampleProblem(load float64) model.Problem {
	return model.Problem{
		Load:  load,
		Fuels: model.FuelPrices{Gas: 10, Kerosine: 50, WindPercent: 50},
		Units: []model.GeneratingUnit{
			wind("W1", 100),
			gas("G1", 0.5, 20, 200),
			gas("G2", 0.25, 20, 150),
		},
	}
}

func names(p model.Plan) []string {
	out := make([]string, len(p.Assignments))
	for i, a := range p.Assignments {
		out[i] = a.Name
	}
	return out
}
