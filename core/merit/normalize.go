package merit

import (
	"fmt"

	"github.com/kilianp07/productionplan/core/model"
)

// Normalize prices each unit and returns new records in input order. Variable
// units get their output pinned to pmax × availability / 100.
func Normalize(units []model.GeneratingUnit, fuels model.FuelPrices) ([]model.NormalizedUnit, error) {
	out := make([]model.NormalizedUnit, len(units))
	for i, u := range units {
		nu, err := normalizeUnit(u, fuels)
		if err != nil {
			return nil, err
		}
		out[i] = nu
	}
	return out, nil
}

func normalizeUnit(u model.GeneratingUnit, fuels model.FuelPrices) (model.NormalizedUnit, error) {
	nu := model.NormalizedUnit{GeneratingUnit: u}
	switch k := u.Kind.(type) {
	case model.Thermal:
		if k.Efficiency <= 0 {
			return nu, invalid("efficiency", "unit %q must have a positive efficiency", u.Name)
		}
		price, err := fuels.Price(k.Fuel)
		if err != nil {
			return nu, invalid("fuels", "unit %q: %v", u.Name, err)
		}
		nu.Cost = price / k.Efficiency
	case model.VariableOutput:
		available := u.PMax * fuels.WindPercent / 100
		nu.Cost = 0
		nu.PMin = available
		nu.PMax = available
	default:
		return nu, fmt.Errorf("%w: unit %q is %T", ErrUnsupportedUnitType, u.Name, u.Kind)
	}
	return nu, nil
}
