package merit

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/productionplan/core/model"
)

// Validate checks the value constraints of a problem. All violations are
// returned joined together; unsupported unit kinds wrap ErrUnsupportedUnitType.
func Validate(p model.Problem) error {
	var errs []error
	if !finite(p.Load) || p.Load < 0 {
		errs = append(errs, invalid("load", "must be a non-negative number, got %v", p.Load))
	}
	if p.Fuels.WindPercent < 0 || p.Fuels.WindPercent > 100 || math.IsNaN(p.Fuels.WindPercent) {
		errs = append(errs, invalid("fuels.wind(%)", "must be within [0,100], got %v", p.Fuels.WindPercent))
	}
	seen := make(map[string]struct{}, len(p.Units))
	for i, u := range p.Units {
		field := fmt.Sprintf("powerplants[%d]", i)
		if u.Name == "" {
			errs = append(errs, invalid(field+".name", "is required"))
		} else if _, dup := seen[u.Name]; dup {
			errs = append(errs, invalid(field+".name", "duplicate name %q", u.Name))
		}
		seen[u.Name] = struct{}{}
		if !finite(u.PMin) || u.PMin < 0 {
			errs = append(errs, invalid(field+".pmin", "must be non-negative, got %v", u.PMin))
		}
		if !finite(u.PMax) || u.PMax < 0 {
			errs = append(errs, invalid(field+".pmax", "must be non-negative, got %v", u.PMax))
		}
		if u.PMin > u.PMax {
			errs = append(errs, invalid(field, "pmin %v exceeds pmax %v", u.PMin, u.PMax))
		}
		switch k := u.Kind.(type) {
		case model.Thermal:
			if !(k.Efficiency > 0 && k.Efficiency <= 1) {
				errs = append(errs, invalid(field+".efficiency", "must be within (0,1], got %v", k.Efficiency))
			}
		case model.VariableOutput:
		default:
			errs = append(errs, fmt.Errorf("%w: %s %q is %T", ErrUnsupportedUnitType, field, u.Name, u.Kind))
		}
	}
	return errors.Join(errs...)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
