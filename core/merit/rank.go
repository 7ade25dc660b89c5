package merit

import (
	"sort"

	"github.com/kilianp07/productionplan/core/model"
)

// Rank returns the units sorted by ascending cost. The sort is stable so
// equal-cost units keep their input order. The input slice is not modified.
func Rank(units []model.NormalizedUnit) []model.NormalizedUnit {
	ranked := make([]model.NormalizedUnit, len(units))
	copy(ranked, units)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Cost < ranked[j].Cost })
	return ranked
}
