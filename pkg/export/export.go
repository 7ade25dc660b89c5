package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/productionplan/core/model"
)

// WriteJSON writes the plan assignments to w in the wire format of the
// plan service.
func WriteJSON(w io.Writer, plan model.Plan) error {
	assignments := plan.Assignments
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(assignments)
}

// WriteCSV writes one row per unit in merit order, with the normalized
// bounds and cost when the plan carries them.
func WriteCSV(w io.Writer, plan model.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "type", "cost", "pmin", "pmax", "p"}); err != nil {
		return err
	}
	for i, a := range plan.Assignments {
		rec := []string{a.Name, "", "", "", "", formatFloat(a.Power)}
		if i < len(plan.Units) && plan.Units[i].Name == a.Name {
			u := plan.Units[i]
			if u.Kind != nil {
				rec[1] = u.Kind.Tag()
			}
			rec[2] = formatFloat(u.Cost)
			rec[3] = formatFloat(u.PMin)
			rec[4] = formatFloat(u.PMax)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
