package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/productionplan/core/model"
)

// MeritOrderChart builds a bar chart of available and dispatched power per
// unit in merit order, with the unit cost on a second axis.
func MeritOrderChart(plan model.Plan) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Merit order",
			Subtitle: fmt.Sprintf("load %v MW, supplied %v MW (%s)", plan.Load, plan.Supplied, plan.Status),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Unit"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Power (MW)"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	names := make([]string, len(plan.Assignments))
	dispatched := make([]opts.BarData, len(plan.Assignments))
	available := make([]opts.BarData, len(plan.Assignments))
	costs := make([]opts.LineData, len(plan.Assignments))
	for i, a := range plan.Assignments {
		names[i] = a.Name
		dispatched[i] = opts.BarData{Value: a.Power}
		if i < len(plan.Units) {
			available[i] = opts.BarData{Value: plan.Units[i].PMax}
			costs[i] = opts.LineData{Value: plan.Units[i].Cost}
		}
	}
	bar.SetXAxis(names).
		AddSeries("Available", available).
		AddSeries("Dispatched", dispatched)

	if len(plan.Units) > 0 {
		bar.ExtendYAxis(opts.YAxis{Name: "Cost (€/MWh)"})
		line := charts.NewLine()
		line.SetXAxis(names).AddSeries("Cost", costs, charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
		bar.Overlap(line)
	}
	return bar
}

// RenderChart writes the merit-order chart of plan as a standalone HTML page.
func RenderChart(w io.Writer, plan model.Plan) error {
	if err := MeritOrderChart(plan).Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
