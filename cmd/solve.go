package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/productionplan/api/productionplan"
	"github.com/kilianp07/productionplan/core/merit"
	"github.com/kilianp07/productionplan/core/model"
	"github.com/kilianp07/productionplan/pkg/export"
)

var (
	solveFormat string
	solveChart  string
	solveBound  bool
)

var solveCmd = &cobra.Command{
	Use:   "solve <payload.json>",
	Short: "Compute a production plan offline",
	Long:  "Compute the production plan of a payload file (\"-\" reads stdin) and print it.",
	Args:  cobra.ExactArgs(1),
	RunE:  solvePayload,
}

func init() {
	solveCmd.Flags().StringVarP(&solveFormat, "format", "f", "json", "output format: json or csv")
	solveCmd.Flags().StringVar(&solveChart, "chart", "", "write a merit-order chart to this HTML file")
	solveCmd.Flags().BoolVar(&solveBound, "bound", false, "report the LP lower bound of the plan cost")
	rootCmd.AddCommand(solveCmd)
}

func solvePayload(cmd *cobra.Command, args []string) error {
	problem, err := readProblem(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	plan, err := merit.NewSolver(nil, solveBound).Solve(problem)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch solveFormat {
	case "json":
		err = export.WriteJSON(out, plan)
	case "csv":
		err = export.WriteCSV(out, plan)
	default:
		return fmt.Errorf("unknown format %q", solveFormat)
	}
	if err != nil {
		return err
	}
	if solveChart != "" {
		if err := writeChart(solveChart, plan); err != nil {
			return err
		}
	}
	summary := fmt.Sprintf("status=%s supplied=%v shortfall=%v cost=%v", plan.Status, plan.Supplied, plan.Shortfall, plan.Cost)
	if solveBound {
		summary += fmt.Sprintf(" lower_bound=%v", plan.LowerBound)
	}
	_, err = fmt.Fprintln(cmd.ErrOrStderr(), summary)
	return err
}

func readProblem(stdin io.Reader, path string) (model.Problem, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return model.Problem{}, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return productionplan.NewValidator().Decode(r)
}

func writeChart(path string, plan model.Plan) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.RenderChart(f, plan); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
