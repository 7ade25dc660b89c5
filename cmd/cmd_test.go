package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload3 = `{
  "load": 910,
  "fuels": {"gas(euro/MWh)": 13.4, "kerosine(euro/MWh)": 50.8, "co2(euro/ton)": 20, "wind(%)": 60},
  "powerplants": [
    {"name": "gasfiredbig1", "type": "gasfired", "efficiency": 0.53, "pmin": 100, "pmax": 460},
    {"name": "gasfiredbig2", "type": "gasfired", "efficiency": 0.53, "pmin": 100, "pmax": 460},
    {"name": "gasfiredsomewhatsmaller", "type": "gasfired", "efficiency": 0.37, "pmin": 40, "pmax": 210},
    {"name": "tj1", "type": "turbojet", "efficiency": 0.3, "pmin": 0, "pmax": 16},
    {"name": "windpark1", "type": "windturbine", "efficiency": 1, "pmin": 0, "pmax": 150},
    {"name": "windpark2", "type": "windturbine", "efficiency": 1, "pmin": 0, "pmax": 36}
  ]
}`

func writePayload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload3.json")
	require.NoError(t, os.WriteFile(path, []byte(payload3), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() {
		cfgPath, solveFormat, solveChart, solveBound, submitURL = "", "json", "", false, ""
	})
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(payload3))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSolveCommand_JSON(t *testing.T) {
	out, summary, err := execute(t, "solve", writePayload(t))
	require.NoError(t, err)
	var plan []struct {
		Name string  `json:"name"`
		P    float64 `json:"p"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	require.Len(t, plan, 6)
	want := []float64{90, 21.6, 360, 438.4, 0, 0}
	for i, w := range want {
		assert.InDelta(t, w, plan[i].P, 1e-9, plan[i].Name)
	}
	assert.Contains(t, summary, "status=satisfied")
}

func TestSolveCommand_CSVAndChart(t *testing.T) {
	chart := filepath.Join(t.TempDir(), "plan.html")
	out, _, err := execute(t, "solve", "-", "--format", "csv", "--chart", chart, "--bound")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[1], "windpark1,windturbine,"))
	html, err := os.ReadFile(chart)
	require.NoError(t, err)
	assert.Contains(t, string(html), "gasfiredbig2")
}

func TestSolveCommand_Errors(t *testing.T) {
	_, _, err := execute(t, "solve", writePayload(t), "--format", "xml")
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"load": -1, "fuels": {}, "powerplants": []}`), 0o644))
	_, _, err = execute(t, "solve", bad)
	assert.Error(t, err)

	_, _, err = execute(t, "solve", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSubmitCommand(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		w.Header().Set("X-Plan-Id", "p1")
		w.Header().Set("X-Plan-Status", "satisfied")
		w.Header().Set("X-Plan-Shortfall", "0")
		_, _ = w.Write([]byte(`[{"name":"windpark1","p":90}]`))
	}))
	defer srv.Close()

	out, info, err := execute(t, "submit", writePayload(t), "--url", srv.URL+"/productionplan")
	require.NoError(t, err)
	assert.JSONEq(t, payload3, string(got))
	assert.Equal(t, `[{"name":"windpark1","p":90}]`, out)
	assert.Contains(t, info, "plan p1 status=satisfied")
}

func TestSubmitCommand_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"load: is required"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, _, err := execute(t, "submit", writePayload(t), "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
