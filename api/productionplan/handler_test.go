package productionplan

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/productionplan/core/events"
	"github.com/kilianp07/productionplan/core/merit"
	"github.com/kilianp07/productionplan/core/model"
	"github.com/kilianp07/productionplan/infra/logger"
	"github.com/kilianp07/productionplan/internal/eventbus"
)

const examplePayload = `{
  "load": LOAD,
  "fuels": {"gas(euro/MWh)": 10, "kerosine(euro/MWh)": 50, "co2(euro/ton)": 20, "wind(%)": 50},
  "powerplants": [
    {"name": "W1", "type": "windturbine", "efficiency": 1, "pmin": 0, "pmax": 100},
    {"name": "G1", "type": "gasfired", "efficiency": 0.5, "pmin": 20, "pmax": 200},
    {"name": "G2", "type": "gasfired", "efficiency": 0.25, "pmin": 20, "pmax": 150}
  ]
}`

const payload1 = `{
  "load": 480,
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

func examplePayloadWithLoad(load string) string {
	return strings.Replace(examplePayload, "LOAD", load, 1)
}

func newTestHandler(opts Options) (*Handler, *eventbus.Bus) {
	bus := eventbus.New()
	solver := merit.NewSolver(logger.NopLogger{}, false)
	return NewHandler(solver, bus, logger.NopLogger{}, opts), bus
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/productionplan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodePlan(t *testing.T, rr *httptest.ResponseRecorder) []model.Assignment {
	t.Helper()
	var out []model.Assignment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestHandler_Example(t *testing.T) {
	h, bus := newTestHandler(Options{})
	sub := bus.Subscribe()

	rr := post(h, examplePayloadWithLoad("300"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "satisfied", rr.Header().Get(HeaderPlanStatus))
	assert.Equal(t, "0", rr.Header().Get(HeaderPlanShortfall))
	assert.NotEmpty(t, rr.Header().Get(HeaderPlanID))

	out := decodePlan(t, rr)
	require.Len(t, out, 3)
	want := []model.Assignment{{Name: "W1", Power: 50}, {Name: "G1", Power: 180}, {Name: "G2", Power: 70}}
	for i, w := range want {
		assert.Equal(t, w.Name, out[i].Name)
		assert.InDelta(t, w.Power, out[i].Power, 1e-9)
	}

	select {
	case ev := <-sub:
		pe, ok := ev.(events.PlanEvent)
		require.True(t, ok, "expected plan event, got %T", ev)
		assert.Equal(t, rr.Header().Get(HeaderPlanID), pe.Plan.ID)
		assert.Equal(t, 20.0, pe.Fuels.CO2)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}

func TestHandler_WireKeys(t *testing.T) {
	h, _ := newTestHandler(Options{})
	rr := post(h, examplePayloadWithLoad("300"))
	require.Equal(t, http.StatusOK, rr.Code)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.Equal(t, map[string]any{"name": "W1", "p": 50.0}, raw[0])
}

func TestHandler_Payload1(t *testing.T) {
	h, _ := newTestHandler(Options{})
	rr := post(h, payload1)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	out := decodePlan(t, rr)
	want := map[string]float64{
		"windpark1": 90, "windpark2": 21.6, "gasfiredbig1": 368.4,
		"gasfiredbig2": 0, "gasfiredsomewhatsmaller": 0, "tj1": 0,
	}
	require.Len(t, out, len(want))
	assert.Equal(t, "windpark1", out[0].Name)
	assert.Equal(t, "tj1", out[5].Name)
	sum := 0.0
	for _, a := range out {
		assert.InDelta(t, want[a.Name], a.Power, 1e-9, a.Name)
		sum += a.Power
	}
	assert.InDelta(t, 480, sum, 1e-9)
}

func TestHandler_Undersupply(t *testing.T) {
	h, _ := newTestHandler(Options{})
	rr := post(h, examplePayloadWithLoad("1000"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "exhausted", rr.Header().Get(HeaderPlanStatus))
	assert.Equal(t, "770", rr.Header().Get(HeaderPlanShortfall))
	out := decodePlan(t, rr)
	require.Len(t, out, 3)
	assert.InDelta(t, 50, out[0].Power, 1e-9)
	assert.InDelta(t, 180, out[1].Power, 1e-9)
	assert.InDelta(t, 0, out[2].Power, 1e-9)
}

func TestHandler_RejectUndersupply(t *testing.T) {
	h, _ := newTestHandler(Options{RejectUndersupply: true})
	rr := post(h, examplePayloadWithLoad("1000"))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.NotNil(t, body.Shortfall)
	assert.InDelta(t, 770, *body.Shortfall, 1e-9)

	rr = post(h, examplePayloadWithLoad("300"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_BadRequests(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"malformed", `{"load":`, ""},
		{"missing load", `{"fuels": {}, "powerplants": []}`, "load"},
		{"negative load", examplePayloadWithLoad("-5"), "load"},
		{"missing fuels", `{"load": 10, "powerplants": []}`, "fuels"},
		{"missing gas price", `{"load": 10, "fuels": {}, "powerplants": [
			{"name": "G1", "type": "gasfired", "efficiency": 0.5, "pmin": 0, "pmax": 10}]}`, "fuels.gas(euro/MWh)"},
		{"missing wind", `{"load": 10, "fuels": {}, "powerplants": [
			{"name": "W1", "type": "windturbine", "pmin": 0, "pmax": 10}]}`, "fuels.wind(%)"},
		{"wind above 100", `{"load": 10, "fuels": {"wind(%)": 120}, "powerplants": []}`, "fuels.wind(%)"},
		{"missing efficiency", `{"load": 10, "fuels": {"gas(euro/MWh)": 1}, "powerplants": [
			{"name": "G1", "type": "gasfired", "pmin": 0, "pmax": 10}]}`, "powerplants[0].efficiency"},
		{"zero efficiency", `{"load": 10, "fuels": {"gas(euro/MWh)": 1}, "powerplants": [
			{"name": "G1", "type": "gasfired", "efficiency": 0, "pmin": 0, "pmax": 10}]}`, "powerplants[0].efficiency"},
		{"efficiency above 1", `{"load": 10, "fuels": {"kerosine(euro/MWh)": 1}, "powerplants": [
			{"name": "T1", "type": "turbojet", "efficiency": 1.5, "pmin": 0, "pmax": 10}]}`, "powerplants[0].efficiency"},
		{"missing powerplants", `{"load": 10, "fuels": {"gas(euro/MWh)": 1}}`, "powerplants"},
		{"missing pmax", `{"load": 10, "fuels": {"gas(euro/MWh)": 1}, "powerplants": [
			{"name": "G1", "type": "gasfired", "efficiency": 0.5, "pmin": 0}]}`, "powerplants[0].pmax"},
		{"pmin above pmax", `{"load": 10, "fuels": {"gas(euro/MWh)": 1}, "powerplants": [
			{"name": "G1", "type": "gasfired", "efficiency": 0.5, "pmin": 20, "pmax": 10}]}`, "powerplants[0]"},
		{"duplicate names", `{"load": 10, "fuels": {"gas(euro/MWh)": 1}, "powerplants": [
			{"name": "G1", "type": "gasfired", "efficiency": 0.5, "pmin": 0, "pmax": 10},
			{"name": "G1", "type": "gasfired", "efficiency": 0.5, "pmin": 0, "pmax": 10}]}`, "powerplants"},
		{"unsupported type", `{"load": 10, "fuels": {}, "powerplants": [
			{"name": "N1", "type": "nuclear", "efficiency": 0.3, "pmin": 0, "pmax": 10}]}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, bus := newTestHandler(Options{})
			sub := bus.Subscribe()
			rr := post(h, tc.body)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			var body errorBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			if tc.field != "" {
				fields := make([]string, len(body.Fields))
				for i, f := range body.Fields {
					fields[i] = f.Field
				}
				assert.Contains(t, fields, tc.field)
			}
			ev := <-sub
			_, ok := ev.(events.RejectionEvent)
			assert.True(t, ok, "expected rejection event, got %T", ev)
		})
	}
}

func TestHandler_UnsupportedTypeReason(t *testing.T) {
	h, bus := newTestHandler(Options{})
	sub := bus.Subscribe()
	post(h, `{"load": 10, "fuels": {}, "powerplants": [
		{"name": "N1", "type": "nuclear", "efficiency": 0.3, "pmin": 0, "pmax": 10}]}`)
	ev := (<-sub).(events.RejectionEvent)
	assert.Equal(t, "unsupported_type", ev.Reason)
	assert.ErrorIs(t, ev.Err, merit.ErrUnsupportedUnitType)
}

func TestHandler_EmptyPlan(t *testing.T) {
	h, _ := newTestHandler(Options{})
	rr := post(h, `{"load": 0, "fuels": {}, "powerplants": []}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
	assert.Equal(t, "satisfied", rr.Header().Get(HeaderPlanStatus))
}

// Efficiency is meaningless for wind turbines, whatever value is sent.
func TestHandler_WindEfficiencyIgnored(t *testing.T) {
	for _, eff := range []string{"0", "1.5", "-1"} {
		t.Run(eff, func(t *testing.T) {
			h, _ := newTestHandler(Options{})
			rr := post(h, `{"load": 50, "fuels": {"gas(euro/MWh)": 10, "wind(%)": 50}, "powerplants": [
				{"name": "W1", "type": "windturbine", "efficiency": `+eff+`, "pmin": 0, "pmax": 100}]}`)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, []model.Assignment{{Name: "W1", Power: 50}}, decodePlan(t, rr))
			assert.Equal(t, "satisfied", rr.Header().Get(HeaderPlanStatus))
		})
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(Options{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/productionplan", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandler_BodyTooLarge(t *testing.T) {
	h, _ := newTestHandler(Options{MaxBodyBytes: 16})
	rr := post(h, payload1)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealthHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
