package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/core/model"
)

type capture struct {
	mu     sync.Mutex
	bodies []string
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.bodies = append(c.bodies, string(data))
		c.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestInfluxSink_RecordSolve(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler())
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.SolveEvent{
		PlanID:   "p1",
		Load:     300,
		Supplied: 300,
		Cost:     6400,
		Status:   model.PlanSatisfied,
		Units:    3,
		Duration: 2 * time.Millisecond,
		Time:     now,
	}
	if err := sink.RecordSolve(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	expected := strings.TrimSpace(write.PointToLineProtocol(solvePoint(ev), time.Nanosecond))
	if len(c.bodies) != 1 || strings.TrimSpace(c.bodies[0]) != expected {
		t.Errorf("unexpected body: %v", c.bodies)
	}
	if !strings.Contains(expected, "status=satisfied") || !strings.Contains(expected, "plan_solved,") {
		t.Errorf("unexpected line protocol: %s", expected)
	}
}

func TestInfluxSink_RecordSetpointsBatch(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler())
	defer srv.Close()

	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	evs := []coremetrics.SetpointEvent{
		{PlanID: "p1", Unit: "W1", Kind: "windturbine", PowerMW: 50, Time: now},
		{PlanID: "p1", Unit: "G1", Kind: "gasfired", PowerMW: 180, Cost: 20, Time: now},
	}
	if err := sink.RecordSetpoints(evs); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if len(c.bodies) != 1 {
		t.Fatalf("expected one batch got %d", len(c.bodies))
	}
	lines := strings.Split(strings.TrimSpace(c.bodies[0]), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines got %q", c.bodies[0])
	}
	if !strings.Contains(lines[1], "unit=G1") {
		t.Errorf("unexpected line %s", lines[1])
	}
	if err := sink.RecordSetpoints(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
