package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/infra/logger"
)

// InfluxSink writes plans and setpoints to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSolve writes one plan_solved point.
func (s *InfluxSink) RecordSolve(ev coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, solvePoint(ev))
}

// RecordSetpoints writes one unit_setpoint point per unit in a single batch.
func (s *InfluxSink) RecordSetpoints(evs []coremetrics.SetpointEvent) error {
	if len(evs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, len(evs))
	for i, ev := range evs {
		points[i] = setpointPoint(ev)
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordRejection writes a plan_rejected point.
func (s *InfluxSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_rejected").
		AddTag("reason", ev.Reason).
		AddTag("component", "productionplan_api").
		AddField("count", 1).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func solvePoint(ev coremetrics.SolveEvent) *write.Point {
	return write.NewPointWithMeasurement("plan_solved").
		AddTag("plan_id", ev.PlanID).
		AddTag("status", ev.Status.String()).
		AddTag("component", "solver").
		AddField("load_mw", ev.Load).
		AddField("supplied_mw", ev.Supplied).
		AddField("shortfall_mw", ev.Shortfall).
		AddField("cost", ev.Cost).
		AddField("lower_bound", ev.LowerBound).
		AddField("units", ev.Units).
		AddField("duration_ms", float64(ev.Duration.Microseconds())/1000).
		SetTime(ev.Time)
}

func setpointPoint(ev coremetrics.SetpointEvent) *write.Point {
	return write.NewPointWithMeasurement("unit_setpoint").
		AddTag("plan_id", ev.PlanID).
		AddTag("unit", ev.Unit).
		AddTag("kind", ev.Kind).
		AddField("power_mw", ev.PowerMW).
		AddField("cost", ev.Cost).
		SetTime(ev.Time)
}
