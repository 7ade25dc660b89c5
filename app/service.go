package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	planlogapi "github.com/kilianp07/productionplan/api/planlog"
	"github.com/kilianp07/productionplan/api/productionplan"
	"github.com/kilianp07/productionplan/config"
	"github.com/kilianp07/productionplan/core/merit"
	coremetrics "github.com/kilianp07/productionplan/core/metrics"
	coremon "github.com/kilianp07/productionplan/core/monitoring"
	coremqtt "github.com/kilianp07/productionplan/core/mqtt"
	"github.com/kilianp07/productionplan/core/planlog"
	"github.com/kilianp07/productionplan/infra/logger"
	"github.com/kilianp07/productionplan/infra/metrics"
	"github.com/kilianp07/productionplan/infra/monitoring"
	"github.com/kilianp07/productionplan/infra/mqtt"
	"github.com/kilianp07/productionplan/internal/eventbus"
)

// Service wires the plan handler to its metrics, plan log and setpoint
// publishing consumers.
type Service struct {
	cfg    *config.Config
	Solver *merit.Solver
	bus    *eventbus.Bus
	sink   coremetrics.MetricsSink
	store  planlog.LogStore
	mqtt   *mqtt.PahoClient
	log    logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := planlog.NewStore(cfg.PlanLog.Module())
	if err != nil {
		coremetrics.CloseSink(sink)
		return nil, fmt.Errorf("plan log: %w", err)
	}
	svc := &Service{
		cfg:    cfg,
		Solver: merit.NewSolver(logger.New("solver"), cfg.Solver.LowerBound),
		bus:    eventbus.New(),
		sink:   sink,
		store:  store,
		log:    logg,
	}
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqtt = client
	}
	return svc, nil
}

// Handler returns the HTTP routes of the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/productionplan", productionplan.NewHandler(s.Solver, s.bus, logger.New("api"), productionplan.Options{
		RejectUndersupply: s.cfg.Solver.RejectUndersupply,
		MaxBodyBytes:      s.cfg.Server.MaxBodyBytes,
	}))
	mux.Handle("/healthz", productionplan.NewHealthHandler())
	if s.store != nil && s.cfg.Server.LogToken != "" {
		mux.Handle("/api/plans/logs", planlogapi.NewLogHandler(s.store, s.cfg.Server.LogToken))
	}
	return mux
}

// Run listens on the configured address and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve starts the event consumers and serves HTTP on ln until the context
// is cancelled.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	consumers := []<-chan struct{}{
		metrics.StartEventCollector(ctx, s.bus, s.sink),
		planlog.StartRecorder(ctx, s.bus, s.store, logger.New("planlog")),
	}
	if s.mqtt != nil {
		fwd := &coremqtt.Forwarder{Publisher: s.mqtt, AckTimeout: s.mqtt.AckTimeout(), Log: logger.New("setpoints")}
		consumers = append(consumers, fwd.Start(ctx, s.bus))
	}
	if addr := s.cfg.Metrics.PrometheusAddress; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("serving production plans on %s", ln.Addr())
	err := srv.Serve(ln)
	// consumers drain until the bus is closed
	s.bus.Close()
	for _, done := range consumers {
		<-done
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var err error
	if s.store != nil {
		err = s.store.Close()
	}
	coremetrics.CloseSink(s.sink)
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	coremon.Flush(2 * time.Second)
	return err
}
