// Package app wires the configuration into a running service: store
// client, snapshot loader, planner, commit pipeline, API server,
// watcher and notifiers.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/railyard-ops/railyard/api"
	"github.com/railyard-ops/railyard/config"
	"github.com/railyard-ops/railyard/core/commit"
	"github.com/railyard-ops/railyard/core/eligibility"
	coremetrics "github.com/railyard-ops/railyard/core/metrics"
	"github.com/railyard-ops/railyard/core/plan"
	"github.com/railyard-ops/railyard/core/snapshot"
	"github.com/railyard-ops/railyard/infra/logger"
	"github.com/railyard-ops/railyard/infra/metrics"
	"github.com/railyard-ops/railyard/infra/mqtt"
	infrastore "github.com/railyard-ops/railyard/infra/store"
	"github.com/railyard-ops/railyard/internal/eventbus"
	"github.com/railyard-ops/railyard/jobs/logwatcher"
)

// Service owns every long-running component of the engine.
type Service struct {
	cfg      *config.Config
	planner  *plan.Planner
	pipeline *commit.Pipeline
	server   *api.Server
	watcher  *logwatcher.Watcher
	notifier *mqtt.Notifier
	bus      *eventbus.Bus
	sink     coremetrics.Sink
	log      logger.Logger
}

// New builds a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	st, err := infrastore.NewHTTPStore(cfg.Store, nil)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	loader, err := snapshot.NewLoader(st, snapshot.NewCache(), snapshot.DefaultTTLs(), logger.New("snapshot"))
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken,
			cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	filter := &eligibility.Filter{Thresholds: cfg.Planner.Thresholds()}
	planner := plan.NewPlanner(loader, filter, cfg.Planner.PlanConfig(), logger.New("planner"))
	pipeline, err := commit.NewPipeline(st, loader, logger.New("commit"))
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	bus := eventbus.New(32)
	svc := &Service{
		cfg:      cfg,
		planner:  planner,
		pipeline: pipeline,
		server:   api.New(planner, pipeline, sink, bus, logger.New("api")),
		bus:      bus,
		sink:     sink,
		log:      log,
	}
	if cfg.Watcher.Enabled {
		svc.watcher = logwatcher.New(st, bus, sink, logger.New("logwatcher"),
			time.Duration(cfg.Watcher.IntervalSeconds)*time.Second)
	}
	if cfg.MQTT.Enabled {
		notifier, err := mqtt.NewNotifier(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt: %w", err)
		}
		svc.notifier = notifier
	}
	return svc, nil
}

// Run starts every component and blocks until the context is cancelled
// or one of them fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{Addr: s.cfg.Server.Addr, Handler: s.server.Router()}
	g.Go(func() error {
		s.log.Infof("api listening on %s", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if s.cfg.Metrics.PrometheusEnabled {
		g.Go(func() error {
			return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr)
		})
	}
	if s.watcher != nil {
		g.Go(func() error {
			err := s.watcher.Run(ctx)
			if err == context.Canceled {
				return nil
			}
			return err
		})
	}
	if s.notifier != nil {
		events := s.bus.Subscribe()
		g.Go(func() error {
			err := s.notifier.Run(ctx, events)
			if err == context.Canceled {
				return nil
			}
			return err
		})
	}

	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// Close releases broker and backend connections.
func (s *Service) Close() error {
	s.bus.Close()
	if s.notifier != nil {
		s.notifier.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
