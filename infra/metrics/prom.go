// Package metrics provides the Prometheus and InfluxDB backends for
// the engine's observability events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/railyard-ops/railyard/core/metrics"
)

// PromSink records planning and commit events as Prometheus metrics.
type PromSink struct {
	passes    prometheus.Counter
	proposals *prometheus.CounterVec
	invalid   prometheus.Counter
	duration  prometheus.Histogram
	effects   *prometheus.CounterVec
	logSize   prometheus.Gauge
}

// NewPromSink registers the engine metrics on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one. Re-registration reuses
// the existing collectors so repeated construction is safe.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	passes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "railyard_planning_passes_total",
		Help: "Total number of planning passes run",
	})
	proposals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "railyard_proposals_total",
		Help: "Proposals produced, by kind",
	}, []string{"kind"})
	invalid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "railyard_invalid_proposals_total",
		Help: "Proposals that failed validation",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "railyard_pass_duration_seconds",
		Help:    "Wall time of a planning pass",
		Buckets: prometheus.DefBuckets,
	})
	effects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "railyard_commit_effects_total",
		Help: "Committed effects, by mutation class",
	}, []string{"class"})
	logSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "railyard_movement_log_rows",
		Help: "Row count of the movement log at last observation",
	})

	if err := reg.Register(passes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			passes = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(proposals); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			proposals = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(invalid); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			invalid = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(effects); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			effects = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(logSize); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			logSize = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		passes:    passes,
		proposals: proposals,
		invalid:   invalid,
		duration:  duration,
		effects:   effects,
		logSize:   logSize,
	}, nil
}

// RecordPlanningPass counts the pass and its proposals.
func (s *PromSink) RecordPlanningPass(ev coremetrics.PassEvent) error {
	s.passes.Inc()
	for kind, n := range ev.ProposalsByKind {
		s.proposals.WithLabelValues(string(kind)).Add(float64(n))
	}
	s.invalid.Add(float64(ev.Invalid))
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordCommit counts committed effects per mutation class.
func (s *PromSink) RecordCommit(ev coremetrics.CommitEvent) error {
	s.effects.WithLabelValues("logs").Add(float64(ev.Result.LogsAppended))
	s.effects.WithLabelValues("slots").Add(float64(ev.Result.SlotsOccupied))
	s.effects.WithLabelValues("work_orders").Add(float64(ev.Result.WorkOrdersClosed))
	s.effects.WithLabelValues("service_checks").Add(float64(ev.Result.ServiceChecksUpdated))
	s.effects.WithLabelValues("branding").Add(float64(ev.Result.BrandingUpdated))
	return nil
}

// RecordMovements tracks the movement log size.
func (s *PromSink) RecordMovements(ev coremetrics.MovementsEvent) error {
	s.logSize.Set(float64(ev.TotalRows))
	return nil
}
