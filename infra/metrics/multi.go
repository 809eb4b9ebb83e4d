package metrics

import coremetrics "github.com/railyard-ops/railyard/core/metrics"

// MultiSink fans events out to multiple sinks, forwarding each optional
// event type only to the sinks that record it.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlanningPass forwards the pass to all sinks, returning the
// first error encountered.
func (m *MultiSink) RecordPlanningPass(ev coremetrics.PassEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlanningPass(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommit forwards commit outcomes.
func (m *MultiSink) RecordCommit(ev coremetrics.CommitEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.CommitRecorder); ok {
			if err := rec.RecordCommit(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordMovements forwards movement log observations.
func (m *MultiSink) RecordMovements(ev coremetrics.MovementsEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.MovementsRecorder); ok {
			if err := rec.RecordMovements(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
