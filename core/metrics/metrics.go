// Package metrics defines the observability events the engine emits
// and the sink interfaces that record them. Sinks are optional
// capabilities: a recorder only receives the event types it declares.
package metrics

import (
	"time"

	"github.com/railyard-ops/railyard/core/model"
)

// PassEvent summarizes one planning pass.
type PassEvent struct {
	PassID          string
	ProposalsByKind map[model.ProposalKind]int
	Invalid         int
	DegradedBranch  int
	Duration        time.Duration
	Time            time.Time
}

// Sink records planning passes. Every metrics backend implements at
// least this.
type Sink interface {
	RecordPlanningPass(ev PassEvent) error
}

// CommitEvent reports the per-class effect counts of one commit.
type CommitEvent struct {
	PassID string
	Result model.CommitResult
	Time   time.Time
}

// CommitRecorder records commit outcomes.
type CommitRecorder interface {
	RecordCommit(ev CommitEvent) error
}

// MovementsEvent reports movement log growth observed by the watcher.
type MovementsEvent struct {
	NewRows   int
	TotalRows int
	Time      time.Time
}

// MovementsRecorder records movement log growth.
type MovementsRecorder interface {
	RecordMovements(ev MovementsEvent) error
}

// NopSink discards every event. Used when no backend is configured.
type NopSink struct{}

func (NopSink) RecordPlanningPass(PassEvent) error { return nil }
func (NopSink) RecordCommit(CommitEvent) error     { return nil }
func (NopSink) RecordMovements(MovementsEvent) error {
	return nil
}
