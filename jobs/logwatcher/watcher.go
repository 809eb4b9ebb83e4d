// Package logwatcher polls the movement log and announces growth on
// the event bus, so notifiers react to movements committed by anyone,
// not just this process.
package logwatcher

import (
	"context"
	"time"

	"github.com/railyard-ops/railyard/core/logger"
	coremetrics "github.com/railyard-ops/railyard/core/metrics"
	"github.com/railyard-ops/railyard/core/store"
	"github.com/railyard-ops/railyard/internal/eventbus"
)

// Watcher tracks the movement log's row count between polls.
type Watcher struct {
	store    store.Store
	bus      eventbus.EventBus
	sink     coremetrics.Sink
	log      logger.Logger
	interval time.Duration

	// baseline is the last observed row count; -1 until the first
	// successful poll.
	baseline int
	now      func() time.Time
}

// New creates a Watcher. Bus and sink may be nil; intervals below one
// second fall back to fifteen seconds.
func New(st store.Store, bus eventbus.EventBus, sink coremetrics.Sink, log logger.Logger, interval time.Duration) *Watcher {
	if log == nil {
		log = logger.Nop{}
	}
	if interval < time.Second {
		interval = 15 * time.Second
	}
	return &Watcher{
		store:    st,
		bus:      bus,
		sink:     sink,
		log:      log,
		interval: interval,
		baseline: -1,
		now:      time.Now,
	}
}

// Run polls until the context is cancelled. Poll errors are logged and
// retried on the next tick.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if err := w.Poll(ctx); err != nil {
			w.log.Warnf("movement log poll failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll reads the log once and publishes an event when it grew. The
// first poll only establishes the baseline. A shrinking log means the
// sheet was truncated or reloaded; the baseline resets silently so the
// next growth is measured against the new size.
func (w *Watcher) Poll(ctx context.Context) error {
	rows, err := w.store.ReadTable(ctx, store.TableMovements)
	if err != nil {
		return err
	}
	count := len(rows)
	switch {
	case w.baseline < 0:
		w.baseline = count
	case count < w.baseline:
		w.log.Infof("movement log shrank from %d to %d rows, baseline reset", w.baseline, count)
		w.baseline = count
	case count > w.baseline:
		ev := coremetrics.MovementsEvent{
			NewRows:   count - w.baseline,
			TotalRows: count,
			Time:      w.now(),
		}
		w.baseline = count
		if w.bus != nil {
			w.bus.Publish(ev)
		}
		if rec, ok := w.sink.(coremetrics.MovementsRecorder); ok {
			if err := rec.RecordMovements(ev); err != nil {
				w.log.Warnf("record movements: %v", err)
			}
		}
	}
	return nil
}
