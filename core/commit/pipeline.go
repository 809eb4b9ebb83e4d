// Package commit applies an approved payload to the external store.
// All writes of the engine funnel through this pipeline; everything
// upstream of approval is read-only.
package commit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/railyard-ops/railyard/core/logger"
	"github.com/railyard-ops/railyard/core/model"
	"github.com/railyard-ops/railyard/core/store"
)

// Invalidator drops cached reads for the named tables after a mutation
// lands. The snapshot loader satisfies it.
type Invalidator interface {
	Invalidate(tables ...string)
}

// Pipeline commits approval payloads. Mutation classes apply in a fixed
// order; within a class, effects whose target row no longer exists are
// skipped and counted out rather than failing the commit.
type Pipeline struct {
	store store.Store
	inv   Invalidator
	log   logger.Logger
	now   func() time.Time
}

// NewPipeline wires a Pipeline. The invalidator may be nil when no
// cache sits in front of the store.
func NewPipeline(st store.Store, inv Invalidator, log logger.Logger) (*Pipeline, error) {
	if st == nil {
		return nil, fmt.Errorf("commit: nil store provided to NewPipeline")
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Pipeline{store: st, inv: inv, log: log, now: time.Now}, nil
}

func (p *Pipeline) invalidate(tables ...string) {
	if p.inv != nil {
		p.inv.Invalidate(tables...)
	}
}

// Apply commits the payload and reports how many effects of each class
// landed. A store error aborts the remaining classes; the partial
// result is still returned so the caller can see what already applied.
func (p *Pipeline) Apply(ctx context.Context, payload model.ApprovalPayload) (model.CommitResult, error) {
	var res model.CommitResult
	if payload.Empty() {
		return res, nil
	}

	steps := []struct {
		name string
		run  func(context.Context, model.ApprovalPayload, *model.CommitResult) error
	}{
		{"append logs", p.appendLogs},
		{"occupy cleaning slots", p.occupySlots},
		{"close work orders", p.closeWorkOrders},
		{"update service checks", p.updateServiceChecks},
		{"update branding", p.updateBranding},
	}
	for _, s := range steps {
		if err := s.run(ctx, payload, &res); err != nil {
			return res, fmt.Errorf("commit: %s: %w", s.name, err)
		}
	}
	p.log.Infof("commit applied: %d logs, %d slots, %d orders, %d checks, %d branding",
		res.LogsAppended, res.SlotsOccupied, res.WorkOrdersClosed,
		res.ServiceChecksUpdated, res.BrandingUpdated)
	return res, nil
}

func (p *Pipeline) appendLogs(ctx context.Context, payload model.ApprovalPayload, res *model.CommitResult) error {
	if len(payload.Logs) == 0 {
		return nil
	}
	rows := make([]store.Row, 0, len(payload.Logs))
	for _, l := range payload.Logs {
		rows = append(rows, store.Row{
			"Vehicle_ID":  l.VehicleID,
			"Source":      l.Source,
			"Destination": l.Destination,
			"Start_Time":  store.FormatDateTime(l.Start),
			"End_Time":    store.FormatDateTime(l.End),
			"Action":      l.Action,
		})
	}
	if err := p.store.AppendRows(ctx, store.TableMovements, rows); err != nil {
		return err
	}
	res.LogsAppended = len(rows)
	p.invalidate(store.TableMovements)
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (p *Pipeline) occupySlots(ctx context.Context, payload model.ApprovalPayload, res *model.CommitResult) error {
	if len(payload.CleaningSlots) == 0 {
		return nil
	}
	rows, err := p.store.ReadTable(ctx, store.TableCleaningSlots)
	if err != nil {
		return err
	}
	for _, ref := range payload.CleaningSlots {
		idx := -1
		for i, r := range rows {
			if !strings.EqualFold(store.Field(r, store.StatusCols...), string(model.SlotAvailable)) {
				continue
			}
			date := store.ParseDate(store.Field(r, store.DateCols...))
			if !sameDay(date, ref.Date) {
				continue
			}
			if store.ClockMinutes(store.Field(r, store.StartCols...)) != store.ClockMinutes(ref.Start) {
				continue
			}
			if store.ClockMinutes(store.Field(r, store.EndCols...)) != store.ClockMinutes(ref.End) {
				continue
			}
			idx = i
			break
		}
		if idx < 0 {
			// Already occupied or gone: another pass won the slot.
			p.log.Warnf("cleaning slot %s %s not available, skipped",
				store.FormatDate(ref.Date), ref.Start)
			continue
		}
		row := rows[idx].Clone()
		store.SetField(row, string(model.SlotOccupied), store.StatusCols...)
		if err := p.store.UpdateRow(ctx, store.TableCleaningSlots, idx, row); err != nil {
			return err
		}
		rows[idx] = row
		res.SlotsOccupied++
	}
	if res.SlotsOccupied > 0 {
		p.invalidate(store.TableCleaningSlots)
	}
	return nil
}

func (p *Pipeline) closeWorkOrders(ctx context.Context, payload model.ApprovalPayload, res *model.CommitResult) error {
	if len(payload.WorkOrdersToClose) == 0 {
		return nil
	}
	rows, err := p.store.ReadTable(ctx, store.TableWorkOrders)
	if err != nil {
		return err
	}
	idCols := []string{"WorkOrder_ID", "JobCard_ID", "Order_ID"}
	closed := func(r store.Row) bool {
		return strings.EqualFold(store.Field(r, store.StatusCols...), string(model.WorkOrderClosed))
	}
	for _, ref := range payload.WorkOrdersToClose {
		idx := -1
		if ref.ID != "" {
			for i, r := range rows {
				if store.Field(r, idCols...) == ref.ID {
					idx = i
					break
				}
			}
		} else {
			// No explicit id: close the vehicle's oldest Open order.
			// In-Progress orders are someone's active work, left alone.
			var oldest time.Time
			for i, r := range rows {
				if !strings.EqualFold(store.Field(r, store.VehicleIDCols...), ref.VehicleID) ||
					!strings.EqualFold(store.Field(r, store.StatusCols...), string(model.WorkOrderOpen)) {
					continue
				}
				opened := store.ParseDate(store.Field(r, "Opened_Date"))
				if idx < 0 || opened.Before(oldest) {
					idx, oldest = i, opened
				}
			}
		}
		if idx < 0 {
			p.log.Warnf("work order %q (vehicle %s) not found, skipped", ref.ID, ref.VehicleID)
			continue
		}
		if closed(rows[idx]) {
			// Re-applying the same payload must not count twice.
			continue
		}
		row := rows[idx].Clone()
		store.SetField(row, string(model.WorkOrderClosed), store.StatusCols...)
		store.SetField(row, store.FormatDate(p.now()), "Closed_Date")
		if err := p.store.UpdateRow(ctx, store.TableWorkOrders, idx, row); err != nil {
			return err
		}
		rows[idx] = row
		res.WorkOrdersClosed++
	}
	if res.WorkOrdersClosed > 0 {
		p.invalidate(store.TableWorkOrders)
	}
	return nil
}

func (p *Pipeline) updateServiceChecks(ctx context.Context, payload model.ApprovalPayload, res *model.CommitResult) error {
	if len(payload.ServiceChecks) == 0 {
		return nil
	}
	today := store.FormatDate(p.now())
	for _, upd := range payload.ServiceChecks {
		table := store.TableAService
		dateCols := []string{"A_Check_Date", "a_check_date", "A_Check"}
		if upd.Kind == model.ServiceB {
			table = store.TableBService
			dateCols = []string{"B_Check_Date", "b_check_date", "B_Check"}
		}
		rows, err := p.store.ReadTable(ctx, table)
		if err != nil {
			return err
		}
		idx := -1
		for i, r := range rows {
			if strings.EqualFold(store.Field(r, store.VehicleIDCols...), upd.VehicleID) {
				idx = i
				break
			}
		}
		if idx < 0 {
			p.log.Warnf("no %s check row for vehicle %s, skipped", upd.Kind, upd.VehicleID)
			continue
		}
		row := rows[idx].Clone()
		store.SetField(row, today, dateCols...)
		if err := p.store.UpdateRow(ctx, table, idx, row); err != nil {
			return err
		}
		res.ServiceChecksUpdated++
		p.invalidate(table)
	}
	return nil
}

func (p *Pipeline) updateBranding(ctx context.Context, payload model.ApprovalPayload, res *model.CommitResult) error {
	if len(payload.BrandingAccruals) == 0 {
		return nil
	}
	rows, err := p.store.ReadTable(ctx, store.TableBranding)
	if err != nil {
		return err
	}
	for _, acc := range payload.BrandingAccruals {
		// Last occurrence wins, matching how the snapshot reads the
		// table.
		idx := -1
		for i, r := range rows {
			if strings.EqualFold(store.Field(r, store.VehicleIDCols...), acc.VehicleID) {
				idx = i
			}
		}
		if idx < 0 {
			p.log.Warnf("no branding campaign for vehicle %s, skipped", acc.VehicleID)
			continue
		}
		row := rows[idx].Clone()
		required := store.ParseNumber(store.Field(row, "Required_Hours"), 0)
		accumulated := store.ParseNumber(store.Field(row, "Accumulated_Hours"), 0) + acc.AddHours
		remaining := required - accumulated
		if remaining < 0 {
			remaining = 0
		}
		store.SetField(row, formatHours(accumulated), "Accumulated_Hours")
		store.SetField(row, formatHours(remaining), "Remaining_Hours")
		if err := p.store.UpdateRow(ctx, store.TableBranding, idx, row); err != nil {
			return err
		}
		rows[idx] = row
		res.BrandingUpdated++
	}
	if res.BrandingUpdated > 0 {
		p.invalidate(store.TableBranding)
	}
	return nil
}

func formatHours(h float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", h), "0"), ".")
}
