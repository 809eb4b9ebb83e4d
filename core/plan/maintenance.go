package plan

import (
	"github.com/railyard-ops/railyard/core/model"
)

// planMaintenance proposes one bay movement per open work order, oldest
// order first. The order itself rides on the proposal so approval can
// close exactly the order that triggered it.
func (p *Planner) planMaintenance(pc *passCtx) ([]model.Proposal, error) {
	snap := pc.snap
	bay := p.cfg.Depot.MaintenanceBay()

	var out []model.Proposal
	for _, w := range snap.OpenWorkOrders() {
		if w.VehicleID == "" {
			continue
		}
		rec, val := pc.builder.Movement(w.VehicleID, p.sourceFor(snap, w.VehicleID), bay, model.ActionMaintenance)
		out = append(out, model.MaintenanceProposal{
			ProposalInfo: pc.builder.info(w.VehicleID, rec, val),
			WorkOrder:    w,
		})
	}
	return out, nil
}

// planServiceChecks proposes an inspection visit for every vehicle
// whose A or B interval has lapsed, stamping today as the new check
// date for the commit step.
func (p *Planner) planServiceChecks(pc *passCtx) ([]model.Proposal, error) {
	snap := pc.snap
	today := p.now()
	bay := p.cfg.Depot.InspectionBay()

	var out []model.Proposal
	propose := func(kind model.ServiceKind, maxDays int, action string) {
		for _, chk := range snap.ServiceChecks[kind] {
			if !chk.Overdue(today, maxDays) {
				continue
			}
			rec, val := pc.builder.Movement(chk.VehicleID, p.sourceFor(snap, chk.VehicleID), bay, action)
			out = append(out, model.ServiceCheckProposal{
				ProposalInfo: pc.builder.info(chk.VehicleID, rec, val),
				Service:      kind,
				NewCheckDate: midnight(today),
			})
		}
	}
	propose(model.ServiceA, p.filter.Thresholds.AServiceMaxDays, model.ActionAServiceCheck)
	propose(model.ServiceB, p.filter.Thresholds.BServiceMaxDays, model.ActionBServiceCheck)
	return out, nil
}
