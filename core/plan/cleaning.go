package plan

import (
	"sort"

	"github.com/railyard-ops/railyard/core/model"
)

// planCleaningBranch proposes light then deep cleanings against one
// working copy of the slot table, so two candidates never claim the
// same capacity within a pass.
func (p *Planner) planCleaningBranch(pc *passCtx) ([]model.Proposal, error) {
	working := append([]model.CleaningSlot(nil), pc.snap.CleaningSlots...)
	out := p.planCleaning(pc, model.CleanLight, working)
	out = append(out, p.planCleaning(pc, model.CleanDeep, working)...)
	return out, nil
}

func (p *Planner) planCleaning(pc *passCtx, kind model.CleanKind, working []model.CleaningSlot) []model.Proposal {
	snap := pc.snap
	today := p.now()

	threshold := p.cfg.Clean.LightDays
	bay := p.cfg.Depot.LightCleanBay()
	action := model.ActionLightClean
	if kind == model.CleanDeep {
		threshold = p.cfg.Clean.DeepDays
		bay = p.cfg.Depot.DeepCleanBay()
		action = model.ActionDeepClean
	}

	var candidates []model.CleaningStatus
	for _, cs := range snap.Cleaning[kind] {
		if cs.NeedsCleaning(today, threshold) {
			candidates = append(candidates, cs)
		}
	}
	// Stalest first: when capacity runs out the freshest wait.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].StaleDays(today) > candidates[j].StaleDays(today)
	})

	needed := blocksFor(kind)
	var out []model.Proposal
	for _, cs := range candidates {
		run := FindConsecutiveSlots(working, today, needed)
		if run == nil {
			p.log.Warnf("no %s cleaning capacity left today, %d candidates deferred",
				kind, len(candidates)-len(out))
			break
		}
		markOccupied(working, run)

		rec, val := pc.builder.Movement(cs.VehicleID, p.sourceFor(snap, cs.VehicleID), bay, action)
		out = append(out, model.CleaningProposal{
			ProposalInfo: pc.builder.info(cs.VehicleID, rec, val),
			Tier:         kind,
			Slots:        run,
		})
	}
	return out
}

func markOccupied(working []model.CleaningSlot, run []model.CleaningSlot) {
	for _, r := range run {
		for i := range working {
			if working[i].Available() && sameDay(working[i].Date, r.Date) &&
				working[i].Start == r.Start && working[i].End == r.End {
				working[i].Status = model.SlotOccupied
				break
			}
		}
	}
}
