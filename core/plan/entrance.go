package plan

import (
	"strings"
	"time"

	"github.com/railyard-ops/railyard/core/eligibility"
	"github.com/railyard-ops/railyard/core/model"
	"github.com/railyard-ops/railyard/core/snapshot"
)

// Day-Mode runs 06:00 through 21:59 local time; everything else is
// Night-Mode.
const (
	dayModeStartHour = 6
	dayModeEndHour   = 22
)

func nightMode(t time.Time) bool {
	h := t.Hour()
	return h >= dayModeEndHour || h < dayModeStartHour
}

// planEntrance rotates the ready area. During the day it swaps the
// ranked top of the eligible fleet in and everything else out; at night
// it empties the entrance back into stabling.
func (p *Planner) planEntrance(pc *passCtx) ([]model.Proposal, error) {
	if nightMode(p.now()) {
		return p.planNightReturns(pc), nil
	}
	return p.planDaySwaps(pc), nil
}

func (p *Planner) planDaySwaps(pc *passCtx) []model.Proposal {
	snap := pc.snap
	entrance := p.cfg.Depot.Entrance()
	limit := p.cfg.Depot.EntranceCap

	current := snap.Occupants(entrance)
	currentSet := idSet(current)

	eligible := p.filter.EligibleIDs(snap.FleetIDs, snap)
	fresh := eligible[:0:0]
	for _, id := range eligible {
		if p.cleaningFresh(snap, id) {
			fresh = append(fresh, id)
		}
	}
	ranked := eligibility.Rank(fresh, snap, p.cfg.Policy)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	targetSet := idSet(ranked)

	picker := newStablingPicker(snap, p.cfg.Depot, pc.geo)
	var out []model.Proposal

	occupancy := len(current)
	for _, id := range current {
		if targetSet[normID(id)] {
			continue
		}
		rec, val := pc.builder.Movement(id, entrance, picker.pick(entrance), model.ActionSwapOut)
		out = append(out, model.EntranceProposal{
			ProposalInfo: pc.builder.info(id, rec, val),
			Phase:        model.EntranceSwapOut,
		})
		occupancy--
	}

	for _, id := range ranked {
		if occupancy >= limit {
			break
		}
		if currentSet[normID(id)] {
			continue
		}
		rec, val := pc.builder.Movement(id, p.sourceFor(snap, id), entrance, model.ActionSwapIn)
		out = append(out, model.EntranceProposal{
			ProposalInfo: pc.builder.info(id, rec, val),
			Phase:        model.EntranceSwapIn,
		})
		occupancy++
	}
	return out
}

func (p *Planner) planNightReturns(pc *passCtx) []model.Proposal {
	snap := pc.snap
	entrance := p.cfg.Depot.Entrance()

	occupants := snap.Occupants(entrance)
	if len(occupants) > p.cfg.Depot.EntranceCap {
		occupants = occupants[:p.cfg.Depot.EntranceCap]
	}

	picker := newStablingPicker(snap, p.cfg.Depot, pc.geo)
	var out []model.Proposal
	for _, id := range occupants {
		rec, val := pc.builder.Movement(id, entrance, picker.pick(entrance), model.ActionNightReturn)
		out = append(out, model.EntranceProposal{
			ProposalInfo: pc.builder.info(id, rec, val),
			Phase:        model.EntranceNightReturn,
		})
	}
	return out
}

// cleaningFresh reports whether the vehicle passes both cleanliness
// tiers. A vehicle with no cleaning record at all counts as fresh.
func (p *Planner) cleaningFresh(snap *snapshot.Snapshot, id string) bool {
	today := p.now()
	if cs, ok := snap.CleaningFor(model.CleanLight, id); ok && cs.NeedsCleaning(today, p.cfg.Clean.LightDays) {
		return false
	}
	if cs, ok := snap.CleaningFor(model.CleanDeep, id); ok && cs.NeedsCleaning(today, p.cfg.Clean.DeepDays) {
		return false
	}
	return true
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[normID(id)] = true
	}
	return set
}

func normID(id string) string { return strings.ToLower(strings.TrimSpace(id)) }

// stablingPicker hands out free stabling slots nearest-first, never
// assigning the same slot twice within one pass.
type stablingPicker struct {
	geo      nearestResolver
	free     []string
	fallback string
}

type nearestResolver interface {
	Nearest(source string, candidates []string) string
}

func newStablingPicker(snap *snapshot.Snapshot, depot Depot, geo nearestResolver) *stablingPicker {
	var free []string
	for _, loc := range depot.StablingLocations() {
		if len(snap.Occupants(loc)) == 0 {
			free = append(free, loc)
		}
	}
	return &stablingPicker{geo: geo, free: free, fallback: depot.DefaultStabling()}
}

func (sp *stablingPicker) pick(from string) string {
	if len(sp.free) == 0 {
		return sp.fallback
	}
	best := sp.geo.Nearest(from, sp.free)
	for i, loc := range sp.free {
		if loc == best {
			sp.free = append(sp.free[:i], sp.free[i+1:]...)
			break
		}
	}
	return best
}
