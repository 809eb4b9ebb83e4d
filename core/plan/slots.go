package plan

import (
	"sort"
	"time"

	"github.com/railyard-ops/railyard/core/model"
	"github.com/railyard-ops/railyard/core/store"
)

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FindConsecutiveSlots returns the earliest run of `needed` available
// slots on the requested day whose start times step by exactly one slot
// width. The input may be unsorted and may span several days; slots
// with an unparsable start time are ignored. Nil is returned when no
// run fits.
func FindConsecutiveSlots(slots []model.CleaningSlot, day time.Time, needed int) []model.CleaningSlot {
	if needed <= 0 {
		return nil
	}

	type timed struct {
		slot model.CleaningSlot
		min  int
	}
	var candidates []timed
	for _, s := range slots {
		if !s.Available() || !sameDay(s.Date, day) {
			continue
		}
		if m := store.ClockMinutes(s.Start); m >= 0 {
			candidates = append(candidates, timed{slot: s, min: m})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].min < candidates[j].min })

	var run []model.CleaningSlot
	prev := -1
	for _, c := range candidates {
		if len(run) > 0 && c.min != prev+model.SlotBlockMinutes {
			run = run[:0]
		}
		run = append(run, c.slot)
		prev = c.min
		if len(run) == needed {
			return run
		}
	}
	return nil
}
