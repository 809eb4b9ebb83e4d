package plan

import (
	"math"
	"sort"
	"time"

	"github.com/railyard-ops/railyard/core/location"
	"github.com/railyard-ops/railyard/core/model"
)

// DailyDwell computes, per vehicle, the hours spent at the given
// location during the calendar day of `day`. Arrivals are movements
// ending at the location, departures are movements leaving it; a stay
// still open at end of day is clamped to midnight. Hours are rounded to
// two decimals.
func DailyDwell(movements []model.MovementRecord, loc string, day time.Time) map[string]float64 {
	dayStart := midnight(day)
	dayEnd := dayStart.AddDate(0, 0, 1)
	want := location.Normalize(loc)

	sorted := append([]model.MovementRecord(nil), movements...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].End.Equal(sorted[j].End) {
			return sorted[i].End.Before(sorted[j].End)
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	clamp := func(t time.Time) time.Time {
		if t.Before(dayStart) {
			return dayStart
		}
		if t.After(dayEnd) {
			return dayEnd
		}
		return t
	}

	arrivals := make(map[string]time.Time)
	dwell := make(map[string]time.Duration)
	for _, m := range sorted {
		id := normID(m.VehicleID)
		if id == "" {
			continue
		}
		if location.Normalize(m.Source) == want {
			if arr, open := arrivals[id]; open {
				if dep := clamp(m.Start); dep.After(arr) {
					dwell[id] += dep.Sub(arr)
				}
				delete(arrivals, id)
			}
		}
		if location.Normalize(m.Destination) == want && m.End.Before(dayEnd) {
			arrivals[id] = clamp(m.End)
		}
	}
	for id, arr := range arrivals {
		dwell[id] += dayEnd.Sub(arr)
	}

	hours := make(map[string]float64, len(dwell))
	for id, d := range dwell {
		if h := math.Round(d.Hours()*100) / 100; h > 0 {
			hours[id] = h
		}
	}
	return hours
}

// planBranding turns today's ready-area dwell into accrual deltas for
// vehicles carrying an active campaign. Vehicles that never dwelled are
// omitted rather than reported as zero.
func (p *Planner) planBranding(pc *passCtx) []model.BrandingAccrual {
	snap := pc.snap
	hours := DailyDwell(snap.Movements, p.cfg.Depot.Entrance(), p.now())

	seen := make(map[string]bool)
	var out []model.BrandingAccrual
	for _, c := range snap.Branding {
		id := normID(c.VehicleID)
		if seen[id] {
			continue
		}
		seen[id] = true
		if h, ok := hours[id]; ok {
			out = append(out, model.BrandingAccrual{VehicleID: c.VehicleID, AddHours: h})
		}
	}
	return out
}
