package eligibility

import (
	"math"
	"sort"

	"github.com/railyard-ops/railyard/core/snapshot"
)

// Policy selects the ranking order for entrance allocation.
type Policy string

const (
	// PolicyBrandingThenMileage sorts by remaining exposure hours
	// descending, breaking ties by cumulative distance ascending.
	PolicyBrandingThenMileage Policy = "brandingThenMileage"
	// PolicyMileageOnly sorts by cumulative distance ascending,
	// breaking ties by remaining exposure hours descending.
	PolicyMileageOnly Policy = "mileageOnly"
)

// Rank orders vehicles by the given policy. Vehicles without a mileage
// record sort as +infinity distance; the sort is stable so equal keys
// keep their input order across calls.
func Rank(ids []string, snap *snapshot.Snapshot, policy Policy) []string {
	type row struct {
		id    string
		hours float64
		km    float64
	}
	rows := make([]row, 0, len(ids))
	for _, id := range ids {
		km, ok := snap.TotalKM(id)
		if !ok {
			km = math.Inf(1)
		}
		rows = append(rows, row{id: id, hours: snap.RemainingBrandingHours(id), km: km})
	}

	less := func(a, b row) bool {
		if a.hours != b.hours {
			return a.hours > b.hours
		}
		return a.km < b.km
	}
	if policy == PolicyMileageOnly {
		less = func(a, b row) bool {
			if a.km != b.km {
				return a.km < b.km
			}
			return a.hours > b.hours
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })

	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out
}
