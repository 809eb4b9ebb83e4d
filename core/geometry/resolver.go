// Package geometry answers travel-cost questions between depot
// locations from the stabling topology table.
package geometry

import (
	"time"

	"github.com/railyard-ops/railyard/core/location"
	"github.com/railyard-ops/railyard/core/model"
)

// Movement is the travel cost of one (source, destination) pair.
type Movement struct {
	Duration  time.Duration
	EnergyKWh float64
}

// Resolver looks up travel costs over a fixed edge set. Lookups
// normalize both endpoints, so callers may pass raw location strings.
type Resolver struct {
	edges map[[2]string]Movement
}

// NewResolver indexes the topology edges.
func NewResolver(edges []model.GeometryEdge) *Resolver {
	idx := make(map[[2]string]Movement, len(edges))
	for _, e := range edges {
		key := [2]string{location.Normalize(e.Source), location.Normalize(e.Destination)}
		idx[key] = Movement{
			Duration:  time.Duration(e.DurationMinutes) * time.Minute,
			EnergyKWh: e.EnergyKWh,
		}
	}
	return &Resolver{edges: idx}
}

// Lookup returns the travel cost between two locations. A missing edge
// yields the zero-cost default: one bad edge must not block scheduling
// for the rest of the fleet.
func (r *Resolver) Lookup(source, destination string) Movement {
	if m, ok := r.edges[[2]string{location.Normalize(source), location.Normalize(destination)}]; ok {
		return m
	}
	return Movement{}
}

// Nearest returns the candidate with the minimum travel duration from
// the given source. Candidates with no edge resolve to zero duration
// and therefore win; with no candidates the empty string is returned.
func (r *Resolver) Nearest(source string, candidates []string) string {
	best := ""
	var bestDur time.Duration = -1
	for _, c := range candidates {
		d := r.Lookup(source, c).Duration
		if bestDur < 0 || d < bestDur {
			bestDur = d
			best = c
		}
	}
	return best
}
