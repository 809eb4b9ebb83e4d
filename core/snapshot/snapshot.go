package snapshot

import (
	"sort"
	"strings"
	"time"

	"github.com/railyard-ops/railyard/core/location"
	"github.com/railyard-ops/railyard/core/model"
)

// Snapshot is one consistent-enough read of every table a planning pass
// needs. Planner branches only read it, so they may run concurrently
// against the same snapshot.
type Snapshot struct {
	TakenAt time.Time

	Vehicles      []model.Vehicle
	WorkOrders    []model.WorkOrder
	Certificates  []model.Certificate
	Mileage       []model.MileageRecord // one logical record per vehicle
	Cleaning      map[model.CleanKind][]model.CleaningStatus
	CleaningSlots []model.CleaningSlot
	Geometry      []model.GeometryEdge
	Movements     []model.MovementRecord
	Branding      []model.BrandingCampaign
	ServiceChecks map[model.ServiceKind][]model.ServiceCheck

	// FleetIDs is the planning universe: distinct vehicle IDs from the
	// mileage table in first-appearance order.
	FleetIDs []string
}

func normID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// VehicleByID returns the vehicle master row, if present.
func (s *Snapshot) VehicleByID(id string) (model.Vehicle, bool) {
	n := normID(id)
	for _, v := range s.Vehicles {
		if normID(v.ID) == n {
			return v, true
		}
	}
	return model.Vehicle{}, false
}

// CertificatesFor returns all certificates held by the vehicle.
func (s *Snapshot) CertificatesFor(id string) []model.Certificate {
	n := normID(id)
	var out []model.Certificate
	for _, c := range s.Certificates {
		if normID(c.VehicleID) == n {
			out = append(out, c)
		}
	}
	return out
}

// HasPendingWorkOrder reports whether any Open or In-Progress work
// order references the vehicle.
func (s *Snapshot) HasPendingWorkOrder(id string) bool {
	n := normID(id)
	for _, w := range s.WorkOrders {
		if normID(w.VehicleID) == n && w.Pending() {
			return true
		}
	}
	return false
}

// OpenWorkOrders returns the Open orders sorted oldest-opened first.
func (s *Snapshot) OpenWorkOrders() []model.WorkOrder {
	var open []model.WorkOrder
	for _, w := range s.WorkOrders {
		if w.Status == model.WorkOrderOpen {
			open = append(open, w)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].Opened.Before(open[j].Opened)
	})
	return open
}

// TotalKM returns the vehicle's cumulative distance. The second return
// is false when no mileage record exists; rankers treat that as
// +infinity so unknown vehicles sort last.
func (s *Snapshot) TotalKM(id string) (float64, bool) {
	n := normID(id)
	for _, m := range s.Mileage {
		if normID(m.VehicleID) == n {
			return m.TotalKM, true
		}
	}
	return 0, false
}

// RemainingBrandingHours returns the vehicle's outstanding exposure
// obligation: the maximum remaining hours across its campaign rows, or
// zero when it carries no campaign.
func (s *Snapshot) RemainingBrandingHours(id string) float64 {
	n := normID(id)
	max := 0.0
	for _, b := range s.Branding {
		if normID(b.VehicleID) == n && b.RemainingHours > max {
			max = b.RemainingHours
		}
	}
	return max
}

// CleaningFor returns the vehicle's cleaning status for one tier.
func (s *Snapshot) CleaningFor(kind model.CleanKind, id string) (model.CleaningStatus, bool) {
	n := normID(id)
	for _, c := range s.Cleaning[kind] {
		if normID(c.VehicleID) == n {
			return c, true
		}
	}
	return model.CleaningStatus{}, false
}

// LastServiceCheck returns the vehicle's last A or B check.
func (s *Snapshot) LastServiceCheck(kind model.ServiceKind, id string) (model.ServiceCheck, bool) {
	n := normID(id)
	for _, c := range s.ServiceChecks[kind] {
		if normID(c.VehicleID) == n {
			return c, true
		}
	}
	return model.ServiceCheck{}, false
}

// CurrentLocation derives the vehicle's position from its latest
// movement record. Empty when the vehicle has never moved.
func (s *Snapshot) CurrentLocation(id string) string {
	n := normID(id)
	for i := len(s.Movements) - 1; i >= 0; i-- {
		if normID(s.Movements[i].VehicleID) == n {
			return location.Normalize(s.Movements[i].Destination)
		}
	}
	return ""
}

// Occupants returns the vehicles currently located at the given
// location, in the order their movement records appear in the log.
func (s *Snapshot) Occupants(loc string) []string {
	want := location.Normalize(loc)
	last := make(map[string]string)
	var order []string
	for _, m := range s.Movements {
		n := normID(m.VehicleID)
		if n == "" {
			continue
		}
		if _, seen := last[n]; !seen {
			order = append(order, m.VehicleID)
		}
		last[n] = location.Normalize(m.Destination)
	}
	var out []string
	for _, id := range order {
		if last[normID(id)] == want {
			out = append(out, id)
		}
	}
	return out
}

// KnownLocations returns the vocabulary of every location ever seen in
// the movement log, sources and destinations alike.
func (s *Snapshot) KnownLocations() location.Vocabulary {
	names := make([]string, 0, len(s.Movements)*2)
	for _, m := range s.Movements {
		names = append(names, m.Source, m.Destination)
	}
	return location.NewVocabulary(names)
}
