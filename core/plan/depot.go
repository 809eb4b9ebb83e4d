package plan

import "fmt"

// Depot describes the fixed layout of one depot: the ready area, the
// stabling grid and the special-purpose bays. All location names follow
// the <Depot>_<Zone><Index>[_S<slot>] convention.
type Depot struct {
	Name         string
	StablingBays int
	SlotsPerBay  int
	// EntranceCap is the hard limit on simultaneous ready-area
	// occupancy.
	EntranceCap int
}

// DefaultDepot returns the standard depot layout.
func DefaultDepot() Depot {
	return Depot{Name: "Central", StablingBays: 13, SlotsPerBay: 2, EntranceCap: 8}
}

// Entrance is the capacity-bounded ready area.
func (d Depot) Entrance() string { return d.Name + "_Entrance" }

// MaintenanceBay is the destination for maintenance movements.
func (d Depot) MaintenanceBay() string { return d.Name + "_Maint01" }

// InspectionBay is the destination for interval service checks.
func (d Depot) InspectionBay() string { return d.Name + "_Inspect01" }

// LightCleanBay and DeepCleanBay are the cleaning destinations.
func (d Depot) LightCleanBay() string { return d.Name + "_Clean01" }
func (d Depot) DeepCleanBay() string  { return d.Name + "_Clean02" }

// StablingLocations enumerates every stabling slot of the depot.
func (d Depot) StablingLocations() []string {
	out := make([]string, 0, d.StablingBays*d.SlotsPerBay)
	for bay := 1; bay <= d.StablingBays; bay++ {
		for slot := 1; slot <= d.SlotsPerBay; slot++ {
			out = append(out, fmt.Sprintf("%s_Stb%02d_S%d", d.Name, bay, slot))
		}
	}
	return out
}

// DefaultStabling is the fallback source for vehicles whose position is
// unknown (no movement record yet).
func (d Depot) DefaultStabling() string {
	return fmt.Sprintf("%s_Stb01_S1", d.Name)
}
