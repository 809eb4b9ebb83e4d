package model

// GeometryEdge is one (source, destination) entry of the depot topology
// table, carrying the shunting travel time and energy cost.
type GeometryEdge struct {
	Source          string
	Destination     string
	DurationMinutes int
	EnergyKWh       float64
}
