package model

import "time"

// VehicleStatus is the operational state of a rail vehicle.
type VehicleStatus string

const (
	StatusInService          VehicleStatus = "In-Service"
	StatusStandby            VehicleStatus = "Standby"
	StatusHeldForMaintenance VehicleStatus = "Held-for-Maintenance"
	StatusHeldForInspection  VehicleStatus = "Held-for-Inspection"
)

// Vehicle represents a rail vehicle in the depot fleet.
type Vehicle struct {
	ID               string
	CommissionedYear int
	BaseKM           float64 // distance at commissioning
	Status           VehicleStatus
	LastServiceType  string
	LastServiceDate  time.Time
}

// Dispatchable reports whether the status alone permits dispatch.
// Held-for-Maintenance is deliberately included: the operating policy
// treats it as dispatch-eligible unless another rule vetoes the vehicle.
func (v Vehicle) Dispatchable() bool {
	switch v.Status {
	case StatusInService, StatusStandby, StatusHeldForMaintenance:
		return true
	}
	return false
}
