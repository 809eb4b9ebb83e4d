package model

import "time"

// MovementRecord is one append-only movement log entry. The log is the
// sole source of truth for vehicle position: the latest record per
// vehicle determines where it currently stands.
type MovementRecord struct {
	VehicleID   string    `json:"vehicle_id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Action      string    `json:"action"`
}

// Movement action tags written to the log.
const (
	ActionMove          = "Move"
	ActionMaintenance   = "Maintenance"
	ActionLightClean    = "Light_Clean"
	ActionDeepClean     = "Deep_Clean"
	ActionAServiceCheck = "A_Service_Check"
	ActionBServiceCheck = "B_Service_Check"
	ActionSwapIn        = "Swap_In"
	ActionSwapOut       = "Swap_Out"
	ActionNightReturn   = "Night_Return"
)
