package model

import "time"

// BrandingCampaign is an advertising wrap contract on a vehicle. The
// campaign earns exposure hours while the vehicle dwells in the ready
// area; RemainingHours is recomputed on every accrual commit.
type BrandingCampaign struct {
	RecordID         string
	VehicleID        string
	RequiredHours    float64
	AccumulatedHours float64
	RemainingHours   float64
	Start            time.Time
	End              time.Time
}

// BrandingAccrual is one day's exposure credit for a vehicle.
type BrandingAccrual struct {
	VehicleID string  `json:"vehicle_id"`
	AddHours  float64 `json:"add_hours"`
}
