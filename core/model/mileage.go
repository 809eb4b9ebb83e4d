package model

import "time"

// MileageRecord tracks the cumulative distance of a vehicle. When the
// store holds duplicate rows per vehicle the last occurrence wins; the
// snapshot loader enforces that rule so downstream code sees one logical
// record per vehicle.
type MileageRecord struct {
	VehicleID string
	TotalKM   float64
	DailyAvg  float64
	UpdatedAt time.Time
}
