package model

import "time"

// CleanKind distinguishes the two cleanliness tiers.
type CleanKind string

const (
	CleanLight CleanKind = "light"
	CleanDeep  CleanKind = "deep"
)

// CleaningStatus records the cleanliness of a vehicle for one tier.
type CleaningStatus struct {
	VehicleID   string
	Kind        CleanKind
	LastCleaned time.Time
	Required    bool // explicit Required flag from the store
}

// StaleDays returns whole days elapsed since the last cleaning.
func (c CleaningStatus) StaleDays(today time.Time) int {
	if c.LastCleaned.IsZero() {
		return 0
	}
	return int(today.Sub(c.LastCleaned).Hours() / 24)
}

// NeedsCleaning reports whether the vehicle must be cleaned: either the
// store marks it Required or it is Clean but staler than the threshold.
func (c CleaningStatus) NeedsCleaning(today time.Time, thresholdDays int) bool {
	return c.Required || c.StaleDays(today) >= thresholdDays
}

// SlotStatus is the occupancy state of a timed cleaning slot.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "Available"
	SlotOccupied  SlotStatus = "Occupied"
)

// SlotBlockMinutes is the fixed width of one cleaning slot.
const SlotBlockMinutes = 10

// CleaningSlot is one fixed-width unit of cleaning capacity. Start and
// End are wall-clock times of day in "HH:mm" form; Date is the slot's
// calendar day at midnight.
type CleaningSlot struct {
	Date   time.Time
	Start  string
	End    string
	Status SlotStatus
}

// Available reports whether the slot can still be allocated.
func (s CleaningSlot) Available() bool { return s.Status == SlotAvailable }
