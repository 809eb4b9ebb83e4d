package model

import "time"

// ServiceKind identifies the interval-based service check tables.
type ServiceKind string

const (
	ServiceA ServiceKind = "A"
	ServiceB ServiceKind = "B"
)

// ServiceCheck is the last recorded interval check of one kind for a
// vehicle.
type ServiceCheck struct {
	VehicleID string
	Kind      ServiceKind
	CheckDate time.Time
}

// Overdue reports whether the check is older than the allowed interval.
// Both sides are compared at date granularity so a check performed
// earlier today never reads as overdue.
func (s ServiceCheck) Overdue(today time.Time, maxDays int) bool {
	if s.CheckDate.IsZero() {
		return false
	}
	d := midnight(today).Sub(midnight(s.CheckDate))
	return int(d.Hours()/24) >= maxDays
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
