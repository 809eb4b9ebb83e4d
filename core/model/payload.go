package model

import "time"

// SlotRef identifies a cleaning slot row by its natural key.
type SlotRef struct {
	Date  time.Time `json:"date"`
	Start string    `json:"start"`
	End   string    `json:"end"`
}

// WorkOrderRef identifies a work order to close. When ID is empty the
// commit pipeline falls back to the vehicle's oldest open order.
type WorkOrderRef struct {
	ID        string `json:"id"`
	VehicleID string `json:"vehicle_id"`
}

// ServiceCheckUpdate stamps today's date on a vehicle's A or B check row.
type ServiceCheckUpdate struct {
	VehicleID string      `json:"vehicle_id"`
	Kind      ServiceKind `json:"kind"`
}

// ApprovalPayload is the sole external mutation surface of the engine:
// the full set of approved effects handed to the commit pipeline.
type ApprovalPayload struct {
	Logs              []MovementRecord     `json:"logs"`
	CleaningSlots     []SlotRef            `json:"cleaning_slots"`
	WorkOrdersToClose []WorkOrderRef       `json:"work_orders_to_close"`
	ServiceChecks     []ServiceCheckUpdate `json:"service_checks"`
	BrandingAccruals  []BrandingAccrual    `json:"branding_accruals"`
}

// Empty reports whether the payload carries no effects at all.
func (p ApprovalPayload) Empty() bool {
	return len(p.Logs) == 0 && len(p.CleaningSlots) == 0 &&
		len(p.WorkOrdersToClose) == 0 && len(p.ServiceChecks) == 0 &&
		len(p.BrandingAccruals) == 0
}

// CommitResult reports how many effects of each class actually landed.
// Counts are reported per category, never collapsed to a single pass or
// fail, so callers can tell exactly which mutations applied.
type CommitResult struct {
	LogsAppended         int `json:"logs_appended"`
	SlotsOccupied        int `json:"slots_occupied"`
	WorkOrdersClosed     int `json:"work_orders_closed"`
	ServiceChecksUpdated int `json:"service_checks_updated"`
	BrandingUpdated      int `json:"branding_updated"`
}
