package model

import "time"

// WorkOrderStatus is the lifecycle state of a work order.
type WorkOrderStatus string

const (
	WorkOrderOpen       WorkOrderStatus = "Open"
	WorkOrderInProgress WorkOrderStatus = "In-Progress"
	WorkOrderClosed     WorkOrderStatus = "Closed"
)

// WorkOrder is a maintenance task raised against a vehicle. Orders are
// created outside the planning engine; the commit pipeline closes them.
type WorkOrder struct {
	ID          string
	VehicleID   string
	Description string
	Opened      time.Time
	Due         time.Time
	Closed      time.Time
	Status      WorkOrderStatus
}

// Pending reports whether the order still blocks dispatch.
func (w WorkOrder) Pending() bool {
	return w.Status == WorkOrderOpen || w.Status == WorkOrderInProgress
}
