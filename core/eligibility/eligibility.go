// Package eligibility decides which vehicles may be dispatched and in
// what order of preference.
package eligibility

import (
	"fmt"
	"time"

	"github.com/railyard-ops/railyard/core/model"
	"github.com/railyard-ops/railyard/core/snapshot"
)

// Thresholds are the interval-service limits in days.
type Thresholds struct {
	AServiceMaxDays int
	BServiceMaxDays int
}

// DefaultThresholds returns the operating policy limits.
func DefaultThresholds() Thresholds {
	return Thresholds{AServiceMaxDays: 15, BServiceMaxDays: 45}
}

// Result carries the eligibility verdict and the failed rules.
type Result struct {
	Eligible bool
	Reasons  []string
}

// Filter evaluates the hard dispatch constraints against a snapshot.
type Filter struct {
	Thresholds Thresholds
	// Now is the reference clock for overdue checks; zero means wall
	// clock.
	Now time.Time
}

// NewFilter returns a Filter with the default thresholds.
func NewFilter() *Filter {
	return &Filter{Thresholds: DefaultThresholds()}
}

func (f *Filter) today() time.Time {
	if !f.Now.IsZero() {
		return f.Now
	}
	return time.Now()
}

// Check evaluates every rule for the vehicle and returns the verdict
// with one reason per failed rule. It is a pure predicate: no snapshot
// state is touched.
func (f *Filter) Check(vehicleID string, snap *snapshot.Snapshot) Result {
	var reasons []string

	// Status gate. A vehicle absent from the master table cannot be
	// vetoed on status alone.
	if v, ok := snap.VehicleByID(vehicleID); ok && !v.Dispatchable() {
		reasons = append(reasons, fmt.Sprintf("status %s is not dispatchable", v.Status))
	}

	if snap.HasPendingWorkOrder(vehicleID) {
		reasons = append(reasons, "open or in-progress work order")
	}

	certs := snap.CertificatesFor(vehicleID)
	if len(certs) == 0 {
		// Conservative default: no certificate on file means no proof
		// of fitness.
		reasons = append(reasons, "no certificate on file")
	}
	for _, c := range certs {
		if c.Status != model.CertificateValid {
			reasons = append(reasons, fmt.Sprintf("certificate %s is %s", c.Type, c.Status))
		}
	}

	today := f.today()
	if chk, ok := snap.LastServiceCheck(model.ServiceA, vehicleID); ok && chk.Overdue(today, f.Thresholds.AServiceMaxDays) {
		reasons = append(reasons, "A-service check overdue")
	}
	if chk, ok := snap.LastServiceCheck(model.ServiceB, vehicleID); ok && chk.Overdue(today, f.Thresholds.BServiceMaxDays) {
		reasons = append(reasons, "B-service check overdue")
	}

	return Result{Eligible: len(reasons) == 0, Reasons: reasons}
}

// EligibleIDs filters the given universe down to dispatch-eligible
// vehicles, preserving input order.
func (f *Filter) EligibleIDs(ids []string, snap *snapshot.Snapshot) []string {
	var out []string
	for _, id := range ids {
		if f.Check(id, snap).Eligible {
			out = append(out, id)
		}
	}
	return out
}
