// Package store defines the contract of the external tabular store the
// planning engine reads from and commits to. Tables are header-driven:
// the first row of the backing sheet defines the field names and every
// row is exposed as a header-keyed record with absent fields defaulting
// to the empty string.
package store

import (
	"context"
	"errors"
)

// Row is one header-keyed record of a table.
type Row map[string]string

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Store is the external table store. Implementations are expected to be
// remote and rate limited; the engine bounds read volume with the
// snapshot cache and keeps mutations inside the commit pipeline.
type Store interface {
	// ReadTable returns all rows of the named table.
	ReadTable(ctx context.Context, table string) ([]Row, error)
	// AppendRows appends rows to the end of the named table.
	AppendRows(ctx context.Context, table string, rows []Row) error
	// UpdateRow replaces the row at index (0-based over the data rows,
	// excluding the header) with the given record.
	UpdateRow(ctx context.Context, table string, index int, row Row) error
}

// ErrTableNotFound is returned when the named table does not exist.
var ErrTableNotFound = errors.New("store: table not found")

// Table names used by the engine.
const (
	TableVehicles      = "vehicles"
	TableWorkOrders    = "work_orders"
	TableCertificates  = "certificates"
	TableMileage       = "mileage"
	TableLightClean    = "light_clean"
	TableDeepClean     = "deep_clean"
	TableCleaningSlots = "cleaning_slots"
	TableGeometry      = "stabling_geometry"
	TableMovements     = "logs"
	TableBranding      = "branding"
	TableAService      = "a_service_check"
	TableBService      = "b_service_check"
)
