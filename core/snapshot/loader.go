package snapshot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/railyard-ops/railyard/core/logger"
	"github.com/railyard-ops/railyard/core/model"
	"github.com/railyard-ops/railyard/core/store"
)

// TTLs controls how long each resource class stays cached. Volatile
// resources (movement log, cleaning slots) run short; near-static ones
// (depot geometry) run long.
type TTLs struct {
	Movements     time.Duration
	CleaningSlots time.Duration
	WorkOrders    time.Duration
	Geometry      time.Duration
	Default       time.Duration
}

// DefaultTTLs mirrors the read-rate budget of the remote store.
func DefaultTTLs() TTLs {
	return TTLs{
		Movements:     15 * time.Second,
		CleaningSlots: 45 * time.Second,
		WorkOrders:    30 * time.Second,
		Geometry:      10 * time.Minute,
		Default:       time.Minute,
	}
}

// For returns the TTL for a table.
func (t TTLs) For(table string) time.Duration {
	switch table {
	case store.TableMovements:
		return t.Movements
	case store.TableCleaningSlots:
		return t.CleaningSlots
	case store.TableWorkOrders:
		return t.WorkOrders
	case store.TableGeometry:
		return t.Geometry
	}
	return t.Default
}

// Loader pulls one Snapshot per planning pass, bounding read volume
// with the injected cache.
type Loader struct {
	store store.Store
	cache *Cache
	ttl   TTLs
	log   logger.Logger
	now   func() time.Time
}

// NewLoader creates a Loader. A nil cache disables caching; a nil
// logger discards log output.
func NewLoader(st store.Store, cache *Cache, ttl TTLs, log logger.Logger) (*Loader, error) {
	if st == nil {
		return nil, fmt.Errorf("snapshot: nil store provided to NewLoader")
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Loader{store: st, cache: cache, ttl: ttl, log: log, now: time.Now}, nil
}

// Invalidate drops cache entries for the given tables. Called by the
// commit pipeline after each mutation class lands.
func (l *Loader) Invalidate(tables ...string) {
	if l.cache != nil {
		l.cache.Invalidate(tables...)
	}
}

func (l *Loader) readCached(ctx context.Context, table string) ([]store.Row, error) {
	if l.cache != nil {
		if rows, ok := l.cache.Get(table); ok {
			return rows, nil
		}
	}
	rows, err := l.store.ReadTable(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	if l.cache != nil {
		l.cache.Put(table, rows, l.ttl.For(table))
	}
	return rows, nil
}

// Load reads every table a planning pass needs. The reads run
// concurrently; all of them must succeed.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		TakenAt:       l.now(),
		Cleaning:      make(map[model.CleanKind][]model.CleaningStatus),
		ServiceChecks: make(map[model.ServiceKind][]model.ServiceCheck),
	}

	g, gctx := errgroup.WithContext(ctx)
	read := func(table string, decode func([]store.Row)) {
		g.Go(func() error {
			rows, err := l.readCached(gctx, table)
			if err != nil {
				return err
			}
			decode(rows)
			return nil
		})
	}

	read(store.TableVehicles, func(rows []store.Row) { snap.Vehicles = decodeVehicles(rows) })
	read(store.TableWorkOrders, func(rows []store.Row) { snap.WorkOrders = decodeWorkOrders(rows) })
	read(store.TableCertificates, func(rows []store.Row) { snap.Certificates = decodeCertificates(rows) })
	read(store.TableMileage, func(rows []store.Row) { snap.Mileage, snap.FleetIDs = decodeMileage(rows) })
	read(store.TableLightClean, func(rows []store.Row) {
		snap.Cleaning[model.CleanLight] = decodeCleaning(rows, model.CleanLight)
	})
	read(store.TableDeepClean, func(rows []store.Row) {
		snap.Cleaning[model.CleanDeep] = decodeCleaning(rows, model.CleanDeep)
	})
	read(store.TableCleaningSlots, func(rows []store.Row) { snap.CleaningSlots = decodeSlots(rows) })
	read(store.TableGeometry, func(rows []store.Row) { snap.Geometry = decodeGeometry(rows) })
	read(store.TableMovements, func(rows []store.Row) { snap.Movements = decodeMovements(rows) })
	read(store.TableBranding, func(rows []store.Row) { snap.Branding = decodeBranding(rows) })
	read(store.TableAService, func(rows []store.Row) {
		snap.ServiceChecks[model.ServiceA] = decodeChecks(rows, model.ServiceA)
	})
	read(store.TableBService, func(rows []store.Row) {
		snap.ServiceChecks[model.ServiceB] = decodeChecks(rows, model.ServiceB)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	l.log.Debugw("snapshot loaded", map[string]any{
		"vehicles":  len(snap.Vehicles),
		"movements": len(snap.Movements),
		"slots":     len(snap.CleaningSlots),
	})
	return snap, nil
}

func decodeVehicles(rows []store.Row) []model.Vehicle {
	out := make([]model.Vehicle, 0, len(rows))
	for _, r := range rows {
		id := store.Field(r, store.VehicleIDCols...)
		if id == "" {
			continue
		}
		year, _ := strconv.Atoi(store.Field(r, "Commissioned_Year", "Year"))
		out = append(out, model.Vehicle{
			ID:               id,
			CommissionedYear: year,
			BaseKM:           store.ParseNumber(store.Field(r, "Base_KM", "BaseKM"), 0),
			Status:           parseVehicleStatus(store.Field(r, store.StatusCols...)),
			LastServiceType:  store.Field(r, "Last_Service_Type"),
			LastServiceDate:  store.ParseDate(store.Field(r, "Last_Service_Date")),
		})
	}
	return out
}

func parseVehicleStatus(s string) model.VehicleStatus {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(s, " ", "-"), "_", "-")) {
	case "in-service":
		return model.StatusInService
	case "standby":
		return model.StatusStandby
	case "held-for-maintenance":
		return model.StatusHeldForMaintenance
	case "held-for-inspection":
		return model.StatusHeldForInspection
	}
	return model.VehicleStatus(s)
}

func decodeWorkOrders(rows []store.Row) []model.WorkOrder {
	out := make([]model.WorkOrder, 0, len(rows))
	for _, r := range rows {
		id := store.Field(r, "WorkOrder_ID", "JobCard_ID", "Order_ID")
		vid := store.Field(r, store.VehicleIDCols...)
		if id == "" && vid == "" {
			continue
		}
		out = append(out, model.WorkOrder{
			ID:          id,
			VehicleID:   vid,
			Description: store.Field(r, "Description", "Work_Description"),
			Opened:      store.ParseDate(store.Field(r, "Opened_Date")),
			Due:         store.ParseDate(store.Field(r, "Due_Date")),
			Closed:      store.ParseDate(store.Field(r, "Closed_Date")),
			Status:      parseWorkOrderStatus(store.Field(r, store.StatusCols...)),
		})
	}
	return out
}

func parseWorkOrderStatus(s string) model.WorkOrderStatus {
	switch strings.ToLower(strings.ReplaceAll(s, " ", "-")) {
	case "open":
		return model.WorkOrderOpen
	case "in-progress", "inprogress":
		return model.WorkOrderInProgress
	case "closed":
		return model.WorkOrderClosed
	}
	return model.WorkOrderStatus(s)
}

func decodeCertificates(rows []store.Row) []model.Certificate {
	out := make([]model.Certificate, 0, len(rows))
	for _, r := range rows {
		vid := store.Field(r, store.VehicleIDCols...)
		if vid == "" {
			continue
		}
		out = append(out, model.Certificate{
			VehicleID: vid,
			Type:      store.Field(r, "Certificate_Type", "Type"),
			Issued:    store.ParseDate(store.Field(r, "Issued_Date")),
			Expiry:    store.ParseDate(store.Field(r, "Expiry_Date")),
			Status:    parseCertStatus(store.Field(r, store.StatusCols...)),
		})
	}
	return out
}

func parseCertStatus(s string) model.CertificateStatus {
	switch strings.ToLower(s) {
	case "valid":
		return model.CertificateValid
	case "pending":
		return model.CertificatePending
	case "expired":
		return model.CertificateExpired
	}
	return model.CertificateStatus(s)
}

// decodeMileage collapses duplicate rows to one logical record per
// vehicle, last occurrence winning, and keeps first-appearance order as
// the fleet universe.
func decodeMileage(rows []store.Row) ([]model.MileageRecord, []string) {
	byID := make(map[string]model.MileageRecord)
	var order []string
	for _, r := range rows {
		vid := store.Field(r, store.VehicleIDCols...)
		if vid == "" {
			continue
		}
		n := normID(vid)
		if _, seen := byID[n]; !seen {
			order = append(order, vid)
		}
		byID[n] = model.MileageRecord{
			VehicleID: vid,
			TotalKM:   store.ParseNumber(store.Field(r, "Total_KM", "TotalKM"), 0),
			DailyAvg:  store.ParseNumber(store.Field(r, "Daily_Avg_KM", "Daily_Average"), 0),
			UpdatedAt: store.ParseDate(store.Field(r, "Last_Updated", "Updated_At")),
		}
	}
	out := make([]model.MileageRecord, 0, len(order))
	for _, id := range order {
		out = append(out, byID[normID(id)])
	}
	return out, order
}

func decodeCleaning(rows []store.Row, kind model.CleanKind) []model.CleaningStatus {
	out := make([]model.CleaningStatus, 0, len(rows))
	for _, r := range rows {
		vid := store.Field(r, store.VehicleIDCols...)
		if vid == "" {
			continue
		}
		status := strings.ToLower(store.Field(r, "Cleanliness_Status", "Status"))
		out = append(out, model.CleaningStatus{
			VehicleID:   vid,
			Kind:        kind,
			LastCleaned: store.ParseDate(store.Field(r, "Last_Cleaning_Date", "Last_Cleaned")),
			Required:    status == "required",
		})
	}
	return out
}

func decodeSlots(rows []store.Row) []model.CleaningSlot {
	out := make([]model.CleaningSlot, 0, len(rows))
	for _, r := range rows {
		date := store.ParseDate(store.Field(r, store.DateCols...))
		start := store.Field(r, store.StartCols...)
		if date.IsZero() || store.ClockMinutes(start) < 0 {
			continue
		}
		status := model.SlotOccupied
		if strings.EqualFold(store.Field(r, store.StatusCols...), "available") {
			status = model.SlotAvailable
		}
		out = append(out, model.CleaningSlot{
			Date:   date,
			Start:  start,
			End:    store.Field(r, store.EndCols...),
			Status: status,
		})
	}
	return out
}

func decodeGeometry(rows []store.Row) []model.GeometryEdge {
	out := make([]model.GeometryEdge, 0, len(rows))
	for _, r := range rows {
		src := store.Field(r, "Source", "From")
		dst := store.Field(r, "Destination", "To")
		if src == "" || dst == "" {
			continue
		}
		out = append(out, model.GeometryEdge{
			Source:          src,
			Destination:     dst,
			DurationMinutes: int(store.ParseNumber(store.Field(r, "Travel_Duration_Minutes", "Duration_Minutes", "Minutes", "TravelTime"), 0)),
			EnergyKWh:       store.ParseNumber(store.Field(r, "Energy_Cost_kWh", "Energy_kWh", "Energy"), 0),
		})
	}
	return out
}

func decodeMovements(rows []store.Row) []model.MovementRecord {
	out := make([]model.MovementRecord, 0, len(rows))
	for _, r := range rows {
		vid := store.Field(r, store.VehicleIDCols...)
		if vid == "" {
			continue
		}
		out = append(out, model.MovementRecord{
			VehicleID:   vid,
			Source:      store.Field(r, "Source", "From"),
			Destination: store.Field(r, "Destination", "To"),
			Start:       store.ParseDateTime(store.Field(r, store.StartCols...)),
			End:         store.ParseDateTime(store.Field(r, store.EndCols...)),
			Action:      store.Field(r, "Action"),
		})
	}
	return out
}

func decodeBranding(rows []store.Row) []model.BrandingCampaign {
	out := make([]model.BrandingCampaign, 0, len(rows))
	for _, r := range rows {
		vid := store.Field(r, store.VehicleIDCols...)
		if vid == "" {
			continue
		}
		required := store.ParseNumber(store.Field(r, "Required_Hours"), 0)
		accumulated := store.ParseNumber(store.Field(r, "Accumulated_Hours"), 0)
		remaining := store.ParseNumber(store.Field(r, "Remaining_Hours"), -1)
		if remaining < 0 {
			remaining = required - accumulated
			if remaining < 0 {
				remaining = 0
			}
		}
		out = append(out, model.BrandingCampaign{
			RecordID:         store.Field(r, "Record_ID"),
			VehicleID:        vid,
			RequiredHours:    required,
			AccumulatedHours: accumulated,
			RemainingHours:   remaining,
			Start:            store.ParseDate(store.Field(r, "Start_Date")),
			End:              store.ParseDate(store.Field(r, "End_Date")),
		})
	}
	return out
}

func decodeChecks(rows []store.Row, kind model.ServiceKind) []model.ServiceCheck {
	dateCols := []string{"a_check_date", "A_Check_Date", "A_Check"}
	if kind == model.ServiceB {
		dateCols = []string{"b_check_date", "B_Check_Date", "B_Check"}
	}
	out := make([]model.ServiceCheck, 0, len(rows))
	for _, r := range rows {
		vid := store.Field(r, store.VehicleIDCols...)
		if vid == "" {
			continue
		}
		out = append(out, model.ServiceCheck{
			VehicleID: vid,
			Kind:      kind,
			CheckDate: store.ParseDate(store.Field(r, dateCols...)),
		})
	}
	return out
}
