package commit

import (
	"context"
	"testing"
	"time"

	"github.com/railyard-ops/railyard/core/model"
	"github.com/railyard-ops/railyard/core/store"
)

func testPipeline(t *testing.T, ms *store.MemoryStore) *Pipeline {
	t.Helper()
	p, err := NewPipeline(ms, nil, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p.now = func() time.Time {
		return time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	}
	return p
}

func seedCommit(ms *store.MemoryStore) {
	ms.Seed(store.TableMovements, nil)
	ms.Seed(store.TableCleaningSlots, []store.Row{
		{"Date": "3/05/2024", "Start_Time": "09:00", "End_Time": "09:10", "Status": "Available"},
		{"Date": "3/05/2024", "Start_Time": "09:10", "End_Time": "09:20", "Status": "Available"},
	})
	ms.Seed(store.TableWorkOrders, []store.Row{
		{"WorkOrder_ID": "W1", "Vehicle_ID": "V1", "Status": "Open", "Opened_Date": "3/01/2024"},
		{"WorkOrder_ID": "W2", "Vehicle_ID": "V2", "Status": "Open", "Opened_Date": "2/01/2024"},
		{"WorkOrder_ID": "W3", "Vehicle_ID": "V2", "Status": "Open", "Opened_Date": "2/15/2024"},
	})
	ms.Seed(store.TableAService, []store.Row{
		{"Vehicle_ID": "V1", "A_Check_Date": "2/10/2024"},
	})
	ms.Seed(store.TableBService, []store.Row{
		{"Vehicle_ID": "V1", "B_Check_Date": "1/10/2024"},
	})
	ms.Seed(store.TableBranding, []store.Row{
		{"Record_ID": "B1", "Vehicle_ID": "V1", "Required_Hours": "100", "Accumulated_Hours": "10", "Remaining_Hours": "90"},
		{"Record_ID": "B2", "Vehicle_ID": "V1", "Required_Hours": "50", "Accumulated_Hours": "40", "Remaining_Hours": "10"},
	})
}

func fullPayload() model.ApprovalPayload {
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	return model.ApprovalPayload{
		Logs: []model.MovementRecord{
			{VehicleID: "V1", Source: "Central_Stb01_S1", Destination: "Central_Maint01",
				Start: start, End: start.Add(3 * time.Minute), Action: model.ActionMaintenance},
		},
		CleaningSlots: []model.SlotRef{
			{Date: day, Start: "09:00", End: "09:10"},
		},
		WorkOrdersToClose: []model.WorkOrderRef{
			{ID: "W1", VehicleID: "V1"},
		},
		ServiceChecks: []model.ServiceCheckUpdate{
			{VehicleID: "V1", Kind: model.ServiceA},
		},
		BrandingAccruals: []model.BrandingAccrual{
			{VehicleID: "V1", AddHours: 2.5},
		},
	}
}

func TestApplyFullPayload(t *testing.T) {
	ms := store.NewMemoryStore()
	seedCommit(ms)
	p := testPipeline(t, ms)

	res, err := p.Apply(context.Background(), fullPayload())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := model.CommitResult{
		LogsAppended:         1,
		SlotsOccupied:        1,
		WorkOrdersClosed:     1,
		ServiceChecksUpdated: 1,
		BrandingUpdated:      1,
	}
	if res != want {
		t.Fatalf("result = %+v, want %+v", res, want)
	}

	logs, _ := ms.ReadTable(context.Background(), store.TableMovements)
	if len(logs) != 1 || logs[0]["Action"] != "Maintenance" {
		t.Fatalf("logs = %+v", logs)
	}
	slots, _ := ms.ReadTable(context.Background(), store.TableCleaningSlots)
	if slots[0]["Status"] != "Occupied" || slots[1]["Status"] != "Available" {
		t.Fatalf("slots = %+v", slots)
	}
	orders, _ := ms.ReadTable(context.Background(), store.TableWorkOrders)
	if orders[0]["Status"] != "Closed" || orders[0]["Closed_Date"] != "3/05/2024" {
		t.Fatalf("W1 = %+v", orders[0])
	}
	checks, _ := ms.ReadTable(context.Background(), store.TableAService)
	if checks[0]["A_Check_Date"] != "3/05/2024" {
		t.Fatalf("A check = %+v", checks[0])
	}
	// The second campaign row is the vehicle's last occurrence and the
	// one that absorbs the accrual.
	branding, _ := ms.ReadTable(context.Background(), store.TableBranding)
	if branding[1]["Accumulated_Hours"] != "42.5" || branding[1]["Remaining_Hours"] != "7.5" {
		t.Fatalf("branding = %+v", branding[1])
	}
	if branding[0]["Accumulated_Hours"] != "10" {
		t.Fatalf("first campaign row must be untouched: %+v", branding[0])
	}
}

func TestApplyIdempotentWithinPass(t *testing.T) {
	ms := store.NewMemoryStore()
	seedCommit(ms)
	p := testPipeline(t, ms)

	payload := model.ApprovalPayload{
		WorkOrdersToClose: []model.WorkOrderRef{{ID: "W1"}},
		CleaningSlots:     []model.SlotRef{{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Start: "09:00", End: "09:10"}},
	}
	if _, err := p.Apply(context.Background(), payload); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	res, err := p.Apply(context.Background(), payload)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if res.WorkOrdersClosed != 0 || res.SlotsOccupied != 0 {
		t.Fatalf("re-apply must be a no-op, got %+v", res)
	}
}

func TestCloseOldestOpenOrderFallback(t *testing.T) {
	ms := store.NewMemoryStore()
	seedCommit(ms)
	p := testPipeline(t, ms)

	payload := model.ApprovalPayload{
		WorkOrdersToClose: []model.WorkOrderRef{{VehicleID: "V2"}},
	}
	res, err := p.Apply(context.Background(), payload)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.WorkOrdersClosed != 1 {
		t.Fatalf("result = %+v", res)
	}
	orders, _ := ms.ReadTable(context.Background(), store.TableWorkOrders)
	if orders[1]["Status"] != "Closed" {
		t.Fatalf("W2 opened 2/01 is the oldest and must close: %+v", orders)
	}
	if orders[2]["Status"] != "Open" {
		t.Fatalf("W3 must stay open: %+v", orders[2])
	}
}

func TestOccupySlotMatchesEndTime(t *testing.T) {
	ms := store.NewMemoryStore()
	// Two rows share date and start; only the end time tells them apart.
	ms.Seed(store.TableCleaningSlots, []store.Row{
		{"Date": "3/05/2024", "Start_Time": "09:00", "End_Time": "09:10", "Status": "Available"},
		{"Date": "3/05/2024", "Start_Time": "09:00", "End_Time": "09:20", "Status": "Available"},
	})
	p := testPipeline(t, ms)

	payload := model.ApprovalPayload{
		CleaningSlots: []model.SlotRef{
			{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Start: "09:00", End: "09:20"},
		},
	}
	res, err := p.Apply(context.Background(), payload)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.SlotsOccupied != 1 {
		t.Fatalf("result = %+v", res)
	}
	slots, _ := ms.ReadTable(context.Background(), store.TableCleaningSlots)
	if slots[0]["Status"] != "Available" || slots[1]["Status"] != "Occupied" {
		t.Fatalf("the 09:00-09:20 row must be taken, not its sibling: %+v", slots)
	}
}

func TestFallbackIgnoresInProgressOrders(t *testing.T) {
	ms := store.NewMemoryStore()
	ms.Seed(store.TableWorkOrders, []store.Row{
		{"WorkOrder_ID": "W1", "Vehicle_ID": "V1", "Status": "In-Progress", "Opened_Date": "1/01/2024"},
		{"WorkOrder_ID": "W2", "Vehicle_ID": "V1", "Status": "Open", "Opened_Date": "2/01/2024"},
	})
	p := testPipeline(t, ms)

	payload := model.ApprovalPayload{
		WorkOrdersToClose: []model.WorkOrderRef{{VehicleID: "V1"}},
	}
	res, err := p.Apply(context.Background(), payload)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.WorkOrdersClosed != 1 {
		t.Fatalf("result = %+v", res)
	}
	orders, _ := ms.ReadTable(context.Background(), store.TableWorkOrders)
	if orders[0]["Status"] != "In-Progress" {
		t.Fatalf("W1 is active work and must not close: %+v", orders[0])
	}
	if orders[1]["Status"] != "Closed" {
		t.Fatalf("W2 is the oldest Open order and must close: %+v", orders[1])
	}
}

func TestApplySkipsMissingTargets(t *testing.T) {
	ms := store.NewMemoryStore()
	seedCommit(ms)
	p := testPipeline(t, ms)

	payload := model.ApprovalPayload{
		WorkOrdersToClose: []model.WorkOrderRef{{ID: "W99"}},
		ServiceChecks:     []model.ServiceCheckUpdate{{VehicleID: "V99", Kind: model.ServiceA}},
		BrandingAccruals:  []model.BrandingAccrual{{VehicleID: "V99", AddHours: 1}},
	}
	res, err := p.Apply(context.Background(), payload)
	if err != nil {
		t.Fatalf("missing targets must not fail the commit: %v", err)
	}
	if res != (model.CommitResult{}) {
		t.Fatalf("nothing should land, got %+v", res)
	}
}

func TestApplyEmptyPayload(t *testing.T) {
	ms := store.NewMemoryStore()
	p := testPipeline(t, ms)
	res, err := p.Apply(context.Background(), model.ApprovalPayload{})
	if err != nil || res != (model.CommitResult{}) {
		t.Fatalf("empty payload: res=%+v err=%v", res, err)
	}
}

type invalidations struct{ tables []string }

func (i *invalidations) Invalidate(tables ...string) { i.tables = append(i.tables, tables...) }

func TestApplyInvalidatesTouchedTables(t *testing.T) {
	ms := store.NewMemoryStore()
	seedCommit(ms)
	inv := &invalidations{}
	p, err := NewPipeline(ms, inv, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	if _, err := p.Apply(context.Background(), fullPayload()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := map[string]bool{
		store.TableMovements:     true,
		store.TableCleaningSlots: true,
		store.TableWorkOrders:    true,
		store.TableAService:      true,
		store.TableBranding:      true,
	}
	got := map[string]bool{}
	for _, tb := range inv.tables {
		got[tb] = true
	}
	for tb := range want {
		if !got[tb] {
			t.Fatalf("table %s was mutated but not invalidated (got %v)", tb, inv.tables)
		}
	}
}
