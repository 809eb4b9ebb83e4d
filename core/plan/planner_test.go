package plan

import (
	"context"
	"testing"
	"time"

	"github.com/railyard-ops/railyard/core/model"
	"github.com/railyard-ops/railyard/core/snapshot"
	"github.com/railyard-ops/railyard/core/store"
)

func emptySnap() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Cleaning:      map[model.CleanKind][]model.CleaningStatus{},
		ServiceChecks: map[model.ServiceKind][]model.ServiceCheck{},
	}
}

func TestPlanCleaningStalestFirstAndExclusiveSlots(t *testing.T) {
	now := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	p := testPlanner(now)
	snap := emptySnap()
	snap.Cleaning[model.CleanLight] = []model.CleaningStatus{
		{VehicleID: "V1", Kind: model.CleanLight, Required: true, LastCleaned: now.AddDate(0, 0, -5)},
		{VehicleID: "V2", Kind: model.CleanLight, Required: true, LastCleaned: now.AddDate(0, 0, -10)},
	}
	snap.CleaningSlots = []model.CleaningSlot{
		slot("09:00", "09:10", model.SlotAvailable),
		slot("09:10", "09:20", model.SlotAvailable),
	}
	pc := p.newPassCtx(snap)

	props, err := p.planCleaningBranch(pc)
	if err != nil {
		t.Fatalf("planCleaningBranch: %v", err)
	}
	if len(props) != 2 {
		t.Fatalf("want 2 proposals, got %d", len(props))
	}
	first := props[0].(model.CleaningProposal)
	second := props[1].(model.CleaningProposal)
	if first.VehicleID() != "V2" {
		t.Fatalf("stalest vehicle goes first, got %s", first.VehicleID())
	}
	if first.Slots[0].Start != "09:00" || second.Slots[0].Start != "09:10" {
		t.Fatalf("slots double-allocated: %s / %s", first.Slots[0].Start, second.Slots[0].Start)
	}
	if first.Movement().Destination != "Central_Clean01" {
		t.Fatalf("destination = %q", first.Movement().Destination)
	}
}

func TestPlanCleaningDeepNeedsTwelveBlocks(t *testing.T) {
	now := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	p := testPlanner(now)
	snap := emptySnap()
	snap.Cleaning[model.CleanDeep] = []model.CleaningStatus{
		{VehicleID: "V1", Kind: model.CleanDeep, Required: true},
	}
	for m := 0; m < 11; m++ {
		start := time.Date(2024, 3, 5, 9, m*10, 0, 0, time.UTC)
		snap.CleaningSlots = append(snap.CleaningSlots,
			slot(start.Format("15:04"), start.Add(10*time.Minute).Format("15:04"), model.SlotAvailable))
	}
	pc := p.newPassCtx(snap)
	props, _ := p.planCleaningBranch(pc)
	if len(props) != 0 {
		t.Fatalf("11 blocks cannot host a deep clean, got %d proposals", len(props))
	}

	start := time.Date(2024, 3, 5, 10, 50, 0, 0, time.UTC)
	snap.CleaningSlots = append(snap.CleaningSlots,
		slot(start.Format("15:04"), start.Add(10*time.Minute).Format("15:04"), model.SlotAvailable))
	props, _ = p.planCleaningBranch(p.newPassCtx(snap))
	if len(props) != 1 {
		t.Fatalf("12 contiguous blocks host one deep clean, got %d", len(props))
	}
	cp := props[0].(model.CleaningProposal)
	if len(cp.Slots) != 12 || cp.Movement().Destination != "Central_Clean02" {
		t.Fatalf("deep proposal = %d slots to %q", len(cp.Slots), cp.Movement().Destination)
	}
}

func TestPlanMaintenanceOldestFirst(t *testing.T) {
	now := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	p := testPlanner(now)
	snap := emptySnap()
	snap.WorkOrders = []model.WorkOrder{
		{ID: "W1", VehicleID: "V1", Status: model.WorkOrderOpen, Opened: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "W2", VehicleID: "V2", Status: model.WorkOrderOpen, Opened: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "W3", VehicleID: "V3", Status: model.WorkOrderClosed, Opened: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	pc := p.newPassCtx(snap)

	props, err := p.planMaintenance(pc)
	if err != nil {
		t.Fatalf("planMaintenance: %v", err)
	}
	if len(props) != 2 {
		t.Fatalf("closed orders must be skipped, got %d proposals", len(props))
	}
	first := props[0].(model.MaintenanceProposal)
	if first.WorkOrder.ID != "W2" {
		t.Fatalf("oldest open order goes first, got %s", first.WorkOrder.ID)
	}
	if first.Movement().Destination != "Central_Maint01" {
		t.Fatalf("destination = %q", first.Movement().Destination)
	}
}

func TestPlanServiceChecks(t *testing.T) {
	now := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	p := testPlanner(now)
	snap := emptySnap()
	snap.ServiceChecks[model.ServiceA] = []model.ServiceCheck{
		{VehicleID: "V1", Kind: model.ServiceA, CheckDate: now.AddDate(0, 0, -20)},
		{VehicleID: "V2", Kind: model.ServiceA, CheckDate: now.AddDate(0, 0, -3)},
	}
	snap.ServiceChecks[model.ServiceB] = []model.ServiceCheck{
		{VehicleID: "V1", Kind: model.ServiceB, CheckDate: now.AddDate(0, 0, -44)},
		{VehicleID: "V3", Kind: model.ServiceB, CheckDate: now.AddDate(0, 0, -46)},
	}
	pc := p.newPassCtx(snap)

	props, err := p.planServiceChecks(pc)
	if err != nil {
		t.Fatalf("planServiceChecks: %v", err)
	}
	if len(props) != 2 {
		t.Fatalf("want one A and one B proposal, got %d", len(props))
	}
	a := props[0].(model.ServiceCheckProposal)
	if a.VehicleID() != "V1" || a.Service != model.ServiceA {
		t.Fatalf("first proposal = %s %s", a.VehicleID(), a.Service)
	}
	if !a.NewCheckDate.Equal(midnight(now)) {
		t.Fatalf("new check date = %v", a.NewCheckDate)
	}
	b := props[1].(model.ServiceCheckProposal)
	if b.VehicleID() != "V3" || b.Service != model.ServiceB {
		t.Fatalf("second proposal = %s %s", b.VehicleID(), b.Service)
	}
	if props[0].Movement().Destination != "Central_Inspect01" {
		t.Fatalf("destination = %q", props[0].Movement().Destination)
	}
}

func TestDailyDwell(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time {
		return time.Date(2024, 3, 5, h, m, 0, 0, time.UTC)
	}
	movements := []model.MovementRecord{
		// V1 arrives 08:00, departs 10:30: exactly 2.5 hours.
		{VehicleID: "V1", Source: "Central_Stb01_S1", Destination: "Central_Entrance", Start: at(7, 55), End: at(8, 0)},
		{VehicleID: "V1", Source: "Central_Entrance", Destination: "Central_Stb01_S1", Start: at(10, 30), End: at(10, 35)},
		// V2 arrives 20:00 and stays: clamped to midnight, 4 hours.
		{VehicleID: "V2", Source: "Central_Stb02_S1", Destination: "Central_Entrance", Start: at(19, 55), End: at(20, 0)},
		// V3 never visits the entrance.
		{VehicleID: "V3", Source: "Central_Stb03_S1", Destination: "Central_Maint01", Start: at(9, 0), End: at(9, 5)},
	}
	hours := DailyDwell(movements, "Central_Entrance", day)
	if hours["v1"] != 2.5 {
		t.Fatalf("V1 dwell = %v, want 2.5", hours["v1"])
	}
	if hours["v2"] != 4 {
		t.Fatalf("V2 dwell = %v, want 4", hours["v2"])
	}
	if _, ok := hours["v3"]; ok {
		t.Fatalf("V3 never dwelled, got %v", hours["v3"])
	}
}

func TestPlanBrandingOnlyCampaignVehicles(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	p := testPlanner(now)
	snap := emptySnap()
	at := func(h, m int) time.Time {
		return time.Date(2024, 3, 5, h, m, 0, 0, time.UTC)
	}
	snap.Movements = []model.MovementRecord{
		{VehicleID: "V1", Source: "Central_Stb01_S1", Destination: "Central_Entrance", Start: at(7, 55), End: at(8, 0)},
		{VehicleID: "V1", Source: "Central_Entrance", Destination: "Central_Stb01_S1", Start: at(10, 30), End: at(10, 35)},
		{VehicleID: "V2", Source: "Central_Stb02_S1", Destination: "Central_Entrance", Start: at(7, 55), End: at(8, 0)},
	}
	snap.Branding = []model.BrandingCampaign{
		{RecordID: "B1", VehicleID: "V1", RequiredHours: 100, RemainingHours: 50},
	}
	pc := p.newPassCtx(snap)

	accruals := p.planBranding(pc)
	if len(accruals) != 1 {
		t.Fatalf("only campaign vehicles accrue, got %+v", accruals)
	}
	if accruals[0].VehicleID != "V1" || accruals[0].AddHours != 2.5 {
		t.Fatalf("accrual = %+v", accruals[0])
	}
}

func seedFullPass(ms *store.MemoryStore) {
	ms.Seed(store.TableVehicles, []store.Row{
		{"Vehicle_ID": "V1", "Status": "In-Service"},
	})
	ms.Seed(store.TableWorkOrders, []store.Row{
		{"WorkOrder_ID": "W1", "Vehicle_ID": "V1", "Status": "Open", "Opened_Date": "3/01/2024"},
	})
	ms.Seed(store.TableCertificates, []store.Row{
		{"Vehicle_ID": "V1", "Certificate_Type": "Fitness", "Status": "Valid"},
	})
	ms.Seed(store.TableMileage, []store.Row{
		{"Vehicle_ID": "V1", "Total_KM": "12,000"},
	})
	ms.Seed(store.TableLightClean, []store.Row{
		{"Vehicle_ID": "V1", "Cleanliness_Status": "Clean", "Last_Cleaning_Date": "3/04/2024"},
	})
	ms.Seed(store.TableDeepClean, []store.Row{
		{"Vehicle_ID": "V1", "Cleanliness_Status": "Clean", "Last_Cleaning_Date": "2/20/2024"},
	})
	ms.Seed(store.TableCleaningSlots, []store.Row{
		{"Date": "3/05/2024", "Start_Time": "09:00", "End_Time": "09:10", "Status": "Available"},
	})
	ms.Seed(store.TableGeometry, []store.Row{
		{"Source": "Central_Stb01_S1", "Destination": "Central_Maint01", "Travel_Duration_Minutes": "3", "Energy_Cost_kWh": "1.1"},
	})
	ms.Seed(store.TableMovements, []store.Row{
		{"Vehicle_ID": "V1", "Source": "Central_Entrance", "Destination": "Central_Stb01_S1", "Start_Time": "3/05/2024 07:00", "End_Time": "3/05/2024 07:05", "Action": "Night_Return"},
	})
	ms.Seed(store.TableBranding, []store.Row{
		{"Record_ID": "B1", "Vehicle_ID": "V1", "Required_Hours": "100", "Accumulated_Hours": "10"},
	})
	ms.Seed(store.TableAService, []store.Row{
		{"Vehicle_ID": "V1", "A_Check_Date": "3/01/2024"},
	})
	ms.Seed(store.TableBService, []store.Row{
		{"Vehicle_ID": "V1", "B_Check_Date": "1/10/2024"},
	})
}

func TestRunFullPlanningPass(t *testing.T) {
	ms := store.NewMemoryStore()
	seedFullPass(ms)
	loader, err := snapshot.NewLoader(ms, nil, snapshot.DefaultTTLs(), nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	p := NewPlanner(loader, nil, Config{}, nil)
	p.now = func() time.Time { return now }
	p.filter.Now = now

	res, err := p.RunFullPlanningPass(context.Background())
	if err != nil {
		t.Fatalf("RunFullPlanningPass: %v", err)
	}
	if res.PassID == "" {
		t.Fatalf("pass needs an id")
	}
	if len(res.BranchErrors) != 0 {
		t.Fatalf("branch errors: %v", res.BranchErrors)
	}

	var maint *model.MaintenanceProposal
	for _, prop := range res.Proposals {
		if mp, ok := prop.(model.MaintenanceProposal); ok {
			maint = &mp
		}
	}
	if maint == nil {
		t.Fatalf("open work order W1 must yield a maintenance proposal")
	}
	if !maint.Validation().Valid {
		t.Fatalf("proposal invalid: %v", maint.Validation().Errors)
	}
	if maint.Movement().Source != "Central_Stb01_S1" || maint.Movement().Destination != "Central_Maint01" {
		t.Fatalf("movement = %+v", maint.Movement())
	}

	found := false
	for _, ref := range res.Payload.WorkOrdersToClose {
		if ref.ID == "W1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("payload must close W1: %+v", res.Payload.WorkOrdersToClose)
	}
	for i, l := range res.Payload.Logs {
		want := now.Add(time.Duration(i) * 30 * time.Second)
		if !l.Start.Equal(want) {
			t.Fatalf("log %d start = %v, want staggered %v", i, l.Start, want)
		}
	}
}

func TestProposeSingleBranches(t *testing.T) {
	ms := store.NewMemoryStore()
	seedFullPass(ms)
	loader, err := snapshot.NewLoader(ms, nil, snapshot.DefaultTTLs(), nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	p := NewPlanner(loader, nil, Config{}, nil)
	p.now = func() time.Time { return now }
	p.filter.Now = now

	maint, err := p.ProposeMaintenanceMovements(context.Background())
	if err != nil {
		t.Fatalf("ProposeMaintenanceMovements: %v", err)
	}
	if len(maint) != 1 || maint[0].Kind() != model.ProposalMaintenance {
		t.Fatalf("maintenance proposals = %+v", maint)
	}

	checks, err := p.ProposeServiceCheckMovements(context.Background())
	if err != nil {
		t.Fatalf("ProposeServiceCheckMovements: %v", err)
	}
	if len(checks) != 1 {
		t.Fatalf("B check from 1/10 is 55 days overdue on 3/05, want one proposal, got %d", len(checks))
	}
	if sc, ok := checks[0].(model.ServiceCheckProposal); !ok || sc.Service != model.ServiceB {
		t.Fatalf("service proposal = %+v", checks[0])
	}

	// V1 was light-cleaned yesterday and deep-cleaned two weeks ago,
	// both within threshold.
	light, err := p.ProposeCleaningMovements(context.Background(), model.CleanLight)
	if err != nil {
		t.Fatalf("ProposeCleaningMovements: %v", err)
	}
	if len(light) != 0 {
		t.Fatalf("fresh vehicle must not be re-proposed, got %d proposals", len(light))
	}
	deep, err := p.ProposeCleaningMovements(context.Background(), model.CleanDeep)
	if err != nil {
		t.Fatalf("ProposeCleaningMovements: %v", err)
	}
	if len(deep) != 0 {
		t.Fatalf("deep tier within threshold, got %d proposals", len(deep))
	}
}

func TestRunFullPlanningPassLoadFailure(t *testing.T) {
	ms := store.NewMemoryStore() // no tables at all
	loader, err := snapshot.NewLoader(ms, nil, snapshot.DefaultTTLs(), nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	p := NewPlanner(loader, nil, Config{}, nil)
	if _, err := p.RunFullPlanningPass(context.Background()); err == nil {
		t.Fatalf("unreadable store must abort the pass")
	}
}
