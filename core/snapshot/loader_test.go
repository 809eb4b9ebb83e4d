package snapshot

import (
	"context"
	"testing"

	"github.com/railyard-ops/railyard/core/model"
	"github.com/railyard-ops/railyard/core/store"
)

func seedStore() *store.MemoryStore {
	st := store.NewMemoryStore()
	st.Seed(store.TableVehicles, []store.Row{
		{"Vehicle_ID": "V1", "Status": "In-Service"},
		{"Vehicle_ID": "V2", "Status": "Standby"},
	})
	st.Seed(store.TableWorkOrders, []store.Row{
		{"JobCard_ID": "W1", "Train_ID": "V2", "Status": "Open", "Opened_Date": "1/01/2024"},
	})
	st.Seed(store.TableCertificates, []store.Row{
		{"Train_ID": "V1", "Certificate_Type": "Fitness", "Status": "Valid"},
	})
	st.Seed(store.TableMileage, []store.Row{
		{"Train_ID": "V1", "Total_KM": "10,000"},
		{"Train_ID": "V2", "Total_KM": "20000"},
		{"Train_ID": "V1", "Total_KM": "11,000"}, // duplicate, must win
	})
	st.Seed(store.TableLightClean, []store.Row{
		{"Train_ID": "V1", "Cleanliness_Status": "Clean", "Last_Cleaning_Date": "1/01/2024"},
	})
	st.Seed(store.TableDeepClean, nil)
	st.Seed(store.TableCleaningSlots, []store.Row{
		{"Date": "1/02/2024", "Start_Time": "09:00", "End_Time": "09:10", "Status": "available"},
		{"Date": "1/02/2024", "Start_Time": "bad", "End_Time": "", "Status": "available"},
	})
	st.Seed(store.TableGeometry, []store.Row{
		{"Source": "Central_Entrance", "Destination": "Central_Stb01_S1", "Travel_Duration_Minutes": "4", "Energy_Cost_kWh": "1.5"},
	})
	st.Seed(store.TableMovements, []store.Row{
		{"Train_ID": "V1", "Source": "Central_Stb01_S1", "Destination": "Central_Entrance", "Start_Time": "1/02/2024 06:00", "End_Time": "1/02/2024 06:05", "Action": "Swap_In"},
		{"Train_ID": "V2", "Source": "Central_Stb02_S1", "Destination": "central entrance", "Start_Time": "1/02/2024 06:10", "End_Time": "1/02/2024 06:15", "Action": "Swap_In"},
		{"Train_ID": "V2", "Source": "Central_Entrance", "Destination": "Central_Stb02_S1", "Start_Time": "1/02/2024 09:00", "End_Time": "1/02/2024 09:05", "Action": "Swap_Out"},
	})
	st.Seed(store.TableBranding, []store.Row{
		{"Train_ID": "V1", "Required_Hours": "100", "Accumulated_Hours": "40", "Remaining_Hours": "60"},
		{"Train_ID": "V1", "Required_Hours": "50", "Accumulated_Hours": "45"},
	})
	st.Seed(store.TableAService, []store.Row{
		{"Train_ID": "V1", "a_check_date": "1/01/2024"},
	})
	st.Seed(store.TableBService, nil)
	return st
}

func loadSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	l, err := NewLoader(seedStore(), NewCache(), DefaultTTLs(), nil)
	if err != nil {
		t.Fatalf("loader: %v", err)
	}
	snap, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return snap
}

func TestLoadDecodesTables(t *testing.T) {
	snap := loadSnapshot(t)
	if len(snap.Vehicles) != 2 || snap.Vehicles[0].Status != model.StatusInService {
		t.Fatalf("vehicles: %+v", snap.Vehicles)
	}
	if len(snap.CleaningSlots) != 1 {
		t.Fatalf("malformed slot rows must be dropped: %+v", snap.CleaningSlots)
	}
	if len(snap.Geometry) != 1 || snap.Geometry[0].DurationMinutes != 4 {
		t.Fatalf("geometry: %+v", snap.Geometry)
	}
}

func TestMileageLastOccurrenceWins(t *testing.T) {
	snap := loadSnapshot(t)
	km, ok := snap.TotalKM("v1")
	if !ok || km != 11000 {
		t.Fatalf("TotalKM(v1) = %v %v", km, ok)
	}
	if len(snap.FleetIDs) != 2 || snap.FleetIDs[0] != "V1" {
		t.Fatalf("fleet universe: %v", snap.FleetIDs)
	}
}

func TestCurrentLocationAndOccupants(t *testing.T) {
	snap := loadSnapshot(t)
	if loc := snap.CurrentLocation("V1"); loc != "Central_Entrance" {
		t.Fatalf("V1 location = %q", loc)
	}
	if loc := snap.CurrentLocation("V2"); loc != "Central_Stb02_S1" {
		t.Fatalf("V2 location = %q", loc)
	}
	occ := snap.Occupants("Central_Entrance")
	if len(occ) != 1 || occ[0] != "V1" {
		t.Fatalf("occupants = %v", occ)
	}
}

func TestRemainingBrandingHoursMax(t *testing.T) {
	snap := loadSnapshot(t)
	// 60 from the explicit row, 5 derived on the second row: max wins.
	if h := snap.RemainingBrandingHours("V1"); h != 60 {
		t.Fatalf("remaining hours = %v", h)
	}
	if h := snap.RemainingBrandingHours("V2"); h != 0 {
		t.Fatalf("no campaign should be 0, got %v", h)
	}
}

func TestPendingWorkOrders(t *testing.T) {
	snap := loadSnapshot(t)
	if !snap.HasPendingWorkOrder("V2") {
		t.Fatalf("V2 has an open order")
	}
	if snap.HasPendingWorkOrder("V1") {
		t.Fatalf("V1 has none")
	}
}

func TestLoaderCachesReads(t *testing.T) {
	st := seedStore()
	cache := NewCache()
	l, _ := NewLoader(st, cache, DefaultTTLs(), nil)
	if _, err := l.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	// Mutate the backing store; a cached reload must not see it.
	st.Seed(store.TableMileage, nil)
	snap, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(snap.Mileage) == 0 {
		t.Fatalf("expected cached mileage rows")
	}
	// After invalidation the reload hits the store again.
	l.Invalidate(store.TableMileage)
	snap, _ = l.Load(context.Background())
	if len(snap.Mileage) != 0 {
		t.Fatalf("expected empty mileage after invalidation")
	}
}
