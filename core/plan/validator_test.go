package plan

import (
	"testing"
	"time"

	"github.com/railyard-ops/railyard/core/location"
	"github.com/railyard-ops/railyard/core/model"
)

func testValidator() *Validator {
	return NewValidator(location.NewVocabulary([]string{
		"Central_Entrance", "Central_Stb01_S1", "Central_Stb02_S1", "Central_Maint01",
	}))
}

func TestValidateOK(t *testing.T) {
	v := testValidator()
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	m := model.MovementRecord{
		VehicleID:   "V1",
		Source:      "central entrance",
		Destination: "Central_Stb01_S1",
		Start:       start,
		End:         start.Add(4 * time.Minute),
	}
	res := v.Validate(&m)
	if !res.Valid {
		t.Fatalf("errors = %v", res.Errors)
	}
	if m.Source != "Central_Entrance" {
		t.Fatalf("source should be normalized in place, got %q", m.Source)
	}
}

func TestValidateUnknownLocationSuggests(t *testing.T) {
	v := testValidator()
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	m := model.MovementRecord{
		VehicleID:   "V1",
		Source:      "Central_Stb01_S1",
		Destination: "Central_Stb",
		Start:       start,
		End:         start.Add(time.Minute),
	}
	res := v.Validate(&m)
	if res.Valid {
		t.Fatalf("unknown destination must fail")
	}
	sugg := res.Suggestions["destination"]
	if len(sugg) == 0 || sugg[0] != "Central_Stb01_S1" {
		t.Fatalf("suggestions = %v", sugg)
	}
}

func TestValidateTemporalOrder(t *testing.T) {
	v := testValidator()
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	m := model.MovementRecord{
		VehicleID:   "V1",
		Source:      "Central_Entrance",
		Destination: "Central_Stb01_S1",
		Start:       start,
		End:         start,
	}
	if res := v.Validate(&m); res.Valid {
		t.Fatalf("zero-length movement must fail")
	}
	m.End = start.Add(-time.Minute)
	if res := v.Validate(&m); res.Valid {
		t.Fatalf("end before start must fail")
	}
}

func TestValidateMissingFields(t *testing.T) {
	v := testValidator()
	m := model.MovementRecord{}
	res := v.Validate(&m)
	if res.Valid {
		t.Fatalf("empty record must fail")
	}
	if len(res.Errors) < 3 {
		t.Fatalf("every missing field reports, got %v", res.Errors)
	}
}
