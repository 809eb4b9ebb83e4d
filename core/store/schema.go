package store

import "strings"

// The store tolerates header synonyms: the same logical column appears
// as Vehicle_ID, vehicle_id or Train_ID depending on who last edited
// the sheet. Lookups compare keys with case, spaces, underscores and
// hyphens stripped, so each synonym list only needs one spelling per
// distinct word shape.

func normKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// Field returns the first non-empty value among the candidate column
// names, matching header keys fuzzily.
func Field(r Row, candidates ...string) string {
	// Exact hit first: cheap and covers the common case.
	for _, c := range candidates {
		if v, ok := r[c]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	want := make([]string, len(candidates))
	for i, c := range candidates {
		want[i] = normKey(c)
	}
	for k, v := range r {
		nk := normKey(k)
		for _, w := range want {
			if nk == w && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// ColumnIndex resolves a header column by synonym against a header row,
// returning -1 when absent. Used by the commit pipeline for in-place
// row updates.
func ColumnIndex(headers []string, candidates ...string) int {
	want := make([]string, len(candidates))
	for i, c := range candidates {
		want[i] = normKey(c)
	}
	for i, h := range headers {
		nh := normKey(h)
		for _, w := range want {
			if nh == w {
				return i
			}
		}
	}
	return -1
}

// SetField writes a value under whichever of the candidate columns the
// row already carries, falling back to the first candidate for rows
// that never had the column.
func SetField(r Row, value string, candidates ...string) {
	want := make([]string, len(candidates))
	for i, c := range candidates {
		want[i] = normKey(c)
	}
	for k := range r {
		nk := normKey(k)
		for _, w := range want {
			if nk == w {
				r[k] = value
				return
			}
		}
	}
	r[candidates[0]] = value
}

// Common synonym sets shared by the loader and the commit pipeline.
var (
	VehicleIDCols = []string{"Vehicle_ID", "VehicleID", "Train_ID", "TrainID"}
	StatusCols    = []string{"Status", "status"}
	DateCols      = []string{"Date", "date"}
	StartCols     = []string{"Start_Time", "Start", "start_time"}
	EndCols       = []string{"End_Time", "End", "end_time"}
)
