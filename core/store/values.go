package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sheet cell formats. Dates are written as 1/02/2006 (no leading zero
// on the month, day zero-padded) and datetimes add a 24h clock.
const (
	dateLayout     = "1/02/2006"
	dateTimeLayout = "1/02/2006 15:04"
	isoDateLayout  = "2006-01-02"
)

// ParseDate accepts the sheet date form and ISO dates, returning the
// zero time for empty or unparseable input.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{dateLayout, "1/2/2006", isoDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	// Datetime cell in a date column: keep the date part.
	if t := ParseDateTime(s); !t.IsZero() {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	return time.Time{}
}

// ParseDateTime accepts sheet datetimes, ISO timestamps and bare HH:mm
// clock values (anchored to today), returning the zero time on failure.
func ParseDateTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{dateTimeLayout, "1/2/2006 15:04", time.RFC3339, "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if hh, mm, ok := parseClock(s); ok {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), hh, mm, 0, 0, now.Location())
	}
	return time.Time{}
}

// FormatDate renders a time as a sheet date cell.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%02d/%d", int(t.Month()), t.Day(), t.Year())
}

// FormatDateTime renders a time as a sheet datetime cell.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s %02d:%02d", FormatDate(t), t.Hour(), t.Minute())
}

// ParseNumber parses numeric cells tolerating comma and space grouping
// ("12,345"). Returns the fallback when the cell is not a number.
func ParseNumber(s string, fallback float64) float64 {
	s = strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return n
}

// ClockMinutes converts an "HH:mm" cell to minutes past midnight,
// returning -1 for malformed input.
func ClockMinutes(s string) int {
	hh, mm, ok := parseClock(s)
	if !ok {
		return -1
	}
	return hh*60 + mm
}

func parseClock(s string) (hh, mm int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	mm, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, 0, false
	}
	return hh, mm, true
}
