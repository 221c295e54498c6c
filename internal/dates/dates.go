// Package dates handles civil dates in the business timezone. All
// stays are half-open [checkIn, checkOut) intervals of whole days.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// ISO is the wire format for civil dates.
const ISO = "2006-01-02"

// BusinessLocation resolves the named timezone, falling back to a
// fixed +02:00 offset when the tzdata is missing from the host.
func BusinessLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("IST", 2*60*60)
	}
	return loc
}

// ParseISO parses an ISO civil date into midnight UTC.
func ParseISO(s string) (time.Time, error) {
	return time.Parse(ISO, s)
}

// Midnight truncates t to its civil date in t's own location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Nights returns the number of nights between check-in and check-out,
// never negative.
func Nights(checkIn, checkOut time.Time) int {
	n := int(Midnight(checkOut).Sub(Midnight(checkIn)).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// Overlap reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Wall-clock layouts guests and staff actually type. A date without a
// time defaults to noon so UTC conversion never shifts the civil day.
var localLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseLocal parses a wall-clock date or datetime in loc. A "T"
// separator is accepted in place of a space.
func ParseLocal(value string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(strings.ReplaceAll(value, "T", " "))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty datetime value")
	}
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if !strings.Contains(layout, "15:04") {
			t = t.Add(12 * time.Hour)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", value)
}
