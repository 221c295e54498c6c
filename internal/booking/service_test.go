package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *Service {
	return &Service{loc: time.FixedZone("IST", 2*60*60)}
}

func TestParseRangeValid(t *testing.T) {
	s := testService()

	in, out, err := s.parseRange("2026-03-10", "2026-03-12")
	require.NoError(t, err)
	assert.Equal(t, 10, in.Day())
	assert.Equal(t, 12, out.Day())
	assert.True(t, out.After(in))
}

func TestParseRangeRejectsReversed(t *testing.T) {
	s := testService()

	_, _, err := s.parseRange("2026-03-12", "2026-03-10")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, _, err = s.parseRange("2026-03-10", "2026-03-10")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestParseRangeRejectsGarbage(t *testing.T) {
	s := testService()

	_, _, err := s.parseRange("soon", "2026-03-10")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, _, err = s.parseRange("2026-03-10", "")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestEventDescription(t *testing.T) {
	loc := time.FixedZone("IST", 2*60*60)
	in := time.Date(2026, 3, 10, 15, 0, 0, 0, loc)
	out := time.Date(2026, 3, 12, 11, 0, 0, 0, loc)

	desc := eventDescription("ZB01", CommitRequest{
		CustomerName:  "דנה לוי",
		CustomerPhone: "050-1234567",
		Notes:         "מגיעים מאוחר",
	}, in, out)

	assert.Contains(t, desc, "Cabin: ZB01")
	assert.Contains(t, desc, "Customer: דנה לוי")
	assert.Contains(t, desc, "Phone: 050-1234567")
	assert.Contains(t, desc, "Check-in: 2026-03-10T15:00:00+02:00")
	assert.Contains(t, desc, "Check-out: 2026-03-12T11:00:00+02:00")
	assert.Contains(t, desc, "Notes: מגיעים מאוחר")
}

func TestEventDescriptionDefaults(t *testing.T) {
	in := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	desc := eventDescription("ZB02", CommitRequest{}, in, in.AddDate(0, 0, 1))

	// Anonymous walk-ins still get a labeled event.
	assert.Contains(t, desc, "Customer: לקוח")
	assert.NotContains(t, desc, "Notes:")
}

func TestErrorMessages(t *testing.T) {
	err := &HoldMismatchError{HoldCabinID: "ZB02", CabinID: "ZB01"}
	assert.Contains(t, err.Error(), "ZB02")
	assert.Contains(t, err.Error(), "ZB01")

	busy := &BusyError{CabinID: "ZB01", Conflicts: []string{"a", "b"}}
	assert.Contains(t, busy.Error(), "2 conflicts")

	onHold := &OnHoldError{CabinID: "ZB03", ExpiresAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	assert.Contains(t, onHold.Error(), "ZB03")
}
