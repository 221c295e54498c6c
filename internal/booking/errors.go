package booking

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDateRange is returned when checkOut is not after checkIn
// or a date fails to parse.
var ErrInvalidDateRange = errors.New("invalid date range")

// HoldMismatchError means the supplied hold belongs to a different
// cabin than the one being booked.
type HoldMismatchError struct {
	HoldCabinID string
	CabinID     string
}

func (e *HoldMismatchError) Error() string {
	return fmt.Sprintf("hold is for cabin %s, not %s", e.HoldCabinID, e.CabinID)
}

// ErrHoldNotFound means the supplied hold id does not exist or has
// expired.
var ErrHoldNotFound = errors.New("hold not found or expired")

// OnHoldError means someone else holds the requested dates.
type OnHoldError struct {
	CabinID   string
	ExpiresAt time.Time
}

func (e *OnHoldError) Error() string {
	return fmt.Sprintf("cabin %s is on hold until %s", e.CabinID, e.ExpiresAt.Format(time.RFC3339))
}

// BusyError means the calendar shows a conflicting event.
type BusyError struct {
	CabinID   string
	Conflicts []string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("cabin %s is not available (%d conflicts)", e.CabinID, len(e.Conflicts))
}
