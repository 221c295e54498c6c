// Package calendar talks to the external booking calendar. Each cabin
// owns one calendar; its events are the source of truth for occupancy.
package calendar

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors the availability and booking layers branch on.
var (
	// ErrUnreachable covers network failures and provider 5xx.
	ErrUnreachable = errors.New("calendar: provider unreachable")
	// ErrForbidden covers expired or insufficient credentials.
	ErrForbidden = errors.New("calendar: access forbidden")
	// ErrNotFound means the calendar id does not exist.
	ErrNotFound = errors.New("calendar: not found")
)

// Event is a normalized calendar entry. Start and End are a half-open
// UTC interval; all-day events become midnight-to-midnight UTC.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	HTMLLink    string
}

// Overlaps reports whether the event intersects [start, end).
func (e Event) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && start.Before(e.End)
}

// IsHoldMarker reports whether the event is an opportunistic HOLD
// marker rather than a confirmed booking.
func (e Event) IsHoldMarker() bool {
	return strings.HasPrefix(e.Summary, "HOLD")
}

// Gateway is the calendar operations the rest of the system needs.
type Gateway interface {
	// ListEvents returns events on calendarID intersecting [start, end),
	// normalized and sorted by start time.
	ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]Event, error)
	// CreateEvent inserts an event and returns it with the provider id
	// and link filled in.
	CreateEvent(ctx context.Context, calendarID string, ev Event) (Event, error)
	// DeleteEvent removes an event, used to compensate a failed commit.
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// RFC3339Z formats t as UTC RFC 3339 with second precision, the only
// timestamp shape the provider accepts on list queries.
func RFC3339Z(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
