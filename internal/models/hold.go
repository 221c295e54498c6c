package models

import "time"

// Hold statuses.
const (
	HoldStatusActive    = "active"
	HoldStatusConverted = "converted"
	HoldStatusReleased  = "released"
)

// Hold is an ephemeral exclusive claim on (cabin, checkIn, checkOut),
// owned by the lock store and expired by its TTL. CabinID is the
// business short-code, dates are ISO date strings: together they form
// the lock key.
type Hold struct {
	ID           string    `json:"holdId"`
	CabinID      string    `json:"cabinId"`
	CheckIn      string    `json:"checkIn"`
	CheckOut     string    `json:"checkOut"`
	CustomerName *string   `json:"customerName,omitempty"`
	CustomerID   *string   `json:"customerId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Status       string    `json:"status"`
	// Warning is set when the lock store was unavailable and the hold
	// lives only in process memory.
	Warning string `json:"warning,omitempty"`
}

// Expired reports whether the hold has passed its TTL at now.
func (h *Hold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}
