package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking statuses.
const (
	BookingStatusHold      = "hold"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Transaction statuses.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusRefunded  = "refunded"
)

// DefaultCurrency for all charges.
const DefaultCurrency = "ILS"

// Booking occupies [CheckIn, CheckOut) on one cabin. For any status
// other than cancelled, no other non-cancelled booking on the same
// cabin may overlap that interval.
type Booking struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	CabinID          uuid.UUID       `db:"cabin_id" json:"cabinId"`
	CustomerID       *uuid.UUID      `db:"customer_id" json:"customerId,omitempty"`
	CheckIn          time.Time       `db:"check_in" json:"checkInDate"`
	CheckOut         time.Time       `db:"check_out" json:"checkOutDate"`
	Adults           int             `db:"adults" json:"adults"`
	Kids             int             `db:"kids" json:"kids"`
	TotalPrice       decimal.Decimal `db:"total_price" json:"totalPrice"`
	Status           string          `db:"status" json:"status"`
	CalendarEventRef *string         `db:"event_id" json:"calendarEventRef,omitempty"`
	CalendarEventURL *string         `db:"event_link" json:"calendarEventLink,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
}

// Overlaps reports whether the booking's half-open interval intersects
// [start, end). Abutting ranges are not a conflict.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.CheckIn.Before(end) && start.Before(b.CheckOut)
}

// Transaction tracks a single payment attempt or refund for a booking.
// A booking may accumulate several rows; at most one is completed.
type Transaction struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	BookingID     uuid.UUID       `db:"booking_id" json:"bookingId"`
	PaymentRef    *string         `db:"payment_id" json:"paymentRef,omitempty"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Currency      string          `db:"currency" json:"currency"`
	Status        string          `db:"status" json:"status"`
	PaymentMethod *string         `db:"payment_method" json:"paymentMethod,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// Quote is a persisted price snapshot. QuoteData carries the full
// breakdown the pricing engine produced at quote time.
type Quote struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	CabinID    uuid.UUID       `db:"cabin_id" json:"cabinId"`
	CheckIn    time.Time       `db:"check_in" json:"checkIn"`
	CheckOut   time.Time       `db:"check_out" json:"checkOut"`
	Adults     *int            `db:"adults" json:"adults,omitempty"`
	Kids       *int            `db:"kids" json:"kids,omitempty"`
	TotalPrice decimal.Decimal `db:"total_price" json:"totalPrice"`
	QuoteData  JSONMap         `db:"quote_data" json:"quoteData,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}
