package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"zimmerbot/internal/models"
)

// ErrBookingNotFound is returned when a booking id does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepository stores confirmed and cancelled stays.
type BookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Insert writes a new booking. Runs inside tx when one is given so the
// commit path can pair it with the audit append.
func (r *BookingRepository) Insert(ctx context.Context, tx *sqlx.Tx, b *models.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	query := `
		INSERT INTO bookings (
			id, cabin_id, customer_id, check_in, check_out, adults, kids,
			total_price, status, event_id, event_link
		) VALUES (
			:id, :cabin_id, :customer_id, :check_in, :check_out, :adults, :kids,
			:total_price, :status, :event_id, :event_link
		)`

	var err error
	if tx != nil {
		_, err = tx.NamedExecContext(ctx, query, b)
	} else {
		_, err = r.db.NamedExecContext(ctx, query, b)
	}
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID fetches one booking.
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

// ListOverlapping returns non-cancelled bookings on the cabin whose
// interval intersects [checkIn, checkOut).
func (r *BookingRepository) ListOverlapping(ctx context.Context, cabinID uuid.UUID, checkIn, checkOut time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE cabin_id = $1
		  AND status <> $2
		  AND check_in < $4
		  AND $3 < check_out
		ORDER BY check_in`
	err := r.db.SelectContext(ctx, &bookings, query, cabinID, models.BookingStatusCancelled, checkIn, checkOut)
	if err != nil {
		return nil, fmt.Errorf("list overlapping bookings: %w", err)
	}
	return bookings, nil
}

// ListRecent returns the newest bookings for the admin surface,
// optionally filtered by status.
func (r *BookingRepository) ListRecent(ctx context.Context, status string, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	var bookings []models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC LIMIT $2`
	if err := r.db.SelectContext(ctx, &bookings, query, status, limit); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatus moves a booking to the given status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}
