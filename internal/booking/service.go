// Package booking implements the commit path: the ordered, durable
// sequence that turns a quote or hold into a confirmed stay.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"zimmerbot/internal/availability"
	"zimmerbot/internal/calendar"
	"zimmerbot/internal/dates"
	"zimmerbot/internal/email"
	"zimmerbot/internal/hold"
	"zimmerbot/internal/logger"
	"zimmerbot/internal/models"
	"zimmerbot/internal/payment"
	"zimmerbot/internal/pricing"
	"zimmerbot/internal/repository"
)

// At most this many conflict lines are surfaced in a busy error.
const maxConflictSummary = 3

// Service owns bookings, cancellations, quotes, and payment
// reconciliation.
type Service struct {
	store    *repository.Store
	holds    *hold.Manager
	resolver *availability.Resolver
	pricer   *pricing.Engine
	cal      calendar.Gateway
	payments *payment.Gateway
	mailer   *email.Mailer
	loc      *time.Location
}

func NewService(
	store *repository.Store,
	holds *hold.Manager,
	resolver *availability.Resolver,
	pricer *pricing.Engine,
	cal calendar.Gateway,
	payments *payment.Gateway,
	mailer *email.Mailer,
	loc *time.Location,
) *Service {
	return &Service{
		store:    store,
		holds:    holds,
		resolver: resolver,
		pricer:   pricer,
		cal:      cal,
		payments: payments,
		mailer:   mailer,
		loc:      loc,
	}
}

// CommitRequest is a booking submission. CabinID accepts any of the
// identifiers Resolve understands; dates are business-local
// wall-clock strings.
type CommitRequest struct {
	CabinID       string
	CheckIn       string
	CheckOut      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Notes         string
	Adults        int
	Kids          int
	TotalPrice    *decimal.Decimal
	Addons        []pricing.Addon
	HoldID        string
	CreatePayment bool
}

// CommitResult is the confirmed booking plus everything the caller
// needs to continue (payment secret, event link, warnings).
type CommitResult struct {
	Booking      *models.Booking  `json:"booking"`
	Cabin        *models.Cabin    `json:"cabin"`
	Customer     *models.Customer `json:"customer,omitempty"`
	EventLink    string           `json:"eventLink,omitempty"`
	PaymentRef   string           `json:"paymentRef,omitempty"`
	ClientSecret string           `json:"clientSecret,omitempty"`
	Warnings     []string         `json:"warnings,omitempty"`
}

// parseRange validates and converts the request dates.
func (s *Service) parseRange(checkIn, checkOut string) (localIn, localOut time.Time, err error) {
	localIn, err = dates.ParseLocal(checkIn, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	localOut, err = dates.ParseLocal(checkOut, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	if !localOut.After(localIn) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-out must be after check-in", ErrInvalidDateRange)
	}
	return localIn, localOut, nil
}

// Commit runs the full booking sequence. Preconditions fail fast;
// afterwards each step is durable in order, with calendar
// compensation when the database insert fails.
func (s *Service) Commit(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	log := logger.FromContext(ctx)

	// Preconditions.
	cabin, err := s.store.Cabins.Resolve(ctx, req.CabinID)
	if err != nil {
		return nil, err
	}

	localIn, localOut, err := s.parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	utcIn, utcOut := localIn.UTC(), localOut.UTC()
	isoIn := dates.Midnight(localIn).Format(dates.ISO)
	isoOut := dates.Midnight(localOut).Format(dates.ISO)

	var usedHold *models.Hold
	if req.HoldID != "" {
		usedHold, err = s.holds.Get(ctx, req.HoldID)
		if err != nil {
			return nil, err
		}
		if usedHold == nil {
			return nil, ErrHoldNotFound
		}
		if usedHold.CabinID != cabin.ShortCode {
			return nil, &HoldMismatchError{HoldCabinID: usedHold.CabinID, CabinID: cabin.ShortCode}
		}
	} else {
		blocking, err := s.holds.GetByDates(ctx, cabin.ShortCode, isoIn, isoOut)
		if err != nil {
			return nil, err
		}
		if blocking != nil {
			return nil, &OnHoldError{CabinID: cabin.ShortCode, ExpiresAt: blocking.ExpiresAt}
		}
	}

	overlapping, err := s.store.Bookings.ListOverlapping(ctx, cabin.ID, dates.Midnight(localIn), dates.Midnight(localOut))
	if err != nil {
		return nil, fmt.Errorf("check existing bookings: %w", err)
	}
	if len(overlapping) > 0 {
		summaries := make([]string, 0, maxConflictSummary)
		for _, ob := range overlapping {
			if len(summaries) == maxConflictSummary {
				break
			}
			summaries = append(summaries, "הזמנה "+ob.CheckIn.Format(dates.ISO)+" → "+ob.CheckOut.Format(dates.ISO))
		}
		return nil, &BusyError{CabinID: cabin.ShortCode, Conflicts: summaries}
	}

	conflicts, err := s.resolver.Conflicts(ctx, cabin, utcIn, utcOut)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, &BusyError{
			CabinID:   cabin.ShortCode,
			Conflicts: availability.SummarizeConflicts(conflicts, maxConflictSummary),
		}
	}

	result := &CommitResult{Cabin: cabin}

	// Step 1: customer upsert.
	var customerID *uuid.UUID
	customer, err := s.upsertCustomer(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("customer upsert failed, booking continues without customer")
	} else if customer != nil {
		result.Customer = customer
		customerID = &customer.ID
	}

	// Step 2: calendar event.
	event, err := s.cal.CreateEvent(ctx, cabin.CalendarRef, calendar.Event{
		Summary:     "הזמנה | " + orDefault(req.CustomerName, "לקוח"),
		Description: eventDescription(cabin.ShortCode, req, localIn, localOut),
		Start:       localIn,
		End:         localOut,
	})
	if err != nil {
		return nil, fmt.Errorf("create calendar event: %w", err)
	}

	// Step 3: price.
	total := decimal.Zero
	if req.TotalPrice != nil {
		total = *req.TotalPrice
	} else {
		total = s.pricer.Quote(cabin, localIn, localOut, req.Addons, true).Total
	}

	// Step 4: booking row, paired with its audit entry. A failure here
	// compensates the calendar event so nothing is orphaned.
	b := &models.Booking{
		ID:               uuid.New(),
		CabinID:          cabin.ID,
		CustomerID:       customerID,
		CheckIn:          dates.Midnight(localIn),
		CheckOut:         dates.Midnight(localOut),
		Adults:           req.Adults,
		Kids:             req.Kids,
		TotalPrice:       total,
		Status:           models.BookingStatusConfirmed,
		CalendarEventRef: &event.ID,
	}
	if event.HTMLLink != "" {
		b.CalendarEventURL = &event.HTMLLink
		result.EventLink = event.HTMLLink
	}
	if err := s.insertBookingWithAudit(ctx, b); err != nil {
		if delErr := s.cal.DeleteEvent(ctx, cabin.CalendarRef, event.ID); delErr != nil {
			log.Error().Err(delErr).Str("event_id", event.ID).Msg("failed to compensate orphaned calendar event")
		}
		return nil, err
	}
	result.Booking = b

	// Step 5: payment intent, optional and non-fatal.
	if req.CreatePayment && total.IsPositive() {
		s.attachPayment(ctx, result, b, cabin, req)
	}

	// Step 7: consume the hold.
	if usedHold != nil {
		if ok, err := s.holds.Convert(ctx, usedHold.ID, b.ID.String()); err != nil || !ok {
			log.Warn().Err(err).Str("hold_id", usedHold.ID).Msg("hold conversion failed, it will expire naturally")
		}
	}

	// Step 8: confirmation mail, best effort.
	if req.CustomerEmail != "" {
		s.mailer.SendBookingConfirmation(req.CustomerEmail, email.BookingConfirmation{
			CustomerName: orDefault(req.CustomerName, "אורח"),
			BookingID:    b.ID.String(),
			CabinName:    cabin.Name,
			CabinArea:    cabin.Area,
			CheckIn:      isoIn,
			CheckOut:     isoOut,
			Adults:       req.Adults,
			Kids:         req.Kids,
			TotalPrice:   total,
			EventLink:    result.EventLink,
			CabinAddress: cabin.Address(),
		})
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Str("cabin", cabin.ShortCode).
		Str("check_in", isoIn).
		Str("check_out", isoOut).
		Msg("booking committed")
	return result, nil
}

func (s *Service) upsertCustomer(ctx context.Context, req CommitRequest) (*models.Customer, error) {
	name := strings.TrimSpace(req.CustomerName)
	emailAddr := strings.TrimSpace(req.CustomerEmail)
	phone := strings.TrimSpace(req.CustomerPhone)
	if name == "" && emailAddr == "" && phone == "" {
		return nil, nil
	}
	return s.store.Customers.Upsert(ctx, nilIfBlank(name), nilIfBlank(emailAddr), nilIfBlank(phone))
}

func (s *Service) insertBookingWithAudit(ctx context.Context, b *models.Booking) error {
	tx, err := s.store.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.store.Bookings.Insert(ctx, tx, b); err != nil {
		return err
	}
	newValues := models.JSONMap{
		"cabin_id":    b.CabinID.String(),
		"check_in":    b.CheckIn.Format(dates.ISO),
		"check_out":   b.CheckOut.Format(dates.ISO),
		"total_price": b.TotalPrice.String(),
		"status":      b.Status,
	}
	if err := s.store.Audit.Append(ctx, tx, "bookings", b.ID.String(), models.AuditActionInsert, nil, newValues, nil); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

func (s *Service) attachPayment(ctx context.Context, result *CommitResult, b *models.Booking, cabin *models.Cabin, req CommitRequest) {
	log := logger.FromContext(ctx)

	meta := map[string]string{
		"booking_id": b.ID.String(),
		"cabin_id":   cabin.ShortCode,
	}
	if result.Customer != nil {
		meta["customer_id"] = result.Customer.ID.String()
	}

	intent, err := s.payments.CreateIntent(ctx, b.TotalPrice, "Booking "+b.ID.String(), meta)
	if err != nil {
		log.Warn().Err(err).Str("booking_id", b.ID.String()).Msg("payment intent creation failed")
		result.Warnings = append(result.Warnings, "payment setup failed; booking created without payment")
		return
	}

	method := "card"
	t := &models.Transaction{
		BookingID:     b.ID,
		PaymentRef:    &intent.ID,
		Amount:        b.TotalPrice,
		Currency:      models.DefaultCurrency,
		Status:        models.TransactionStatusPending,
		PaymentMethod: &method,
	}
	if err := s.store.Transactions.Insert(ctx, t); err != nil {
		log.Warn().Err(err).Str("booking_id", b.ID.String()).Msg("transaction insert failed")
		result.Warnings = append(result.Warnings, "payment record failed; booking created without payment")
		return
	}
	result.PaymentRef = intent.ID
	result.ClientSecret = intent.ClientSecret
}

// eventDescription renders the structured key: value block staff read
// directly in the calendar UI.
func eventDescription(shortCode string, req CommitRequest, in, out time.Time) string {
	lines := []string{
		"Cabin: " + shortCode,
		"Customer: " + orDefault(req.CustomerName, "לקוח"),
		"Phone: " + req.CustomerPhone,
		"Check-in: " + in.Format(time.RFC3339),
		"Check-out: " + out.Format(time.RFC3339),
	}
	if req.Notes != "" {
		lines = append(lines, "Notes: "+req.Notes)
	}
	return strings.Join(lines, "\n")
}

// Cancel marks a booking cancelled, audits the change, and removes its
// calendar event best-effort. Refunds stay an explicit separate step.
func (s *Service) Cancel(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	log := logger.FromContext(ctx)

	b, err := s.store.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == models.BookingStatusCancelled {
		return b, nil
	}

	oldStatus := b.Status
	if err := s.store.Bookings.UpdateStatus(ctx, bookingID, models.BookingStatusCancelled); err != nil {
		return nil, err
	}
	b.Status = models.BookingStatusCancelled

	if err := s.store.Audit.Append(ctx, nil, "bookings", b.ID.String(), models.AuditActionUpdate,
		models.JSONMap{"status": oldStatus},
		models.JSONMap{"status": models.BookingStatusCancelled}, nil); err != nil {
		log.Warn().Err(err).Str("booking_id", b.ID.String()).Msg("cancellation audit append failed")
	}

	if b.CalendarEventRef != nil {
		cabin, err := s.store.Cabins.GetByID(ctx, b.CabinID)
		if err == nil {
			if err := s.cal.DeleteEvent(ctx, cabin.CalendarRef, *b.CalendarEventRef); err != nil {
				log.Warn().Err(err).Str("booking_id", b.ID.String()).Msg("calendar event delete failed")
			}
		}
	}
	return b, nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func nilIfBlank(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
