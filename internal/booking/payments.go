package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"zimmerbot/internal/email"
	"zimmerbot/internal/logger"
	"zimmerbot/internal/models"
	"zimmerbot/internal/payment"
)

// ReconcileWebhook applies a verified provider event to the matching
// transaction. Success completes it and mails a receipt; failure marks
// it failed and leaves the booking confirmed for the operator to
// decide.
func (s *Service) ReconcileWebhook(ctx context.Context, ev *payment.Event) error {
	log := logger.FromContext(ctx)

	switch ev.Type {
	case payment.EventPaymentSucceeded, payment.EventPaymentFailed:
	default:
		log.Debug().Str("type", ev.Type).Msg("ignoring webhook event type")
		return nil
	}

	intent, err := ev.Intent()
	if err != nil {
		return err
	}

	t, err := s.store.Transactions.GetByPaymentRef(ctx, intent.ID)
	if err != nil {
		return fmt.Errorf("match webhook %s: %w", intent.ID, err)
	}

	if ev.Type == payment.EventPaymentFailed {
		if err := s.store.Transactions.UpdateStatus(ctx, t.ID, models.TransactionStatusFailed); err != nil {
			return err
		}
		log.Warn().Str("payment_ref", intent.ID).Str("booking_id", t.BookingID.String()).Msg("payment failed")
		return nil
	}

	if err := s.store.Transactions.UpdateStatus(ctx, t.ID, models.TransactionStatusCompleted); err != nil {
		return err
	}
	log.Info().Str("payment_ref", intent.ID).Str("booking_id", t.BookingID.String()).Msg("payment completed")

	s.sendReceipt(ctx, t, intent.ID)
	return nil
}

func (s *Service) sendReceipt(ctx context.Context, t *models.Transaction, paymentRef string) {
	log := logger.FromContext(ctx)

	b, err := s.store.Bookings.GetByID(ctx, t.BookingID)
	if err != nil {
		log.Warn().Err(err).Msg("receipt skipped, booking lookup failed")
		return
	}
	if b.CustomerID == nil {
		return
	}
	customer, err := s.store.Customers.GetByID(ctx, *b.CustomerID)
	if err != nil || customer == nil || customer.Email == nil {
		return
	}
	cabin, err := s.store.Cabins.GetByID(ctx, b.CabinID)
	if err != nil {
		return
	}

	name := ""
	if customer.Name != nil {
		name = *customer.Name
	}
	method := "card"
	if t.PaymentMethod != nil {
		method = *t.PaymentMethod
	}
	s.mailer.SendPaymentReceipt(*customer.Email, email.PaymentReceipt{
		CustomerName:  orDefault(name, "אורח"),
		BookingID:     b.ID.String(),
		CabinName:     cabin.Name,
		Amount:        t.Amount,
		PaymentMethod: method,
		TransactionID: paymentRef,
	})
}

// Refund refunds a transaction at the gateway and marks the row
// refunded. A nil amount refunds in full.
func (s *Service) Refund(ctx context.Context, transactionID uuid.UUID, amount *decimal.Decimal, reason string) (*payment.Refund, error) {
	t, err := s.store.Transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if t.PaymentRef == nil {
		return nil, fmt.Errorf("transaction %s has no payment reference", transactionID)
	}
	if t.Status != models.TransactionStatusCompleted {
		return nil, fmt.Errorf("transaction %s is %s, only completed payments can be refunded", transactionID, t.Status)
	}

	refund, err := s.payments.CreateRefund(ctx, *t.PaymentRef, amount, reason)
	if err != nil {
		return nil, err
	}
	if err := s.store.Transactions.UpdateStatus(ctx, t.ID, models.TransactionStatusRefunded); err != nil {
		return nil, err
	}

	if err := s.store.Audit.Append(ctx, nil, "transactions", t.ID.String(), models.AuditActionUpdate,
		models.JSONMap{"status": models.TransactionStatusCompleted},
		models.JSONMap{"status": models.TransactionStatusRefunded, "refund_id": refund.ID, "reason": reason}, nil); err != nil {
		l := logger.FromContext(ctx)
		l.Warn().Err(err).Msg("refund audit append failed")
	}
	return refund, nil
}
