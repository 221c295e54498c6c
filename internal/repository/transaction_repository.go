package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"zimmerbot/internal/models"
)

// ErrTransactionNotFound is returned when no transaction matches.
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionRepository stores payment attempts and refunds.
type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Insert writes a new transaction row.
func (r *TransactionRepository) Insert(ctx context.Context, t *models.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Currency == "" {
		t.Currency = models.DefaultCurrency
	}
	query := `
		INSERT INTO transactions (
			id, booking_id, payment_id, amount, currency, status, payment_method
		) VALUES (
			:id, :booking_id, :payment_id, :amount, :currency, :status, :payment_method
		)`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches one transaction.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var t models.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	err := r.db.GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// GetByPaymentRef matches the gateway's reference to a transaction,
// used by webhook reconciliation.
func (r *TransactionRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*models.Transaction, error) {
	var t models.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE payment_id = $1 LIMIT 1`
	err := r.db.GetContext(ctx, &t, query, paymentRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction by payment ref: %w", err)
	}
	return &t, nil
}

// UpdateStatus moves a transaction to the given status.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// ListForBooking returns all payment rows of one booking.
func (r *TransactionRepository) ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Transaction, error) {
	var txs []models.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE booking_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &txs, query, bookingID); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}
