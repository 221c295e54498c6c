package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"zimmerbot/internal/models"
)

// QuoteRepository keeps price snapshots for analytics and follow-up.
type QuoteRepository struct {
	db *sqlx.DB
}

func NewQuoteRepository(db *sqlx.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Insert persists a quote snapshot. Failures here never block quoting;
// callers log and continue.
func (r *QuoteRepository) Insert(ctx context.Context, q *models.Quote) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	query := `
		INSERT INTO quotes (
			id, cabin_id, check_in, check_out, adults, kids, total_price, quote_data
		) VALUES (
			:id, :cabin_id, :check_in, :check_out, :adults, :kids, :total_price, :quote_data
		)`
	if _, err := r.db.NamedExecContext(ctx, query, q); err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// ListRecent returns the newest quotes for the admin surface.
func (r *QuoteRepository) ListRecent(ctx context.Context, limit int) ([]models.Quote, error) {
	if limit <= 0 {
		limit = 50
	}
	var quotes []models.Quote
	query := `SELECT ` + quoteColumns + ` FROM quotes ORDER BY created_at DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &quotes, query, limit); err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, nil
}
