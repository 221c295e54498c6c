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

// FactRepository stores host-curated business facts (check-in times,
// pet policy, directions).
type FactRepository struct {
	db *sqlx.DB
}

func NewFactRepository(db *sqlx.DB) *FactRepository {
	return &FactRepository{db: db}
}

// ListActive returns every fact the agent may quote.
func (r *FactRepository) ListActive(ctx context.Context) ([]models.BusinessFact, error) {
	var facts []models.BusinessFact
	query := `SELECT ` + factColumns + ` FROM business_facts WHERE is_active ORDER BY category, fact_key`
	if err := r.db.SelectContext(ctx, &facts, query); err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	return facts, nil
}

// GetByKey fetches one active fact.
func (r *FactRepository) GetByKey(ctx context.Context, key string) (*models.BusinessFact, error) {
	var f models.BusinessFact
	query := `SELECT ` + factColumns + ` FROM business_facts WHERE fact_key = $1 AND is_active LIMIT 1`
	err := r.db.GetContext(ctx, &f, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fact: %w", err)
	}
	return &f, nil
}

// Upsert inserts or replaces a fact keyed on fact_key.
func (r *FactRepository) Upsert(ctx context.Context, f *models.BusinessFact) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	query := `
		INSERT INTO business_facts (id, fact_key, fact_value, category, description, is_active)
		VALUES (:id, :fact_key, :fact_value, :category, :description, :is_active)
		ON CONFLICT (fact_key) DO UPDATE SET
			fact_value = EXCLUDED.fact_value,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			is_active = EXCLUDED.is_active,
			updated_at = now()`
	if _, err := r.db.NamedExecContext(ctx, query, f); err != nil {
		return fmt.Errorf("upsert fact %s: %w", f.FactKey, err)
	}
	return nil
}

// Deactivate hides a fact from the agent without deleting it.
func (r *FactRepository) Deactivate(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE business_facts SET is_active = false, updated_at = now() WHERE fact_key = $1`, key)
	if err != nil {
		return fmt.Errorf("deactivate fact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deactivate fact: %w", sql.ErrNoRows)
	}
	return nil
}
