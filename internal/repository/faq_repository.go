package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"zimmerbot/internal/models"
)

// FAQRepository stores question/answer pairs and host-review
// suggestions.
type FAQRepository struct {
	db *sqlx.DB
}

func NewFAQRepository(db *sqlx.DB) *FAQRepository {
	return &FAQRepository{db: db}
}

// ListApproved returns the FAQ entries the agent is allowed to serve.
func (r *FAQRepository) ListApproved(ctx context.Context) ([]models.FAQ, error) {
	var faqs []models.FAQ
	query := `SELECT ` + faqColumns + ` FROM faqs WHERE approved ORDER BY usage_count DESC, question`
	if err := r.db.SelectContext(ctx, &faqs, query); err != nil {
		return nil, fmt.Errorf("list approved faqs: %w", err)
	}
	return faqs, nil
}

// ListPending returns unapproved suggestions for the host review
// surface.
func (r *FAQRepository) ListPending(ctx context.Context) ([]models.FAQ, error) {
	var faqs []models.FAQ
	query := `SELECT ` + faqColumns + ` FROM faqs WHERE NOT approved ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &faqs, query); err != nil {
		return nil, fmt.Errorf("list pending faqs: %w", err)
	}
	return faqs, nil
}

// IncrementUsage bumps the serve counter on an answered entry.
func (r *FAQRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE faqs SET usage_count = usage_count + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment faq usage: %w", err)
	}
	return nil
}

// Suggest records an unanswered guest question as an unapproved entry
// awaiting host review.
func (r *FAQRepository) Suggest(ctx context.Context, question string, suggestedAnswer *string, suggestedBy *uuid.UUID) (*models.FAQ, error) {
	f := &models.FAQ{
		ID:              uuid.New(),
		Question:        question,
		SuggestedAnswer: suggestedAnswer,
		SuggestedBy:     suggestedBy,
	}
	query := `
		INSERT INTO faqs (id, question, answer, approved, suggested_answer, suggested_by)
		VALUES ($1, $2, '', false, $3, $4)
		RETURNING created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query, f.ID, f.Question, f.SuggestedAnswer, f.SuggestedBy).
		Scan(&f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, fmt.Errorf("suggest faq: %w", err)
	}
	return f, nil
}

// Approve publishes an entry with its final answer.
func (r *FAQRepository) Approve(ctx context.Context, id uuid.UUID, answer, approvedBy string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE faqs
		SET answer = $2, approved = true, approved_by = $3, approved_at = now(), updated_at = now()
		WHERE id = $1`, id, answer, approvedBy)
	if err != nil {
		return fmt.Errorf("approve faq: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("approve faq: %w", sql.ErrNoRows)
	}
	return nil
}

// Update edits an entry's question and answer in place.
func (r *FAQRepository) Update(ctx context.Context, id uuid.UUID, question, answer string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE faqs SET question = $2, answer = $3, updated_at = now()
		WHERE id = $1`, id, question, answer)
	if err != nil {
		return fmt.Errorf("update faq: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update faq: %w", sql.ErrNoRows)
	}
	return nil
}

// Delete removes an entry.
func (r *FAQRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM faqs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete faq: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete faq: %w", sql.ErrNoRows)
	}
	return nil
}
