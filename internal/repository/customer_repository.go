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

// CustomerRepository deduplicates and stores guests.
type CustomerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Upsert returns the existing customer matched on email first, then
// phone, inserting a new row when neither matches.
func (r *CustomerRepository) Upsert(ctx context.Context, name, email, phone *string) (*models.Customer, error) {
	probe := &models.Customer{Name: name, Email: email, Phone: phone}
	if !probe.HasIdentity() {
		return nil, fmt.Errorf("upsert customer: no identifying field")
	}

	if c, err := r.findBy(ctx, "email", email); err != nil {
		return nil, err
	} else if c != nil {
		return c, nil
	}
	if c, err := r.findBy(ctx, "phone", phone); err != nil {
		return nil, err
	} else if c != nil {
		return c, nil
	}

	query := `
		INSERT INTO customers (id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + customerColumns
	var c models.Customer
	if err := r.db.GetContext(ctx, &c, query, uuid.New(), name, email, phone); err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepository) findBy(ctx context.Context, column string, value *string) (*models.Customer, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	var c models.Customer
	query := `SELECT ` + customerColumns + ` FROM customers WHERE ` + column + ` = $1 LIMIT 1`
	err := r.db.GetContext(ctx, &c, query, *value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find customer by %s: %w", column, err)
	}
	return &c, nil
}

// GetByID fetches one customer.
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}
