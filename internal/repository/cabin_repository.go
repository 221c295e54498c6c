package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"zimmerbot/internal/models"
)

// ErrCabinNotFound is returned when no cabin matches an identifier.
var ErrCabinNotFound = errors.New("cabin not found")

// CabinRepository reads and writes the cabin catalog.
type CabinRepository struct {
	db *sqlx.DB
}

func NewCabinRepository(db *sqlx.DB) *CabinRepository {
	return &CabinRepository{db: db}
}

// List returns the whole catalog ordered by name.
func (r *CabinRepository) List(ctx context.Context) ([]models.Cabin, error) {
	var cabins []models.Cabin
	query := `SELECT ` + cabinColumns + ` FROM cabins ORDER BY name`
	if err := r.db.SelectContext(ctx, &cabins, query); err != nil {
		return nil, fmt.Errorf("list cabins: %w", err)
	}
	return cabins, nil
}

// GetByID fetches one cabin by its internal UUID.
func (r *CabinRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Cabin, error) {
	var c models.Cabin
	query := `SELECT ` + cabinColumns + ` FROM cabins WHERE id = $1`
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCabinNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cabin: %w", err)
	}
	return &c, nil
}

// Resolve maps any caller-supplied identifier to a cabin. Resolution
// order: short-code, UUID, exact name, then trailing match on the
// calendar reference. Callers should expose only the short-code back
// out.
func (r *CabinRepository) Resolve(ctx context.Context, identifier string) (*models.Cabin, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrCabinNotFound
	}

	var c models.Cabin
	query := `SELECT ` + cabinColumns + ` FROM cabins WHERE short_code = $1 LIMIT 1`
	err := r.db.GetContext(ctx, &c, query, identifier)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resolve cabin: %w", err)
	}

	if id, parseErr := uuid.Parse(identifier); parseErr == nil {
		cabin, getErr := r.GetByID(ctx, id)
		if getErr == nil {
			return cabin, nil
		}
		if !errors.Is(getErr, ErrCabinNotFound) {
			return nil, getErr
		}
	}

	query = `SELECT ` + cabinColumns + ` FROM cabins WHERE name = $1 LIMIT 1`
	err = r.db.GetContext(ctx, &c, query, identifier)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resolve cabin: %w", err)
	}

	// Calendar references look like "abc123@group.calendar.google.com";
	// callers sometimes have only a suffix of one.
	query = `SELECT ` + cabinColumns + ` FROM cabins WHERE calendar_id LIKE '%' || $1 LIMIT 1`
	err = r.db.GetContext(ctx, &c, query, identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCabinNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve cabin: %w", err)
	}
	return &c, nil
}

// Upsert inserts or refreshes a catalog row keyed on short_code, used
// by the spreadsheet importer.
func (r *CabinRepository) Upsert(ctx context.Context, c *models.Cabin) (uuid.UUID, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `
		INSERT INTO cabins (
			id, short_code, name, area, max_adults, max_kids, features,
			base_price_night, weekend_price, images_urls, calendar_id,
			street, city, postal_code
		) VALUES (
			:id, :short_code, :name, :area, :max_adults, :max_kids, :features,
			:base_price_night, :weekend_price, :images_urls, :calendar_id,
			:street, :city, :postal_code
		)
		ON CONFLICT (short_code) DO UPDATE SET
			name = EXCLUDED.name,
			area = EXCLUDED.area,
			max_adults = EXCLUDED.max_adults,
			max_kids = EXCLUDED.max_kids,
			features = EXCLUDED.features,
			base_price_night = EXCLUDED.base_price_night,
			weekend_price = EXCLUDED.weekend_price,
			images_urls = EXCLUDED.images_urls,
			calendar_id = EXCLUDED.calendar_id,
			street = EXCLUDED.street,
			city = EXCLUDED.city,
			postal_code = EXCLUDED.postal_code,
			updated_at = now()`

	rows, err := r.db.NamedQueryContext(ctx, query+` RETURNING id`, c)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert cabin %s: %w", c.ShortCode, err)
	}
	defer rows.Close()

	var id uuid.UUID
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return uuid.Nil, fmt.Errorf("upsert cabin %s: %w", c.ShortCode, err)
		}
	}
	return id, rows.Err()
}
