// Package repository is the data access layer over PostgreSQL.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"zimmerbot/internal/config"
)

// Connect opens the database pool and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Store bundles every repository over one pool.
type Store struct {
	DB            *sqlx.DB
	Cabins        *CabinRepository
	Customers     *CustomerRepository
	Bookings      *BookingRepository
	Transactions  *TransactionRepository
	Quotes        *QuoteRepository
	Conversations *ConversationRepository
	FAQs          *FAQRepository
	Facts         *FactRepository
	Audit         *AuditRepository
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		DB:            db,
		Cabins:        NewCabinRepository(db),
		Customers:     NewCustomerRepository(db),
		Bookings:      NewBookingRepository(db),
		Transactions:  NewTransactionRepository(db),
		Quotes:        NewQuoteRepository(db),
		Conversations: NewConversationRepository(db),
		FAQs:          NewFAQRepository(db),
		Facts:         NewFactRepository(db),
		Audit:         NewAuditRepository(db),
	}
}
