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

// ConversationRepository stores dialog threads and their append-only
// message logs.
type ConversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create opens a new conversation on the given channel.
func (r *ConversationRepository) Create(ctx context.Context, channel string, customerID *uuid.UUID) (*models.Conversation, error) {
	c := &models.Conversation{
		ID:         uuid.New(),
		CustomerID: customerID,
		Channel:    channel,
		Status:     models.ConversationStatusActive,
	}
	query := `
		INSERT INTO conversations (id, customer_id, channel, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query, c.ID, c.CustomerID, c.Channel, c.Status).
		Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

// Get fetches one conversation.
func (r *ConversationRepository) Get(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var c models.Conversation
	query := `SELECT id, customer_id, channel, status, created_at, updated_at
		FROM conversations WHERE id = $1`
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

// AppendMessage adds one message and bumps the conversation timestamp.
// Messages are never updated or deleted.
func (r *ConversationRepository) AppendMessage(ctx context.Context, m *models.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	query := `
		INSERT INTO messages (id, conversation_id, role, content, metadata)
		VALUES (:id, :conversation_id, :role, :content, :metadata)`
	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = now() WHERE id = $1`, m.ConversationID)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

// Messages returns the conversation's log in insert order.
func (r *ConversationRepository) Messages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	query := `SELECT id, conversation_id, role, content, metadata, created_at
		FROM messages WHERE conversation_id = $1 ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &msgs, query, conversationID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// LastAssistantMessage returns the newest assistant turn, which
// carries the context carry-over metadata.
func (r *ConversationRepository) LastAssistantMessage(ctx context.Context, conversationID uuid.UUID) (*models.Message, error) {
	var m models.Message
	query := `SELECT id, conversation_id, role, content, metadata, created_at
		FROM messages
		WHERE conversation_id = $1 AND role = $2
		ORDER BY created_at DESC, id DESC LIMIT 1`
	err := r.db.GetContext(ctx, &m, query, conversationID, models.RoleAssistant)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last assistant message: %w", err)
	}
	return &m, nil
}

// UpdateStatus moves a conversation to closed or escalated.
func (r *ConversationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update conversation status: %w", err)
	}
	return nil
}
