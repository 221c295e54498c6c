package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation channels and statuses.
const (
	ChannelWeb      = "web"
	ChannelWhatsApp = "whatsapp"
	ChannelVoice    = "voice"
	ChannelSMS      = "sms"

	ConversationStatusActive    = "active"
	ConversationStatusClosed    = "closed"
	ConversationStatusEscalated = "escalated"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation groups an append-only ordered message log for one guest
// dialog. All agent state between turns lives in message metadata.
type Conversation struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	CustomerID *uuid.UUID `db:"customer_id" json:"customerId,omitempty"`
	Channel    string     `db:"channel" json:"channel"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

// Message is never mutated after insert. Metadata carries the intent
// label, confidence, tool results, and the context carry-over map.
type Message struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ConversationID uuid.UUID `db:"conversation_id" json:"conversationId"`
	Role           string    `db:"role" json:"role"`
	Content        string    `db:"content" json:"content"`
	Metadata       JSONMap   `db:"metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
