package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions.
const (
	AuditActionInsert = "INSERT"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// AuditEntry is append-only. The table exists in two historical column
// layouts; the repository converts the old (entity_type, entity_id,
// payload) layout into this shape on read.
type AuditEntry struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	TableName string     `db:"table_name" json:"tableName"`
	RecordID  uuid.UUID  `db:"record_id" json:"recordId"`
	Action    string     `db:"action" json:"action"`
	OldValues JSONMap    `db:"old_values" json:"oldValues,omitempty"`
	NewValues JSONMap    `db:"new_values" json:"newValues,omitempty"`
	UserID    *uuid.UUID `db:"user_id" json:"userId,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}
