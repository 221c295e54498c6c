package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"zimmerbot/internal/models"
)

// Audit schema generations. Deployed databases carry one of two
// layouts for audit_log: the current (table_name, record_id,
// old_values, new_values) one and a legacy (entity_type, entity_id,
// payload) one.
const (
	auditSchemaUnknown = iota
	auditSchemaCurrent
	auditSchemaLegacy
)

// AuditRepository appends and reads the audit trail, adapting to
// whichever audit_log layout the database carries.
type AuditRepository struct {
	db *sqlx.DB

	once   sync.Once
	schema int
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) detectSchema(ctx context.Context) int {
	r.once.Do(func() {
		var columns []string
		err := r.db.SelectContext(ctx, &columns, `
			SELECT column_name
			FROM information_schema.columns
			WHERE table_name = 'audit_log'
			  AND column_name IN ('table_name', 'entity_type')`)
		if err != nil {
			return
		}
		for _, c := range columns {
			switch c {
			case "table_name":
				r.schema = auditSchemaCurrent
				return
			case "entity_type":
				r.schema = auditSchemaLegacy
			}
		}
	})
	return r.schema
}

// Append writes one audit entry. RecordID values that are not UUIDs
// get a generated id, with the original stashed in new_values.
func (r *AuditRepository) Append(ctx context.Context, tx *sqlx.Tx, tableName, recordID, action string, oldValues, newValues models.JSONMap, userID *uuid.UUID) error {
	switch r.detectSchema(ctx) {
	case auditSchemaCurrent:
		return r.appendCurrent(ctx, tx, tableName, recordID, action, oldValues, newValues, userID)
	case auditSchemaLegacy:
		return r.appendLegacy(ctx, tx, tableName, recordID, action, oldValues, newValues, userID)
	default:
		return fmt.Errorf("append audit: unknown audit_log schema")
	}
}

func (r *AuditRepository) appendCurrent(ctx context.Context, tx *sqlx.Tx, tableName, recordID, action string, oldValues, newValues models.JSONMap, userID *uuid.UUID) error {
	recordUUID, err := uuid.Parse(recordID)
	if err != nil {
		recordUUID = uuid.New()
		if newValues == nil {
			newValues = models.JSONMap{}
		}
		newValues["original_record_id"] = recordID
	}

	query := `
		INSERT INTO audit_log (id, table_name, record_id, action, old_values, new_values, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	args := []any{uuid.New(), tableName, recordUUID, action, nilIfEmpty(oldValues), nilIfEmpty(newValues), userID}
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

func (r *AuditRepository) appendLegacy(ctx context.Context, tx *sqlx.Tx, tableName, recordID, action string, oldValues, newValues models.JSONMap, userID *uuid.UUID) error {
	payload := models.JSONMap{}
	if len(oldValues) > 0 {
		payload["old_values"] = map[string]any(oldValues)
	}
	if len(newValues) > 0 {
		payload["new_values"] = map[string]any(newValues)
	}
	if userID != nil {
		payload["user_id"] = userID.String()
	}

	query := `
		INSERT INTO audit_log (entity_type, entity_id, action, payload)
		VALUES ($1, $2, $3, $4)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, tableName, recordID, action, nilIfEmpty(payload))
	} else {
		_, err = r.db.ExecContext(ctx, query, tableName, recordID, action, nilIfEmpty(payload))
	}
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

func nilIfEmpty(m models.JSONMap) any {
	if len(m) == 0 {
		return nil
	}
	return m
}

// ListRecent reads the newest entries across all records, optionally
// filtered to one table, in the current entry shape.
func (r *AuditRepository) ListRecent(ctx context.Context, tableName string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	switch r.detectSchema(ctx) {
	case auditSchemaCurrent:
		var entries []models.AuditEntry
		query := `
			SELECT id, table_name, record_id, action, old_values, new_values, user_id, created_at
			FROM audit_log
			WHERE ($1 = '' OR table_name = $1)
			ORDER BY created_at DESC LIMIT $2`
		if err := r.db.SelectContext(ctx, &entries, query, tableName, limit); err != nil {
			return nil, fmt.Errorf("list audit: %w", err)
		}
		return entries, nil

	case auditSchemaLegacy:
		rows, err := r.db.QueryxContext(ctx, `
			SELECT id, entity_type, entity_id, action, payload, created_at
			FROM audit_log
			WHERE ($1 = '' OR entity_type = $1)
			ORDER BY created_at DESC LIMIT $2`, tableName, limit)
		if err != nil {
			return nil, fmt.Errorf("list audit: %w", err)
		}
		defer rows.Close()
		return scanLegacyAudit(rows)

	default:
		return nil, fmt.Errorf("list audit: unknown audit_log schema")
	}
}

func scanLegacyAudit(rows *sqlx.Rows) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var entityID string
		var payload models.JSONMap
		if err := rows.Scan(&e.ID, &e.TableName, &entityID, &e.Action, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("list audit: %w", err)
		}
		if id, perr := uuid.Parse(entityID); perr == nil {
			e.RecordID = id
		}
		if old, ok := payload["old_values"].(map[string]any); ok {
			e.OldValues = models.JSONMap(old)
		}
		if nw, ok := payload["new_values"].(map[string]any); ok {
			e.NewValues = models.JSONMap(nw)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListForRecord reads the trail for one record, newest first, in the
// current entry shape regardless of the stored layout.
func (r *AuditRepository) ListForRecord(ctx context.Context, tableName, recordID string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	switch r.detectSchema(ctx) {
	case auditSchemaCurrent:
		recordUUID, err := uuid.Parse(recordID)
		if err != nil {
			return nil, nil
		}
		var entries []models.AuditEntry
		query := `
			SELECT id, table_name, record_id, action, old_values, new_values, user_id, created_at
			FROM audit_log
			WHERE table_name = $1 AND record_id = $2
			ORDER BY created_at DESC LIMIT $3`
		if err := r.db.SelectContext(ctx, &entries, query, tableName, recordUUID, limit); err != nil {
			return nil, fmt.Errorf("list audit: %w", err)
		}
		return entries, nil

	case auditSchemaLegacy:
		rows, err := r.db.QueryxContext(ctx, `
			SELECT id, entity_type, entity_id, action, payload, created_at
			FROM audit_log
			WHERE entity_type = $1 AND entity_id = $2
			ORDER BY created_at DESC LIMIT $3`, tableName, recordID, limit)
		if err != nil {
			return nil, fmt.Errorf("list audit: %w", err)
		}
		defer rows.Close()
		return scanLegacyAudit(rows)

	default:
		return nil, fmt.Errorf("list audit: unknown audit_log schema")
	}
}
