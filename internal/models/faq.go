package models

import (
	"time"

	"github.com/google/uuid"
)

// FAQ is a question/answer pair. Only approved entries are served to
// guests; unapproved rows are suggestions awaiting host review.
type FAQ struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Question        string     `db:"question" json:"question"`
	Answer          string     `db:"answer" json:"answer"`
	Approved        bool       `db:"approved" json:"approved"`
	SuggestedAnswer *string    `db:"suggested_answer" json:"suggestedAnswer,omitempty"`
	SuggestedBy     *uuid.UUID `db:"suggested_by" json:"suggestedBy,omitempty"`
	ApprovedBy      *string    `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `db:"approved_at" json:"approvedAt,omitempty"`
	UsageCount      int        `db:"usage_count" json:"usageCount"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// BusinessFact is a host-curated key/value answer to a common guest
// question (check-in time, pet policy, ...).
type BusinessFact struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FactKey     string    `db:"fact_key" json:"factKey"`
	FactValue   string    `db:"fact_value" json:"factValue"`
	Category    string    `db:"category" json:"category"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
