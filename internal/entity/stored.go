package entity

import (
	"time"

	"github.com/google/uuid"
)

// TemplateRecord is a stored template for data transfer between layers.
type TemplateRecord struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Vendor     string    `json:"vendor"`
	Version    string    `json:"version"`
	IsActive   bool      `json:"is_active"`
	Definition Template  `json:"definition"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TestResult is a persisted audit row for one template test run.
type TestResult struct {
	ID            uuid.UUID `json:"id"`
	TemplateID    uuid.UUID `json:"template_id"`
	Success       bool      `json:"success"`
	MatchScore    float64   `json:"match_score"`
	FieldsMatched int       `json:"fields_matched"`
	FieldsTotal   int       `json:"fields_total"`
	Notes         *string   `json:"notes,omitempty"`
	ExtractedJSON []byte    `json:"extracted_json,omitempty"`
	TestedAt      time.Time `json:"tested_at"`
}
