package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/invoicevault/template-engine/internal/entity"
)

// TemplateRepository is the template store the matching workflows read from.
// Templates are pure input data to the engine; nothing here mutates a
// definition during an evaluation pass.
type TemplateRepository interface {
	ListActive(ctx context.Context) ([]*entity.TemplateRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.TemplateRecord, error)
	Save(ctx context.Context, rec *entity.TemplateRecord) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// TestResultRepository persists template test audit rows.
type TestResultRepository interface {
	SaveTestResult(ctx context.Context, res *entity.TestResult) error
	ListByTemplate(ctx context.Context, templateID uuid.UUID, limit int) ([]*entity.TestResult, error)
}
