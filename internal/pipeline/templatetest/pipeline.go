// Package templatetest wires the matching engine to the template store for
// the two workflows the surrounding system exposes: testing one template
// against a document's text, and finding the best template for an upload.
package templatetest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/invoicevault/template-engine/internal/common"
	"github.com/invoicevault/template-engine/internal/entity"
	"github.com/invoicevault/template-engine/internal/invoice"
	"github.com/invoicevault/template-engine/internal/match"
	"github.com/invoicevault/template-engine/internal/repository"
)

// Config holds thresholds for the pipeline's evaluator.
type Config struct {
	SuccessThreshold float64 // default 0.30
	MinSelectScore   float64 // default 0.30
	DebugSampleLen   int     // default 500
}

type Pipeline struct {
	Logger    *slog.Logger
	Cfg       Config
	Templates repository.TemplateRepository
	Results   repository.TestResultRepository
	Evaluator *match.Evaluator
}

func NewPipeline(
	logger *slog.Logger,
	cfg Config,
	templates repository.TemplateRepository,
	results repository.TestResultRepository,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = common.DefaultSuccessThreshold
	}
	if cfg.MinSelectScore <= 0 {
		cfg.MinSelectScore = common.DefaultSuccessThreshold
	}
	return &Pipeline{
		Logger:    logger,
		Cfg:       cfg,
		Templates: templates,
		Results:   results,
		Evaluator: match.NewEvaluator(match.Config{
			SuccessThreshold: cfg.SuccessThreshold,
			DebugSampleLen:   cfg.DebugSampleLen,
		}, logger),
	}
}

// TestTemplate evaluates a stored template against text, persists an audit
// row, and returns both the evaluation and the stored record.
func (p *Pipeline) TestTemplate(ctx context.Context, templateID uuid.UUID, text, filename string) (*entity.MatchResult, *entity.TestResult, error) {
	rec, err := p.Templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, nil, fmt.Errorf("load template: %w", err)
	}

	p.Logger.Info("templatetest.start",
		"template_id", rec.ID, "template", rec.Name, "text_bytes", len(text))

	result := p.Evaluator.Evaluate(rec.Definition, text, match.Options{Filename: filename, Logger: p.Logger})

	extracted, err := json.Marshal(result.ExtractedData)
	if err != nil {
		// diagnostics only; the evaluation itself stands
		p.Logger.Warn("templatetest.encode_extracted", "error", err)
		extracted = nil
	}
	audit := &entity.TestResult{
		TemplateID:    rec.ID,
		Success:       result.Success,
		MatchScore:    result.MatchScore,
		FieldsMatched: result.FieldsMatched,
		FieldsTotal:   result.FieldsTotal,
		ExtractedJSON: extracted,
	}
	if err := p.Results.SaveTestResult(ctx, audit); err != nil {
		return nil, nil, fmt.Errorf("save test result: %w", err)
	}

	p.Logger.Info("templatetest.ok",
		"template_id", rec.ID, "result_id", audit.ID,
		"match_score", result.MatchScore,
		"fields_matched", result.FieldsMatched, "fields_total", result.FieldsTotal,
		"success", result.Success)
	return result, audit, nil
}

// MatchDocument evaluates every active template against text and returns the
// best-scoring one with its evaluation and the mapped invoice field set.
// A nil record with nil error means no template qualified, which callers
// treat as a normal outcome rather than a failure.
func (p *Pipeline) MatchDocument(ctx context.Context, text, filename string) (*entity.TemplateRecord, *entity.MatchResult, map[string]any, error) {
	records, err := p.Templates.ListActive(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list templates: %w", err)
	}

	templates := make([]entity.Template, len(records))
	for i, rec := range records {
		templates[i] = rec.Definition
	}

	opts := match.Options{Filename: filename, Logger: p.Logger}
	best, result := p.Evaluator.SelectBest(templates, text, p.Cfg.MinSelectScore, opts)
	if best == nil {
		p.Logger.Info("templatetest.no_match", "candidates", len(records))
		return nil, nil, nil, nil
	}

	var chosen *entity.TemplateRecord
	for i := range templates {
		if &templates[i] == best {
			chosen = records[i]
			break
		}
	}

	fields := invoice.ToInvoiceFields(result.ExtractedData)
	p.Logger.Info("templatetest.matched",
		"template_id", chosen.ID, "template", chosen.Name,
		"match_score", result.MatchScore, "invoice_fields", len(fields))
	return chosen, result, fields, nil
}
