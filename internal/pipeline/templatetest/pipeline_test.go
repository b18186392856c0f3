package templatetest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/invoicevault/template-engine/constants"
	"github.com/invoicevault/template-engine/internal/common"
	"github.com/invoicevault/template-engine/internal/entity"
)

type fakeTemplateRepo struct {
	records []*entity.TemplateRecord
}

func (f *fakeTemplateRepo) ListActive(context.Context) ([]*entity.TemplateRecord, error) {
	var active []*entity.TemplateRecord
	for _, rec := range f.records {
		if rec.IsActive {
			active = append(active, rec)
		}
	}
	return active, nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.TemplateRecord, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, common.NewAppError("TEMPLATE_NOT_FOUND", "not found", common.ErrNotFound)
}

func (f *fakeTemplateRepo) Save(_ context.Context, rec *entity.TemplateRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeTemplateRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	for _, rec := range f.records {
		if rec.ID == id {
			rec.IsActive = active
			return nil
		}
	}
	return common.NewAppError("TEMPLATE_NOT_FOUND", "not found", common.ErrNotFound)
}

type fakeResultRepo struct {
	saved []*entity.TestResult
}

func (f *fakeResultRepo) SaveTestResult(_ context.Context, res *entity.TestResult) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	f.saved = append(f.saved, res)
	return nil
}

func (f *fakeResultRepo) ListByTemplate(_ context.Context, templateID uuid.UUID, _ int) ([]*entity.TestResult, error) {
	var out []*entity.TestResult
	for _, res := range f.saved {
		if res.TemplateID == templateID {
			out = append(out, res)
		}
	}
	return out, nil
}

func receiptTemplate(name, marker string) entity.Template {
	return entity.Template{
		Name: name,
		Identification: entity.Identification{
			Markers: []entity.Marker{{Text: marker}},
		},
		Fields: []entity.Field{
			{
				FieldName:  "order_number",
				DataType:   constants.TypeString,
				Extraction: entity.ExtractionConfig{Regex: `order\s*#\s*(\S+)`},
			},
			{
				FieldName:  "grand_total",
				DataType:   constants.TypeCurrency,
				Extraction: entity.ExtractionConfig{Regex: `total:\s*\$([\d.]+)`},
			},
		},
	}
}

const sampleText = "ACME STORE\nOrder # A-100\nTotal: $12.50\n"

func TestTestTemplate(t *testing.T) {
	rec := &entity.TemplateRecord{
		ID:         uuid.New(),
		Name:       "acme",
		IsActive:   true,
		Definition: receiptTemplate("acme", "acme store"),
	}
	templates := &fakeTemplateRepo{records: []*entity.TemplateRecord{rec}}
	results := &fakeResultRepo{}

	p := NewPipeline(nil, Config{}, templates, results)
	result, audit, err := p.TestTemplate(context.Background(), rec.ID, sampleText, "acme.txt")
	if err != nil {
		t.Fatalf("TestTemplate() error = %v", err)
	}

	if result.FieldsMatched != 2 || !result.Success {
		t.Errorf("result = %d matched, success=%v", result.FieldsMatched, result.Success)
	}
	if len(results.saved) != 1 {
		t.Fatalf("saved %d audit rows, want 1", len(results.saved))
	}
	if audit.TemplateID != rec.ID || audit.MatchScore != result.MatchScore {
		t.Errorf("audit = %+v", audit)
	}
	if len(audit.ExtractedJSON) == 0 {
		t.Error("audit row should carry the extracted data as JSON")
	}
}

func TestTestTemplateUnknownID(t *testing.T) {
	p := NewPipeline(nil, Config{}, &fakeTemplateRepo{}, &fakeResultRepo{})
	if _, _, err := p.TestTemplate(context.Background(), uuid.New(), sampleText, ""); err == nil {
		t.Fatal("expected error for unknown template id")
	}
}

func TestMatchDocument(t *testing.T) {
	good := &entity.TemplateRecord{
		ID: uuid.New(), Name: "acme", IsActive: true,
		Definition: receiptTemplate("acme", "acme store"),
	}
	bad := &entity.TemplateRecord{
		ID: uuid.New(), Name: "other", IsActive: true,
		Definition: entity.Template{
			Name: "other",
			Fields: []entity.Field{
				{FieldName: "nothing", DataType: constants.TypeString, Extraction: entity.ExtractionConfig{Regex: `zzzz-never`}},
			},
		},
	}
	inactive := &entity.TemplateRecord{
		ID: uuid.New(), Name: "retired", IsActive: false,
		Definition: receiptTemplate("retired", "acme store"),
	}
	templates := &fakeTemplateRepo{records: []*entity.TemplateRecord{bad, good, inactive}}

	p := NewPipeline(nil, Config{}, templates, &fakeResultRepo{})
	chosen, result, fields, err := p.MatchDocument(context.Background(), sampleText, "acme.txt")
	if err != nil {
		t.Fatalf("MatchDocument() error = %v", err)
	}
	if chosen == nil || chosen.ID != good.ID {
		t.Fatalf("chosen = %v, want the acme record", chosen)
	}
	if result.MatchScore != 1.0 {
		t.Errorf("MatchScore = %v", result.MatchScore)
	}
	if fields["order_number"] != "A-100" {
		t.Errorf("invoice fields = %v", fields)
	}
	if fields["grand_total"] != 12.5 {
		t.Errorf("grand_total = %v", fields["grand_total"])
	}
}

func TestMatchDocumentNoQualifier(t *testing.T) {
	weak := &entity.TemplateRecord{
		ID: uuid.New(), Name: "weak", IsActive: true,
		Definition: entity.Template{
			Name: "weak",
			Fields: []entity.Field{
				{FieldName: "a", DataType: constants.TypeString, Extraction: entity.ExtractionConfig{Regex: `zzzz-never`}},
			},
		},
	}
	p := NewPipeline(nil, Config{}, &fakeTemplateRepo{records: []*entity.TemplateRecord{weak}}, &fakeResultRepo{})

	chosen, result, fields, err := p.MatchDocument(context.Background(), "unrelated text", "")
	if err != nil {
		t.Fatalf("MatchDocument() error = %v", err)
	}
	if chosen != nil || result != nil || fields != nil {
		t.Errorf("got (%v, %v, %v), want all nil", chosen, result, fields)
	}
}
