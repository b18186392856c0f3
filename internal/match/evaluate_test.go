package match

import (
	"reflect"
	"testing"
	"unicode/utf8"

	"github.com/invoicevault/template-engine/constants"
	"github.com/invoicevault/template-engine/internal/entity"
)

func testTemplate() entity.Template {
	return entity.Template{
		Name:   "Test Receipt",
		Vendor: "Test",
		Identification: entity.Identification{
			Markers: []entity.Marker{{Text: "receipt"}},
		},
		Fields: []entity.Field{
			{
				FieldName:  "order_number",
				DataType:   constants.TypeString,
				Extraction: entity.ExtractionConfig{Regex: `order\s*#\s*(\S+)`},
				Validation: &entity.ValidationConfig{Required: true},
			},
			{
				FieldName:  "total_amount",
				DataType:   constants.TypeCurrency,
				Extraction: entity.ExtractionConfig{Regex: `total:\s*\$?([\d.]+)`},
			},
			{
				FieldName:  "purchase_date",
				DataType:   constants.TypeDate,
				Extraction: entity.ExtractionConfig{Regex: `date:\s*([^\n]+)`},
			},
			{
				FieldName:  "customer_note",
				DataType:   constants.TypeString,
				Extraction: entity.ExtractionConfig{Regex: `note:\s*([^\n]+)`},
			},
		},
	}
}

const testReceipt = "RECEIPT\nOrder # ABC-123\nDate: July 23, 2024\nTotal: $45.00\n"

func TestEvaluate(t *testing.T) {
	e := NewEvaluator(Config{}, nil)
	result := e.Evaluate(testTemplate(), testReceipt, Options{})

	if result.FieldsTotal != 4 {
		t.Fatalf("FieldsTotal = %d, want 4", result.FieldsTotal)
	}
	if result.FieldsMatched != 3 {
		t.Fatalf("FieldsMatched = %d, want 3 (customer_note absent)", result.FieldsMatched)
	}
	if result.MatchScore != 0.75 {
		t.Errorf("MatchScore = %v, want 0.75", result.MatchScore)
	}
	if !result.Success {
		t.Error("0.75 should clear the default threshold")
	}

	if got := result.ExtractedData["order_number"]; got != "ABC-123" {
		t.Errorf("order_number = %v", got)
	}
	if got := result.ExtractedData["total_amount"]; got != 45.0 {
		t.Errorf("total_amount = %v (%T), want 45.0", got, got)
	}
	if got := result.ExtractedData["purchase_date"]; got != "July 23, 2024" {
		t.Errorf("purchase_date = %v", got)
	}
	if _, present := result.ExtractedData["customer_note"]; present {
		t.Error("unmatched field must not appear in ExtractedData")
	}

	if result.DebugInfo.MarkerScore != 1 {
		t.Errorf("MarkerScore = %v, want 1", result.DebugInfo.MarkerScore)
	}
	if len(result.FieldResults) != 4 {
		t.Fatalf("got %d field results, want 4", len(result.FieldResults))
	}
	if !result.FieldResults[0].Required {
		t.Error("order_number should report required")
	}
	if result.FieldResults[3].Matched {
		t.Error("customer_note should report unmatched")
	}
}

func TestEvaluateEmptyText(t *testing.T) {
	e := NewEvaluator(Config{}, nil)
	result := e.Evaluate(testTemplate(), "", Options{})

	if result.Success {
		t.Error("empty text must not succeed")
	}
	if result.MatchScore != 0 {
		t.Errorf("MatchScore = %v, want 0", result.MatchScore)
	}
	if len(result.ExtractedData) != 0 {
		t.Errorf("ExtractedData = %v, want empty", result.ExtractedData)
	}
	// every field still gets a debug record
	if len(result.DebugInfo.Fields) != 4 {
		t.Errorf("got %d field debug records, want 4", len(result.DebugInfo.Fields))
	}
}

func TestEvaluateNoFields(t *testing.T) {
	tmpl := entity.Template{Name: "empty"}
	e := NewEvaluator(Config{}, nil)
	result := e.Evaluate(tmpl, "any text", Options{})

	if result.MatchScore != 0 || result.Success {
		t.Errorf("zero-field template: score=%v success=%v", result.MatchScore, result.Success)
	}
}

func TestEvaluateThresholdBoundary(t *testing.T) {
	tmpl := entity.Template{
		Name: "boundary",
		Fields: []entity.Field{
			{FieldName: "a", DataType: constants.TypeString, Extraction: entity.ExtractionConfig{Regex: `hit`}},
			{FieldName: "b", DataType: constants.TypeString, Extraction: entity.ExtractionConfig{Regex: `absent`}},
		},
	}
	// score is exactly 0.5; success requires strictly greater than the threshold
	e := NewEvaluator(Config{SuccessThreshold: 0.5}, nil)
	result := e.Evaluate(tmpl, "hit", Options{})
	if result.MatchScore != 0.5 {
		t.Fatalf("MatchScore = %v, want 0.5", result.MatchScore)
	}
	if result.Success {
		t.Error("score equal to threshold must not succeed")
	}

	lenient := NewEvaluator(Config{SuccessThreshold: 0.3}, nil)
	if !lenient.Evaluate(tmpl, "hit", Options{}).Success {
		t.Error("0.5 should succeed against the 0.3 threshold")
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	e := NewEvaluator(Config{}, nil)
	a := e.Evaluate(testTemplate(), testReceipt, Options{})
	b := e.Evaluate(testTemplate(), testReceipt, Options{})

	if !reflect.DeepEqual(a.ExtractedData, b.ExtractedData) {
		t.Error("repeat evaluation produced different data")
	}
	if a.MatchScore != b.MatchScore || a.Success != b.Success {
		t.Error("repeat evaluation produced different verdict")
	}
}

func TestEvaluateGenericItemsScan(t *testing.T) {
	tmpl := entity.Template{
		Name: "no-items-template",
		Fields: []entity.Field{
			{FieldName: "total_amount", DataType: constants.TypeCurrency, Extraction: entity.ExtractionConfig{Regex: `total:\s*\$([\d.]+)`}},
		},
	}
	text := "2 x Widget $10.00\n1 x Gadget $5.00\nTotal: $25.00\n"

	e := NewEvaluator(Config{}, nil)
	result := e.Evaluate(tmpl, text, Options{})

	items, ok := result.ExtractedData["items"].([]any)
	if !ok {
		t.Fatalf("items = %v (%T), want []any from generic scan", result.ExtractedData["items"], result.ExtractedData["items"])
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	first := items[0].(map[string]any)
	if first["quantity"] != "2" || first["name"] != "Widget" || first["unit_price"] != "10.00" {
		t.Errorf("unexpected first item: %v", first)
	}
	// the backfilled items do not change the score
	if result.FieldsMatched != 1 || result.FieldsTotal != 1 {
		t.Errorf("score fields = %d/%d, want 1/1", result.FieldsMatched, result.FieldsTotal)
	}
}

func TestEvaluateGenericScanSkippedWhenItemsExtracted(t *testing.T) {
	tmpl := entity.Template{
		Name: "with-items",
		Fields: []entity.Field{
			{
				FieldName:  "items",
				DataType:   constants.TypeArray,
				Extraction: entity.ExtractionConfig{Regex: `line:\s*(\w+)`},
			},
		},
	}
	text := "line: widget\n3 x Decoy $9.99\n"

	e := NewEvaluator(Config{}, nil)
	result := e.Evaluate(tmpl, text, Options{})

	items := result.ExtractedData["items"].([]any)
	if len(items) != 1 || items[0] != "widget" {
		t.Errorf("template-extracted items must not be overwritten: %v", items)
	}
}

func TestEvaluateBrandSecondaryExtraction(t *testing.T) {
	tmpl := entity.Template{
		Name: "amazon",
		Fields: []entity.Field{
			{FieldName: "merchant_name", DataType: constants.TypeString, Extraction: entity.ExtractionConfig{Regex: `(amazon)`}},
			{FieldName: "estimated_tax", DataType: constants.TypeCurrency, Extraction: entity.ExtractionConfig{Regex: `will_not_match_xyz`}},
		},
	}
	// no currency symbol or total label anywhere, so the generic currency
	// heuristic has nothing to find; only the brand vocabulary can extract
	text := "Amazon.com order\nEstimated tax to be collected: 3.21\n"

	e := NewEvaluator(Config{}, nil)
	result := e.Evaluate(tmpl, text, Options{})

	if got := result.ExtractedData["merchant_name"]; got != "Amazon" {
		t.Fatalf("merchant_name = %v, want Amazon", got)
	}
	if got := result.ExtractedData["estimated_tax"]; got != 3.21 {
		t.Errorf("estimated_tax = %v (%T), want 3.21 via brand vocabulary", got, got)
	}
}

func TestEvaluateBrandSecondaryDoesNotOverwrite(t *testing.T) {
	tmpl := entity.Template{
		Name: "amazon",
		Fields: []entity.Field{
			{FieldName: "merchant_name", DataType: constants.TypeString, Extraction: entity.ExtractionConfig{Regex: `(amazon)`}},
			{FieldName: "estimated_tax", DataType: constants.TypeCurrency, Extraction: entity.ExtractionConfig{Regex: `tax paid:\s*\$([\d.]+)`}},
		},
	}
	text := "Amazon\nTax paid: $9.99\nEstimated tax to be collected: $3.21\n"

	e := NewEvaluator(Config{}, nil)
	result := e.Evaluate(tmpl, text, Options{})

	if got := result.ExtractedData["estimated_tax"]; got != 9.99 {
		t.Errorf("estimated_tax = %v, template extraction must win over brand vocabulary", got)
	}
}

func TestEvaluateTextSample(t *testing.T) {
	e := NewEvaluator(Config{DebugSampleLen: 10}, nil)
	result := e.Evaluate(entity.Template{Name: "s"}, "0123456789abcdef", Options{})
	if result.DebugInfo.TextSample != "0123456789..." {
		t.Errorf("TextSample = %q", result.DebugInfo.TextSample)
	}
}

// A cut that would land inside a multi-byte rune backs up to the boundary.
func TestEvaluateTextSampleRuneBoundary(t *testing.T) {
	e := NewEvaluator(Config{DebugSampleLen: 10}, nil)
	result := e.Evaluate(entity.Template{Name: "s"}, "€€€€", Options{}) // 12 bytes, byte 10 is mid-rune

	if got := result.DebugInfo.TextSample; got != "€€€..." {
		t.Errorf("TextSample = %q, want %q", got, "€€€...")
	}
	if !utf8.ValidString(result.DebugInfo.TextSample) {
		t.Error("TextSample is not valid UTF-8")
	}
}
