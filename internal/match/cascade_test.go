package match

import (
	"strings"
	"testing"

	"github.com/invoicevault/template-engine/constants"
	"github.com/invoicevault/template-engine/internal/entity"
)

func TestConfiguredPatternsOrder(t *testing.T) {
	cfg := entity.ExtractionConfig{
		Regex:              "a",
		AlternativeRegex:   "b",
		AdditionalPatterns: []string{"c", "", "d"},
	}
	got := configuredPatterns(cfg)

	wantLabels := []string{"primary_regex", "alternative_regex", "additional_regex_1", "additional_regex_3"}
	if len(got) != len(wantLabels) {
		t.Fatalf("got %d patterns, want %d", len(got), len(wantLabels))
	}
	for i, lp := range got {
		if lp.label != wantLabels[i] {
			t.Errorf("pattern %d label = %q, want %q", i, lp.label, wantLabels[i])
		}
	}
}

func TestExtractFieldPrimaryWins(t *testing.T) {
	field := entity.Field{
		FieldName: "notes",
		DataType:  constants.TypeString,
		Extraction: entity.ExtractionConfig{
			Regex:            `note:\s*(\w+)`,
			AlternativeRegex: `memo:\s*(\w+)`,
		},
	}
	text := "memo: second\nnote: first"

	value, method, debug := ExtractField(field, text, Options{})
	if value != "first" {
		t.Errorf("value = %v, want first", value)
	}
	if method != "primary_regex" {
		t.Errorf("method = %q, want primary_regex", method)
	}
	// short-circuit: alternative must not have been attempted
	for _, att := range debug.PatternsTried {
		if att.Name == "alternative_regex" {
			t.Error("alternative_regex attempted after primary matched")
		}
	}
	if len(debug.MatchesFound) != 1 {
		t.Errorf("got %d matches in debug, want 1", len(debug.MatchesFound))
	}
}

func TestExtractFieldFallsThroughToAlternative(t *testing.T) {
	field := entity.Field{
		FieldName: "notes",
		DataType:  constants.TypeString,
		Extraction: entity.ExtractionConfig{
			Regex:            `nowhere:\s*(\w+)`,
			AlternativeRegex: `memo:\s*(\w+)`,
		},
	}
	value, method, _ := ExtractField(field, "memo: fallback", Options{})
	if value != "fallback" || method != "alternative_regex" {
		t.Errorf("got (%v, %q), want (fallback, alternative_regex)", value, method)
	}
}

func TestExtractFieldInvalidPatternSkipped(t *testing.T) {
	field := entity.Field{
		FieldName: "notes",
		DataType:  constants.TypeString,
		Extraction: entity.ExtractionConfig{
			Regex:            `([unclosed`,
			AlternativeRegex: `memo:\s*(\w+)`,
		},
	}
	value, method, debug := ExtractField(field, "memo: ok", Options{})
	if value != "ok" || method != "alternative_regex" {
		t.Errorf("got (%v, %q), want (ok, alternative_regex)", value, method)
	}
	if len(debug.PatternsTried) == 0 || debug.PatternsTried[0].Error == "" {
		t.Error("compile failure should be recorded in the trace")
	}
}

func TestExtractFieldOversizedPatternRejected(t *testing.T) {
	field := entity.Field{
		FieldName: "notes",
		DataType:  constants.TypeString,
		Extraction: entity.ExtractionConfig{
			Regex: strings.Repeat("a", maxPatternLength+1),
		},
	}
	value, _, debug := ExtractField(field, "aaaa", Options{})
	if value != nil {
		t.Errorf("value = %v, want nil", value)
	}
	if len(debug.PatternsTried) != 1 || debug.PatternsTried[0].Error == "" {
		t.Error("oversized pattern should be recorded as a failed attempt")
	}
}

func TestExtractFieldNoMatchReturnsNil(t *testing.T) {
	field := entity.Field{
		FieldName: "notes",
		DataType:  constants.TypeString,
		Extraction: entity.ExtractionConfig{
			Regex: `absent:\s*(\w+)`,
		},
	}
	value, method, _ := ExtractField(field, "nothing relevant", Options{})
	if value != nil || method != "" {
		t.Errorf("got (%v, %q), want (nil, empty)", value, method)
	}
}

func TestExtractFieldCaseInsensitive(t *testing.T) {
	field := entity.Field{
		FieldName: "notes",
		DataType:  constants.TypeString,
		Extraction: entity.ExtractionConfig{
			Regex: `order total:\s*(\S+)`,
		},
	}
	value, _, _ := ExtractField(field, "ORDER TOTAL: $5.00", Options{})
	if value != "$5.00" {
		t.Errorf("value = %v, want $5.00", value)
	}
}

func TestExtractFieldWholeMatchWithoutGroups(t *testing.T) {
	field := entity.Field{
		FieldName: "notes",
		DataType:  constants.TypeString,
		Extraction: entity.ExtractionConfig{
			Regex: `gift wrap`,
		},
	}
	value, _, _ := ExtractField(field, "includes Gift Wrap service", Options{})
	if value != "Gift Wrap" {
		t.Errorf("value = %v, want whole match", value)
	}
}

func TestWindowOf(t *testing.T) {
	text := "abcdefgh"
	if got := windowOf(text, 1, 2); got != "abcd" {
		t.Errorf("windowOf 1/2 = %q", got)
	}
	if got := windowOf(text, 1, 4); got != "ab" {
		t.Errorf("windowOf 1/4 = %q", got)
	}
	if got := tailOf(text, 1, 4); got != "gh" {
		t.Errorf("tailOf 1/4 = %q", got)
	}
	if got := windowOf(text, 1, 0); got != text {
		t.Errorf("zero denominator should return full text")
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"receipt.pdf", "receipt"},
		{"/tmp/orders/Amazon-123.pdf", "Amazon-123"},
		{`C:\docs\Walmart_456.txt`, "Walmart_456"},
		{"no-extension", "no-extension"},
	}
	for _, tt := range tests {
		if got := baseName(tt.in); got != tt.want {
			t.Errorf("baseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
