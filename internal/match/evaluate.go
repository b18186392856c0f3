package match

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/invoicevault/template-engine/constants"
	"github.com/invoicevault/template-engine/internal/common"
	"github.com/invoicevault/template-engine/internal/entity"
)

// Config holds evaluator thresholds.
type Config struct {
	SuccessThreshold float64 // default 0.30; 0.50 is the legacy operating point
	DebugSampleLen   int     // default 500
}

// Evaluator runs a template's marker scoring and field cascade over one text.
// It is stateless: concurrent Evaluate calls on a shared instance are safe.
type Evaluator struct {
	cfg    Config
	logger *slog.Logger
}

func NewEvaluator(cfg Config, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = common.DefaultSuccessThreshold
	}
	if cfg.DebugSampleLen <= 0 {
		cfg.DebugSampleLen = 500
	}
	return &Evaluator{cfg: cfg, logger: logger}
}

// reGenericItems matches "<qty> x <name> $<price>" receipt lines.
var reGenericItems = regexp.MustCompile(`(?i)(\d+)\s*x\s+([^$\n]+?)\s*\$(\d+(?:\.\d{1,2})?)`)

// brandFieldPatterns holds per-brand label vocabulary used by the secondary
// extraction pass for fields the template's own patterns left unpopulated.
var brandFieldPatterns = map[constants.Brand]map[string]string{
	constants.Amazon: {
		"shipping_handling": `shipping\s*&?\s*handling\s*:?\s*\$?([\d,]+\.\d{2})`,
		"estimated_tax":     `estimated\s+tax(?:\s+to\s+be\s+collected)?\s*:?\s*\$?([\d,]+\.\d{2})`,
		"total_before_tax":  `total\s+before\s+tax\s*:?\s*\$?([\d,]+\.\d{2})`,
	},
	constants.Walmart: {
		"estimated_tax":     `\btax\s*(?:\d+)?\s*\$?([\d,]+\.\d{2})`,
		"shipping_handling": `shipping\s*:?\s*\$?([\d,]+\.\d{2})`,
	},
}

// Evaluate scores template markers (informational only; field extraction is
// never gated on them) and runs the full field cascade in declaration order.
func (e *Evaluator) Evaluate(tmpl entity.Template, text string, opts Options) *entity.MatchResult {
	if opts.Logger == nil {
		opts.Logger = e.logger
	}

	markerScore, markerResults := EvaluateMarkers(tmpl.Identification.Markers, text)

	result := &entity.MatchResult{
		FieldsTotal:   len(tmpl.Fields),
		ExtractedData: make(map[string]any),
		FieldResults:  make([]entity.FieldResult, 0, len(tmpl.Fields)),
		DebugInfo: entity.DebugInfo{
			TextSample:    sample(text, e.cfg.DebugSampleLen),
			MarkerScore:   markerScore,
			MarkerResults: markerResults,
			Fields:        make(map[string]entity.FieldDebug, len(tmpl.Fields)),
		},
	}

	for _, field := range tmpl.Fields {
		if field.FieldName == "" {
			continue
		}
		raw, method, debug := ExtractField(field, text, opts)
		result.DebugInfo.Fields[field.FieldName] = debug

		fieldResult := entity.FieldResult{
			FieldName:   field.FieldName,
			DisplayName: displayName(field),
			Required:    field.Required(),
		}

		if raw != nil {
			result.FieldsMatched++
			fieldResult.Matched = true
			fieldResult.MatchMethod = method

			value := NormalizeValue(field, raw)
			result.ExtractedData[field.FieldName] = value
			fieldResult.Value = stringForm(value)
		}
		result.FieldResults = append(result.FieldResults, fieldResult)
	}

	if result.FieldsTotal > 0 {
		result.MatchScore = float64(result.FieldsMatched) / float64(result.FieldsTotal)
	}
	result.Success = result.MatchScore > e.cfg.SuccessThreshold

	e.specialFieldPass(result, text)

	return result
}

// specialFieldPass backfills values the declared fields missed: a generic
// line-item scan when no items array was extracted, and brand-vocabulary
// extraction once a known brand has been identified as the merchant.
func (e *Evaluator) specialFieldPass(result *entity.MatchResult, text string) {
	_, hasItems := result.ExtractedData["items"]
	_, hasDetails := result.ExtractedData["item_details"]
	if !hasItems && !hasDetails {
		if items := scanGenericItems(text); len(items) > 0 {
			result.ExtractedData["items"] = items
		}
	}

	merchant, _ := result.ExtractedData["merchant_name"].(string)
	brand, known := constants.CanonicalizeBrand(merchant)
	if !known {
		return
	}
	for fieldName, pattern := range brandFieldPatterns[brand] {
		if _, populated := result.ExtractedData[fieldName]; populated {
			continue
		}
		re, err := compileInsensitive(pattern)
		if err != nil {
			e.logger.Error("brand pattern compile failed", "brand", brand, "field", fieldName, "error", err)
			continue
		}
		if m := re.FindStringSubmatch(text); m != nil {
			result.ExtractedData[fieldName] = NormalizeCurrency(firstGroup(m))
		}
	}
}

// scanGenericItems extracts "<qty> x <name> $<price>" lines as structured
// item entries.
func scanGenericItems(text string) []any {
	matches := reGenericItems.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	items := make([]any, 0, len(matches))
	for _, m := range matches {
		items = append(items, map[string]any{
			"quantity":   m[1],
			"name":       reSpaces.ReplaceAllString(strings.TrimSpace(m[2]), " "),
			"unit_price": m[3],
		})
	}
	return items
}

func displayName(field entity.Field) string {
	if field.DisplayName != "" {
		return field.DisplayName
	}
	return field.FieldName
}

// sample cuts on a rune boundary so the debug text stays valid UTF-8.
func sample(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n] + "..."
}

// stringForm renders the extracted value for FieldResult reporting. Arrays
// report their cardinality, everything else its string representation.
func stringForm(value any) *string {
	var s string
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		s = fmt.Sprintf("%d item(s)", len(v))
	case string:
		s = v
	default:
		s = fmt.Sprintf("%v", v)
	}
	return &s
}
