package match

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/invoicevault/template-engine/constants"
	"github.com/invoicevault/template-engine/internal/entity"
)

// Options carries optional caller-supplied context for one extraction pass.
// Filename enables the merchant/order-number filename fallbacks; this package
// never reads from disk itself.
type Options struct {
	Filename string
	Logger   *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// maxPatternLength caps template-supplied patterns. RE2 already guarantees
// linear-time matching, so the cap only bounds compile cost for hostile input.
const maxPatternLength = 1000

var errPatternTooLong = &patternError{"pattern exceeds maximum length"}

type patternError struct{ msg string }

func (e *patternError) Error() string { return e.msg }

// compileInsensitive compiles a template pattern with case-insensitive
// matching. Compile failures are reported, never propagated past the cascade.
func compileInsensitive(pattern string) (*regexp.Regexp, error) {
	if len(pattern) > maxPatternLength {
		return nil, errPatternTooLong
	}
	return regexp.Compile("(?i)" + pattern)
}

// fieldTrace accumulates the per-field debug record as strategies run.
type fieldTrace struct {
	debug *entity.FieldDebug
}

func newFieldTrace() *fieldTrace {
	return &fieldTrace{debug: &entity.FieldDebug{
		PatternsTried: []entity.PatternAttempt{},
		MatchesFound:  []entity.PatternMatch{},
	}}
}

func (t *fieldTrace) attempt(name, pattern string) {
	t.debug.PatternsTried = append(t.debug.PatternsTried, entity.PatternAttempt{Name: name, Pattern: pattern})
}

func (t *fieldTrace) attemptFailed(name, pattern string, err error) {
	t.debug.PatternsTried = append(t.debug.PatternsTried, entity.PatternAttempt{Name: name, Pattern: pattern, Error: err.Error()})
}

func (t *fieldTrace) found(patternName, value string, groups []string) {
	t.debug.MatchesFound = append(t.debug.MatchesFound, entity.PatternMatch{PatternName: patternName, Value: value, Groups: groups})
}

// extractor is one strategy in a field's cascade. ok reports whether the
// strategy produced a value; the cascade stops at the first success.
type extractor interface {
	extract(text string, tr *fieldTrace) (value string, method string, ok bool)
}

// labeledPattern is a template-supplied regex with its cascade position tag.
type labeledPattern struct {
	label   string
	pattern string
}

// configuredPatterns returns the template's own patterns in cascade order:
// primary, alternative, then each additional pattern (1-based tags).
func configuredPatterns(cfg entity.ExtractionConfig) []labeledPattern {
	patterns := make([]labeledPattern, 0, 2+len(cfg.AdditionalPatterns))
	if cfg.Regex != "" {
		patterns = append(patterns, labeledPattern{"primary_regex", cfg.Regex})
	}
	if cfg.AlternativeRegex != "" {
		patterns = append(patterns, labeledPattern{"alternative_regex", cfg.AlternativeRegex})
	}
	for i, p := range cfg.AdditionalPatterns {
		if p == "" {
			continue
		}
		patterns = append(patterns, labeledPattern{"additional_regex_" + strconv.Itoa(i+1), p})
	}
	return patterns
}

type regexExtractor struct {
	labeledPattern
	fieldName string
	logger    *slog.Logger
}

func (e regexExtractor) extract(text string, tr *fieldTrace) (string, string, bool) {
	re, err := compileInsensitive(e.pattern)
	if err != nil {
		tr.attemptFailed(e.label, e.pattern, err)
		e.logger.Error("pattern compile failed",
			"field", e.fieldName, "strategy", e.label, "error", err)
		return "", "", false
	}
	tr.attempt(e.label, e.pattern)

	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	value := firstGroup(m)
	tr.found(e.label, value, m[1:])
	return value, e.label, true
}

// firstGroup returns the first capture group, or the whole match when the
// pattern has no groups.
func firstGroup(m []string) string {
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

// buildCascade assembles the ordered strategy list for a non-array field:
// configured patterns first, then the role heuristic when the field has one.
func buildCascade(field entity.Field, opts Options) []extractor {
	logger := opts.logger()

	var cascade []extractor
	for _, lp := range configuredPatterns(field.Extraction) {
		cascade = append(cascade, regexExtractor{labeledPattern: lp, fieldName: field.FieldName, logger: logger})
	}

	switch ClassifyField(field.FieldName, field.DataType) {
	case RoleDate:
		cascade = append(cascade, dateHeuristic{})
	case RoleCurrency:
		cascade = append(cascade, currencyHeuristic{})
	case RoleMerchant:
		cascade = append(cascade, merchantHeuristic{filename: opts.Filename})
	case RoleOrderNumber:
		cascade = append(cascade, orderNumberHeuristic{filename: opts.Filename})
	}
	return cascade
}

// ExtractField runs the strategy cascade for one field and returns the raw
// value (string for scalar fields, []any for arrays, nil when unmatched), the
// method tag of the winning strategy, and the full debug record.
func ExtractField(field entity.Field, text string, opts Options) (any, string, entity.FieldDebug) {
	tr := newFieldTrace()

	if field.DataType == constants.TypeArray {
		items, method, ok := extractArray(field, text, tr, opts.logger())
		if !ok {
			return nil, "", *tr.debug
		}
		return items, method, *tr.debug
	}

	for _, ex := range buildCascade(field, opts) {
		if value, method, ok := ex.extract(text, tr); ok {
			return value, method, *tr.debug
		}
	}
	return nil, "", *tr.debug
}

// windowOf returns the leading fraction of text (numerator/denominator),
// used by positional heuristics.
func windowOf(text string, numerator, denominator int) string {
	if denominator <= 0 {
		return text
	}
	end := len(text) * numerator / denominator
	if end > len(text) {
		end = len(text)
	}
	return text[:end]
}

// tailOf returns the trailing fraction of text.
func tailOf(text string, numerator, denominator int) string {
	if denominator <= 0 {
		return text
	}
	start := len(text) - len(text)*numerator/denominator
	if start < 0 {
		start = 0
	}
	return text[start:]
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		path = path[idx+1:]
	}
	if dot := strings.LastIndex(path, "."); dot > 0 {
		path = path[:dot]
	}
	return path
}
