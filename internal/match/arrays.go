package match

import (
	"log/slog"

	"github.com/invoicevault/template-engine/internal/entity"
)

// extractArray collects every non-overlapping match of the first configured
// pattern that matches at all. With capture_groups each match becomes a
// structured item keyed by group name; absent or out-of-range groups are
// omitted from that item, never fatal. Without capture_groups each match
// contributes its first group (or whole match) as a scalar entry. The role
// heuristics do not apply to arrays.
func extractArray(field entity.Field, text string, tr *fieldTrace, logger *slog.Logger) ([]any, string, bool) {
	for _, lp := range configuredPatterns(field.Extraction) {
		re, err := compileInsensitive(lp.pattern)
		if err != nil {
			tr.attemptFailed(lp.label, lp.pattern, err)
			logger.Error("pattern compile failed",
				"field", field.FieldName, "strategy", lp.label, "error", err)
			continue
		}
		tr.attempt(lp.label, lp.pattern)

		matches := re.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		items := make([]any, 0, len(matches))
		for _, loc := range matches {
			whole := text[loc[0]:loc[1]]
			tr.found(lp.label, whole, groupValues(text, loc))

			if len(field.Extraction.CaptureGroups) > 0 {
				items = append(items, structuredItem(text, loc, field.Extraction.CaptureGroups))
			} else {
				items = append(items, scalarItem(text, loc))
			}
		}
		return items, lp.label, true
	}
	return nil, "", false
}

// structuredItem maps named capture groups onto one item. loc is the
// submatch index slice for a single match.
func structuredItem(text string, loc []int, captureGroups map[string]int) map[string]any {
	item := make(map[string]any, len(captureGroups))
	for key, group := range captureGroups {
		start, end, ok := groupSpan(loc, group)
		if !ok {
			continue
		}
		item[key] = text[start:end]
	}
	return item
}

func scalarItem(text string, loc []int) string {
	if start, end, ok := groupSpan(loc, 1); ok {
		return text[start:end]
	}
	return text[loc[0]:loc[1]]
}

// groupSpan resolves capture group n inside one match, reporting false for
// out-of-range or non-participating groups.
func groupSpan(loc []int, n int) (int, int, bool) {
	if n < 0 || 2*n+1 >= len(loc) {
		return 0, 0, false
	}
	start, end := loc[2*n], loc[2*n+1]
	if start < 0 || end < 0 {
		return 0, 0, false
	}
	return start, end, true
}

func groupValues(text string, loc []int) []string {
	if len(loc) <= 2 {
		return nil
	}
	groups := make([]string, 0, len(loc)/2-1)
	for n := 1; 2*n+1 < len(loc); n++ {
		if start, end, ok := groupSpan(loc, n); ok {
			groups = append(groups, text[start:end])
		} else {
			groups = append(groups, "")
		}
	}
	return groups
}
