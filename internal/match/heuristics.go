package match

import (
	"regexp"
	"strings"

	"github.com/invoicevault/template-engine/constants"
)

// Positional heuristics for fields whose configured patterns all missed.
// Each role searches a restricted window of the document before widening,
// reflecting where receipts typically place the value: dates near the top,
// totals near the bottom, the merchant in the header.

const monthNames = `Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?`

var datePatterns = []labeledPattern{
	{"month_name", `\b(?:` + monthNames + `)\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`},
	{"day_month_name", `\b\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?(?:` + monthNames + `)\s+\d{4}\b`},
	{"slash", `\b\d{1,2}/\d{1,2}/\d{2,4}\b`},
	{"iso", `\b\d{4}-\d{2}-\d{2}\b`},
}

var currencyPatterns = []labeledPattern{
	{"grand_total", `grand\s+total\s*:?\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`},
	{"total", `\btotal\s*:?\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`},
	{"balance_due", `balance\s+due\s*:?\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`},
	{"amount_due", `amount\s+due\s*:?\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`},
	{"currency_symbol", `[$€£]\s*([\d,]+(?:\.\d{1,2})?)`},
}

var merchantPatterns = []labeledPattern{
	{"sold_by", `sold\s+by\s*:?\s*([^\n]+)`},
	{"vendor", `vendor\s*:?\s*([^\n]+)`},
	{"merchant", `merchant\s*:?\s*([^\n]+)`},
	{"from", `from\s*:\s*([^\n]+)`},
}

var orderNumberPatterns = []labeledPattern{
	{"order_number", `order\s*(?:number|no\.?|id)?\s*:?\s*#?\s*([A-Z0-9][A-Z0-9-]{2,})`},
	{"invoice_number", `invoice\s*(?:number|no\.?|id)?\s*:?\s*#?\s*([A-Z0-9][A-Z0-9-]{2,})`},
	{"confirmation_number", `confirmation\s*(?:number|no\.?)?\s*:?\s*#?\s*([A-Z0-9][A-Z0-9-]{2,})`},
	{"hash_token", `#\s*([A-Za-z0-9][A-Za-z0-9-]{2,})`},
}

var reFilenameOrderToken = regexp.MustCompile(`\d[\d-]{2,}`)

// searchWindows tries every pattern against each window in order, recording
// attempts in the trace. Window order is significant: a hit in an earlier
// (restricted) window wins before the wider text is consulted.
func searchWindows(windows []namedWindow, patterns []labeledPattern, method string, tr *fieldTrace) (string, bool) {
	for _, w := range windows {
		for _, lp := range patterns {
			re, err := compileInsensitive(lp.pattern)
			if err != nil {
				// heuristic patterns are package constants; a failure here is a bug
				tr.attemptFailed(method+"/"+lp.label+"/"+w.name, lp.pattern, err)
				continue
			}
			tr.attempt(method+"/"+lp.label+"/"+w.name, lp.pattern)
			if m := re.FindStringSubmatch(w.text); m != nil {
				value := firstGroup(m)
				tr.found(method+"/"+lp.label+"/"+w.name, value, m[1:])
				return value, true
			}
		}
	}
	return "", false
}

type namedWindow struct {
	name string
	text string
}

type dateHeuristic struct{}

func (dateHeuristic) extract(text string, tr *fieldTrace) (string, string, bool) {
	windows := []namedWindow{
		{"first_half", windowOf(text, 1, 2)},
		{"full_text", text},
	}
	if value, ok := searchWindows(windows, datePatterns, "date_heuristic", tr); ok {
		return value, "date_heuristic", true
	}
	return "", "", false
}

type currencyHeuristic struct{}

func (currencyHeuristic) extract(text string, tr *fieldTrace) (string, string, bool) {
	windows := []namedWindow{
		{"final_third", tailOf(text, 1, 3)},
		{"full_text", text},
	}
	if value, ok := searchWindows(windows, currencyPatterns, "currency_heuristic", tr); ok {
		return value, "currency_heuristic", true
	}
	return "", "", false
}

type merchantHeuristic struct {
	filename string
}

func (h merchantHeuristic) extract(text string, tr *fieldTrace) (string, string, bool) {
	windows := []namedWindow{
		{"first_quarter", windowOf(text, 1, 4)},
		{"first_half", windowOf(text, 1, 2)},
	}
	for _, w := range windows {
		// literal brand shortcut: a known brand token in the window is taken
		// as the merchant directly, bypassing group extraction
		tr.attempt("brand_match/"+w.name, "known brand tokens")
		if brand, ok := constants.DetectBrand(w.text); ok {
			tr.found("brand_match/"+w.name, string(brand), nil)
			return string(brand), "brand_match", true
		}
		if value, ok := searchWindows([]namedWindow{w}, merchantPatterns, "merchant_heuristic", tr); ok {
			return value, "merchant_heuristic", true
		}
	}

	if name := merchantFromFilename(h.filename); name != "" {
		tr.attempt("filename_fallback", "leading filename segment")
		tr.found("filename_fallback", name, nil)
		return name, "filename_fallback", true
	}
	return "", "", false
}

// merchantFromFilename recovers a merchant name from the leading segment of
// a filename like "Amazon-Order#_123.pdf". Numeric or trivial segments are
// rejected.
func merchantFromFilename(filename string) string {
	base := baseName(filename)
	if base == "" {
		return ""
	}
	segment := base
	if idx := strings.IndexAny(base, "-_ "); idx > 0 {
		segment = base[:idx]
	}
	segment = strings.TrimSpace(segment)
	if len(segment) < 3 || reFilenameOrderToken.MatchString(segment) {
		return ""
	}
	if brand, ok := constants.CanonicalizeBrand(segment); ok {
		return string(brand)
	}
	return segment
}

type orderNumberHeuristic struct {
	filename string
}

func (h orderNumberHeuristic) extract(text string, tr *fieldTrace) (string, string, bool) {
	windows := []namedWindow{{"full_text", text}}
	if value, ok := searchWindows(windows, orderNumberPatterns, "order_number_heuristic", tr); ok {
		return value, "order_number_heuristic", true
	}

	if base := baseName(h.filename); base != "" {
		tr.attempt("filename_fallback", reFilenameOrderToken.String())
		if token := reFilenameOrderToken.FindString(base); token != "" {
			tr.found("filename_fallback", token, nil)
			return token, "filename_fallback", true
		}
	}
	return "", "", false
}
