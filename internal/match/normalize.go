package match

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/invoicevault/template-engine/constants"
	"github.com/invoicevault/template-engine/internal/entity"
)

var (
	reSpaces       = regexp.MustCompile(`\s+`)
	reOrdinal      = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\b`)
	reDayOf        = regexp.MustCompile(`(?i)\b(\d{1,2})\s+of\s+`)
	reNumber       = regexp.MustCompile(`\d+(?:\.\d+)?`)
	reCurrencySyms = regexp.MustCompile(`[$€£¥]`)
	reLabelPrefix  = regexp.MustCompile(`(?i)^(?:sold\s+by|from|vendor|seller|merchant)\s*[:\-]?\s*`)
)

// dateLayouts is the ordered list of accepted purchase-date formats. The
// first layout that parses wins.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"01-02-2006",
	"02-01-2006",
	"2006/01/02",
}

// NormalizeValue converts a field's raw cascade output into its declared data
// type. Conversion never fails hard: anything unparseable stays a cleaned
// string and downstream consumers decide whether to keep it.
func NormalizeValue(field entity.Field, raw any) any {
	s, ok := raw.(string)
	if !ok {
		// array values pass through; materialization happens in the mapper
		return raw
	}

	if field.Extraction.PostProcessing == "trim" {
		s = strings.TrimSpace(s)
	}

	if strings.Contains(strings.ToLower(field.FieldName), "merchant") {
		return CleanMerchantName(s)
	}

	switch field.DataType {
	case constants.TypeDate:
		// kept as a cleaned string; date-object parsing happens in the mapper
		return CleanDateString(s)
	case constants.TypeCurrency:
		return NormalizeCurrency(s)
	default:
		return reSpaces.ReplaceAllString(s, " ")
	}
}

// CleanDateString collapses whitespace runs and strips ordinal suffixes so
// "23rd  of July 2024" becomes "23 July 2024".
func CleanDateString(s string) string {
	s = reSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
	s = reOrdinal.ReplaceAllString(s, "$1")
	s = reDayOf.ReplaceAllString(s, "$1 ")
	return s
}

// NormalizeCurrency strips currency symbols and whitespace and parses the
// amount. A comma with no decimal point is treated as a decimal separator
// ("45,00" -> 45.00); otherwise commas are thousands separators. On total
// parse failure the cleaned string is returned unchanged.
func NormalizeCurrency(s string) any {
	cleaned := strings.TrimSpace(reCurrencySyms.ReplaceAllString(s, ""))
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	candidate := cleaned
	if strings.Contains(candidate, ",") {
		if strings.Contains(candidate, ".") {
			candidate = strings.ReplaceAll(candidate, ",", "")
		} else {
			candidate = strings.ReplaceAll(candidate, ",", ".")
		}
	}

	if f, err := strconv.ParseFloat(candidate, 64); err == nil {
		return f
	}
	if numeric := reNumber.FindString(candidate); numeric != "" {
		if f, err := strconv.ParseFloat(numeric, 64); err == nil {
			return f
		}
	}
	return cleaned
}

// ParseCurrency is NormalizeCurrency constrained to a numeric result.
func ParseCurrency(s string) (float64, bool) {
	if f, ok := NormalizeCurrency(s).(float64); ok {
		return f, true
	}
	return 0, false
}

// ParseDate tries each accepted layout in order against the cleaned string.
func ParseDate(s string) (time.Time, bool) {
	cleaned := CleanDateString(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CleanMerchantName trims a leading label token and trailing punctuation,
// then canonicalizes to a known brand's proper name when one is recognized.
func CleanMerchantName(s string) string {
	s = strings.TrimSpace(s)
	s = reLabelPrefix.ReplaceAllString(s, "")
	s = strings.TrimRight(s, " \t.,;:")
	if brand, ok := constants.CanonicalizeBrand(s); ok {
		return string(brand)
	}
	return s
}
