package constants

import (
	"sort"
	"strings"
)

type Brand string

const (
	Amazon  Brand = "Amazon"
	Walmart Brand = "Walmart"
	Target  Brand = "Target"
	BestBuy Brand = "Best Buy"
	EBay    Brand = "eBay"
	Etsy    Brand = "Etsy"
	Costco  Brand = "Costco"
)

var allBrands = []Brand{
	Amazon,
	Walmart,
	Target,
	BestBuy,
	EBay,
	Etsy,
	Costco,
}

// brandTokens maps lowercase tokens seen in OCR text or filenames to their
// brand. Scan order lives in orderedBrandTokens.
var brandTokens = map[string]Brand{
	"amazon":   Amazon,
	"amzn":     Amazon,
	"walmart":  Walmart,
	"wal-mart": Walmart,
	"target":   Target,
	"best buy": BestBuy,
	"bestbuy":  BestBuy,
	"ebay":     EBay,
	"etsy":     Etsy,
	"costco":   Costco,
}

// orderedBrandTokens fixes the scan order: longest token first, ties broken
// lexicographically, so detection never depends on map iteration order.
var orderedBrandTokens = func() []string {
	tokens := make([]string, 0, len(brandTokens))
	for token := range brandTokens {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	return tokens
}()

func AllBrands() []Brand {
	result := make([]Brand, len(allBrands))
	copy(result, allBrands)
	return result
}

// DetectBrand scans text case-insensitively for any known brand token. Longer
// tokens win over shorter ones so that "best buy" is not shadowed by a
// substring token; length ties resolve lexicographically.
func DetectBrand(text string) (Brand, bool) {
	if text == "" {
		return "", false
	}
	lowered := strings.ToLower(text)

	for _, token := range orderedBrandTokens {
		if strings.Contains(lowered, token) {
			return brandTokens[token], true
		}
	}
	return "", false
}

// CanonicalizeBrand maps a raw merchant string to its proper brand name.
func CanonicalizeBrand(input string) (Brand, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	if brand, ok := brandTokens[normalized]; ok {
		return brand, true
	}

	// fall back to substring detection for values like "Amazon.com Services LLC"
	return DetectBrand(normalized)
}
