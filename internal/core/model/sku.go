package model

import "regexp"

// Product SKUs follow the manufacturer convention: a four-digit series
// optionally followed by a dash-separated part code ("4098-9714") or a
// letter suffix ("4100ES").
var skuPattern = regexp.MustCompile(`\b\d{4}(?:-[0-9A-Za-z]{2,6}|[A-Za-z]{1,4})\b`)

// SKUTokens returns all SKU-shaped tokens found in text, in order of
// appearance, deduplicated case-insensitively.
func SKUTokens(text string) []string {
	seen := map[string]bool{}
	var tokens []string
	for _, m := range skuPattern.FindAllString(text, -1) {
		key := normalizeTerm(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		tokens = append(tokens, m)
	}
	return tokens
}

// IsSKU reports whether s is a single SKU-shaped token.
func IsSKU(s string) bool {
	loc := skuPattern.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}
