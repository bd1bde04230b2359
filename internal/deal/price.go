package deal

import (
	"regexp"
	"strconv"
	"strings"
)

// Price extraction fallback chain, first match wins. The price text on
// listing pages is free form: "12,900원", "9900", "아이폰 (8900)",
// "쿠폰가 15,000원 (카드할인)".
var (
	priceCurrencyRe = regexp.MustCompile(`([\d,]+)\s*(?:원|₩)`)
	// The digit group starts with \d+ so an unseparated run like "12900"
	// matches from its first digit, not from the last three.
	priceTrailingRe   = regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d+)?)\s*$`)
	priceParenGroupRe = regexp.MustCompile(`\(([\d,]+)\)$`)
	priceAnyGroupRe   = regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d+)?)`)
	// A currency match is rejected when the remainder of the text closes a
	// parenthesis before opening one, i.e. the match sits inside parens.
	insideParenRe = regexp.MustCompile(`^[^()]*\)`)
)

// ExtractPrice reduces loosely formatted price text to a numeric value.
// Best effort only: ranges and multi-currency inputs are not handled.
func ExtractPrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	// 1. Digit group followed by a currency marker, outside parentheses
	for _, loc := range priceCurrencyRe.FindAllStringSubmatchIndex(text, -1) {
		if insideParenRe.MatchString(text[loc[1]:]) {
			continue
		}
		if v, ok := parseNumeric(text[loc[2]:loc[3]]); ok {
			return v, true
		}
	}

	// 2. Digit group at the end of the text, currency marker omitted
	if m := priceTrailingRe.FindStringSubmatch(text); m != nil {
		if v, ok := parseNumeric(m[1]); ok {
			return v, true
		}
	}

	// 3. Single digit group as the entire contents of a trailing paren group
	if m := priceParenGroupRe.FindStringSubmatch(text); m != nil {
		if v, ok := parseNumeric(m[1]); ok {
			return v, true
		}
	}

	// 4. First digit group anywhere, as a last resort
	if m := priceAnyGroupRe.FindStringSubmatch(text); m != nil {
		if v, ok := parseNumeric(m[1]); ok {
			return v, true
		}
	}

	return 0, false
}

func parseNumeric(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
