package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountExpr matches a currency amount with optional thousands-separator
// commas and an optional decimal part.
const amountExpr = `((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{1,2})?)`

// Per-field pattern lists, each in priority order: the currency-prefixed form
// first, then the bare labeled form. First match per field wins.
var (
	subtotalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:Subtotal|Sub-total).*?(?:R|ZAR)\s*` + amountExpr),
		regexp.MustCompile(`(?i)\b(?:Subtotal|Sub-total)\s*:?\s*` + amountExpr),
	}
	taxPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:VAT|Tax).*?(?:R|ZAR)\s*` + amountExpr),
		regexp.MustCompile(`(?i)\b(?:VAT|Tax)\s*:?\s*` + amountExpr),
	}
	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:Total|Amount Due).*?(?:R|ZAR)\s*` + amountExpr),
		regexp.MustCompile(`(?i)\b(?:Total|Amount Due)\s*:?\s*` + amountExpr),
	}
)

// ExtractTotals recovers subtotal, tax and total amounts from normalized
// text. Fields no pattern matches are decimal zero. The three amounts are
// reported as matched; subtotal + tax == total is deliberately not enforced
// here.
func ExtractTotals(text string) Totals {
	return Totals{
		Subtotal: firstAmount(subtotalPatterns, text),
		Tax:      firstAmount(taxPatterns, text),
		Total:    firstAmount(totalPatterns, text),
	}
}

func firstAmount(patterns []*regexp.Regexp, text string) decimal.Decimal {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if amount, ok := parseAmount(m[1]); ok {
			return amount
		}
	}
	return decimal.Zero
}

// parseAmount normalizes a matched numeral: thousands-separator commas are
// stripped before decimal parsing.
func parseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}
