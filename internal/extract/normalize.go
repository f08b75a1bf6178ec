package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripArtifacts folds compatibility forms (ligatures, full-width digits) and
// drops the stray control characters PDF text layers tend to leak. Whitespace
// control characters survive so word boundaries are not lost.
var stripArtifacts = transform.Chain(
	norm.NFKC,
	runes.Remove(runes.Predicate(func(r rune) bool {
		return unicode.IsControl(r) && !unicode.IsSpace(r)
	})),
)

// NormalizeText collapses all whitespace runs in the recovered text to single
// spaces and trims the ends. It is total and idempotent.
func NormalizeText(text string) string {
	cleaned, _, err := transform.String(stripArtifacts, text)
	if err != nil {
		cleaned = text
	}
	return strings.Join(strings.Fields(cleaned), " ")
}
