package extract

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agext/levenshtein"
)

// Fuzzy thresholds, expressed as edit distance (1 - similarity). Resolve's
// fuzzy tier accepts only below the inner threshold; MatchName is looser and
// accepts up to the outer one, at low confidence past the inner.
const (
	fuzzyOuterThreshold = 0.30
	fuzzyInnerThreshold = 0.20
	fuzzyWindowWords    = 20
)

// signatureRule is a textual fingerprint that uniquely identifies one
// supplier. Every token must be present (case-insensitive) for the rule to
// fire.
type signatureRule struct {
	code   string
	tokens []string
}

// Signature fingerprints, highest-priority tier. A company registration
// number, a certification body acronym, and an ISP name paired with a place
// name that only one branch serves.
var signatureRules = []signatureRule{
	{code: "TRUSC", tokens: []string{"2023/529949/07"}},
	{code: "ICDLSA", tokens: []string{"icdl"}},
	{code: "WISMEL", tokens: []string{"wispernet", "melkhoutfontein"}},
}

// resolverRule is one tier of the resolution cascade. Rules are evaluated
// top-to-bottom and the first success wins, so new suppliers are added by
// appending table rows, not by nesting conditionals.
type resolverRule struct {
	name  string
	apply func(text, lower, fileName string) (SupplierMatch, bool)
}

// Resolver identifies the supplier a document was issued by. It is a pure
// lookup over an immutable registry and safe for concurrent use.
type Resolver struct {
	registry  *Registry
	rules     []resolverRule
	namePats  []*regexp.Regexp
	lowNames  []string
	nameWords []int
}

// NewResolver builds the tiered rule table over the given registry.
func NewResolver(registry *Registry) *Resolver {
	r := &Resolver{registry: registry}
	for _, e := range registry.Entries() {
		r.namePats = append(r.namePats, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(e.Name)))
		low := strings.ToLower(e.Name)
		r.lowNames = append(r.lowNames, low)
		r.nameWords = append(r.nameWords, len(strings.Fields(low)))
	}
	r.rules = []resolverRule{
		{name: "signature", apply: r.signatureMatch},
		{name: "region", apply: r.regionMatch},
		{name: "name-scan", apply: r.nameScan},
		{name: "fuzzy", apply: r.fuzzyMatch},
	}
	return r
}

// Resolve identifies the supplier from normalized document text. Given the
// same text and registry it always returns the same match; ambiguity is
// settled by rule priority and registry declaration order.
func (r *Resolver) Resolve(text, fileName string) SupplierMatch {
	lower := strings.ToLower(text)
	for _, rule := range r.rules {
		if m, ok := rule.apply(text, lower, fileName); ok {
			return m
		}
	}
	return SupplierMatch{Code: "", Name: "Unknown Supplier", Confidence: ConfidenceNone}
}

func (r *Resolver) match(code string, confidence Confidence) (SupplierMatch, bool) {
	name := r.registry.NameFor(code)
	if name == "" {
		return SupplierMatch{}, false
	}
	return SupplierMatch{Code: code, Name: name, Confidence: confidence}, true
}

func (r *Resolver) signatureMatch(_, lower, _ string) (SupplierMatch, bool) {
	for _, rule := range signatureRules {
		hit := true
		for _, tok := range rule.tokens {
			if !strings.Contains(lower, strings.ToLower(tok)) {
				hit = false
				break
			}
		}
		if hit {
			return r.match(rule.code, ConfidenceHigh)
		}
	}
	return SupplierMatch{}, false
}

// regionMatch handles suppliers with regional variants: detect the parent
// keyword first, then pick the region keyword that occurs earliest in the
// text. Parent keyword without any region keyword falls back to the parent's
// own generic code at confidence medium.
func (r *Resolver) regionMatch(_, lower, _ string) (SupplierMatch, bool) {
	for _, parent := range r.registry.Entries() {
		if len(parent.RegionAliases) == 0 {
			continue
		}
		keyword := strings.ToLower(strings.Fields(parent.Name)[0])
		if !strings.Contains(lower, keyword) {
			continue
		}
		bestIdx := -1
		bestCode := ""
		for region, code := range parent.RegionAliases {
			idx := strings.Index(lower, strings.ToLower(region))
			if idx < 0 {
				continue
			}
			if bestIdx < 0 || idx < bestIdx {
				bestIdx = idx
				bestCode = code
			}
		}
		if bestCode != "" {
			return r.match(bestCode, ConfidenceHigh)
		}
		return r.match(parent.Code, ConfidenceMedium)
	}
	return SupplierMatch{}, false
}

// nameScan tests each registry name as an escaped case-insensitive literal,
// in registry order. First hit wins.
func (r *Resolver) nameScan(text, _, _ string) (SupplierMatch, bool) {
	for i, e := range r.registry.Entries() {
		if r.namePats[i].MatchString(text) {
			return r.match(e.Code, ConfidenceMedium)
		}
	}
	return SupplierMatch{}, false
}

// fuzzyMatch compares every registry name against same-width word windows
// near the head of the text (where letterheads live) plus the file name stem,
// keeping the closest candidate. Ties keep the earlier registry entry.
func (r *Resolver) fuzzyMatch(_, lower, fileName string) (SupplierMatch, bool) {
	words := strings.Fields(lower)
	if len(words) > fuzzyWindowWords {
		words = words[:fuzzyWindowWords]
	}
	stem := strings.ToLower(strings.TrimSuffix(fileName, filepath.Ext(fileName)))

	bestDist := 1.0
	bestCode := ""
	for i, e := range r.registry.Entries() {
		dist := 1.0
		width := r.nameWords[i]
		for start := 0; start+width <= len(words); start++ {
			cand := strings.Join(words[start:start+width], " ")
			if d := nameDistance(r.lowNames[i], cand); d < dist {
				dist = d
			}
		}
		if stem != "" {
			if d := nameDistance(r.lowNames[i], stem); d < dist {
				dist = d
			}
		}
		if dist < bestDist {
			bestDist = dist
			bestCode = e.Code
		}
	}
	if bestCode == "" || bestDist > fuzzyInnerThreshold {
		return SupplierMatch{}, false
	}
	return r.match(bestCode, ConfidenceLow)
}

// MatchName re-resolves a supplier code from a display name, used when a
// reviewer manually overrides a match. The ladder is looser than Resolve:
// exact name equality is high, substring containment either way is medium,
// and a close fuzzy hit is medium or low depending on distance.
func (r *Resolver) MatchName(name string) SupplierMatch {
	name = strings.TrimSpace(name)
	if name == "" || name == "Unknown Supplier" {
		return SupplierMatch{Code: "", Name: "Unknown Supplier", Confidence: ConfidenceNone}
	}
	lower := strings.ToLower(name)

	for i, e := range r.registry.Entries() {
		if r.lowNames[i] == lower {
			return SupplierMatch{Code: e.Code, Name: e.Name, Confidence: ConfidenceHigh}
		}
	}
	for i, e := range r.registry.Entries() {
		if strings.Contains(r.lowNames[i], lower) || strings.Contains(lower, r.lowNames[i]) {
			return SupplierMatch{Code: e.Code, Name: e.Name, Confidence: ConfidenceMedium}
		}
	}

	bestDist := 1.0
	bestIdx := -1
	for i := range r.registry.Entries() {
		if d := nameDistance(r.lowNames[i], lower); d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	if bestIdx >= 0 && bestDist <= fuzzyOuterThreshold {
		confidence := ConfidenceLow
		if bestDist <= fuzzyInnerThreshold {
			confidence = ConfidenceMedium
		}
		e := r.registry.Entries()[bestIdx]
		return SupplierMatch{Code: e.Code, Name: e.Name, Confidence: confidence}
	}
	return SupplierMatch{Code: "", Name: "Unknown Supplier", Confidence: ConfidenceNone}
}

func nameDistance(a, b string) float64 {
	return 1 - levenshtein.Similarity(a, b, levenshtein.NewParams())
}
