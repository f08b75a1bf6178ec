package extract

import (
	"regexp"
	"sort"
	"strings"
)

// ItemStrategy is one way of reading an itemization layout. Applies gates
// the strategy on supplier identity and structural markers; Extract returns
// every item the layout yields, in document order.
type ItemStrategy interface {
	Name() string
	Applies(text string, supplier SupplierMatch) bool
	Extract(text string, supplier SupplierMatch) []LineItem
}

// LineItemExtractor selects an extraction strategy per document. Strategies
// are tried in declaration order and the first one that yields items wins;
// the generic fallback runs only when every applicable strategy produced
// nothing. Partial results from different strategies are never merged.
type LineItemExtractor struct {
	strategies []ItemStrategy
	fallback   ItemStrategy
}

// NewLineItemExtractor builds the extractor with the production strategy set.
func NewLineItemExtractor() *LineItemExtractor {
	return &LineItemExtractor{
		strategies: []ItemStrategy{&nashuaStrategy{}, &tabularStrategy{}},
		fallback:   &genericStrategy{},
	}
}

// NewLineItemExtractorWith builds an extractor over a custom strategy set.
func NewLineItemExtractorWith(strategies []ItemStrategy, fallback ItemStrategy) *LineItemExtractor {
	return &LineItemExtractor{strategies: strategies, fallback: fallback}
}

// Extract returns the itemized charges found in the text, possibly none.
func (e *LineItemExtractor) Extract(text string, supplier SupplierMatch) []LineItem {
	for _, s := range e.strategies {
		if !s.Applies(text, supplier) {
			continue
		}
		if items := s.Extract(text, supplier); len(items) > 0 {
			return items
		}
	}
	if e.fallback == nil {
		return nil
	}
	return e.fallback.Extract(text, supplier)
}

var (
	nashuaHeaderRE  = regexp.MustCompile(`(?i)Description\s+Qty\s+Unit\s+Price\s+Price\s+VAT\s+Total`)
	nashuaFooterRE  = regexp.MustCompile(`(?i)Total\s+\(excl\s+VAT\)`)
	meterBlockRE    = regexp.MustCompile(`\*\s*([^*]+?)\s*\*`)
	meterValuesRE   = regexp.MustCompile(`\b(\d+)\s+(\d+(?:\.\d+)?)\s+(\d+(?:\.\d+)?)\s+(\d+(?:\.\d+)?)\s+(\d+(?:\.\d+)?)\b`)
	standardRowRE   = regexp.MustCompile(`([A-Za-z][^0-9*]*?)\s+(\d+(?:\.\d+)?)\s+(\d+\.\d{2})\s+(\d+\.\d{2})\s+(\d+\.\d{2})\s+(\d+\.\d{2})`)
	minChargeRE     = regexp.MustCompile(`(?i)Min\.Copy\s+Chg\s+(\d+(?:\.\d+)?)`)
	shortfallRE     = regexp.MustCompile(`(?i)Shortfall`)
	minChargeValsRE = regexp.MustCompile(`(\d+(?:\.\d+)?)\s+(\d+\.\d{2})\s+(\d+\.\d{2})`)
	copiesTierRE    = regexp.MustCompile(`(?i)Copies Made at Tier (\d+)`)
	leadingCodeRE   = regexp.MustCompile(`^([A-Z0-9]+(?:/[A-Z0-9]+)*)\b`)
)

// nashuaStrategy reads Nashua copier statements: a section bounded by the
// column header and the "Total (excl VAT)" line, holding standard priced
// rows, meter-reading blocks opened by an asterisked meter type whose numeric
// fields trail several lines later, and minimum-charge shortfall blocks.
type nashuaStrategy struct{}

func (s *nashuaStrategy) Name() string { return "nashua" }

func (s *nashuaStrategy) Applies(text string, supplier SupplierMatch) bool {
	return supplier.Code == "NASCPT" || strings.Contains(text, "Bridoon Trade and Invest 197")
}

// positioned pairs an item with its offset in the section so items from the
// three block kinds come out in document order.
type positioned struct {
	pos  int
	item LineItem
}

func (s *nashuaStrategy) Extract(text string, _ SupplierMatch) []LineItem {
	header := nashuaHeaderRE.FindStringIndex(text)
	if header == nil {
		return nil
	}
	footer := nashuaFooterRE.FindStringIndex(text[header[1]:])
	if footer == nil {
		return nil
	}
	section := text[header[1] : header[1]+footer[0]]

	var found []positioned
	masked := []byte(section)
	blockStarts := blockBoundaries(section)

	for _, block := range meterBlockRE.FindAllStringSubmatchIndex(section, -1) {
		start, end := block[0], block[1]
		title := section[block[2]:block[3]]
		bound := nextBoundary(blockStarts, end, len(section))
		vals := meterValuesRE.FindStringSubmatchIndex(section[end:bound])
		if vals == nil {
			// Unterminated block: drop it rather than emit a partial item.
			maskRange(masked, start, bound)
			continue
		}
		desc := strings.TrimSpace(section[start : end+vals[0]])
		item := LineItem{
			Kind:        ItemMeterReading,
			Description: desc,
			ItemCode:    meterItemCode(desc, title),
			Quantity:    section[end+vals[2] : end+vals[3]],
			UnitPrice:   section[end+vals[4] : end+vals[5]],
			Amount:      section[end+vals[10] : end+vals[11]],
		}
		found = append(found, positioned{pos: start, item: item})
		maskRange(masked, start, end+vals[1])
	}

	for _, charge := range minChargeRE.FindAllStringSubmatchIndex(section, -1) {
		start, end := charge[0], charge[1]
		bound := nextBoundary(blockStarts, end, len(section))
		rest := section[end:bound]
		shortfall := shortfallRE.FindStringIndex(rest)
		if shortfall == nil {
			continue
		}
		vals := minChargeValsRE.FindStringSubmatchIndex(rest[shortfall[1]:])
		if vals == nil {
			continue
		}
		item := LineItem{
			Kind:        ItemMinimumCharge,
			Description: strings.TrimSpace(section[start : end+shortfall[1]]),
			ItemCode:    "Min.Copy Chg Shortfall",
			Quantity:    "1",
			UnitPrice:   rest[shortfall[1]+vals[4] : shortfall[1]+vals[5]],
			Amount:      rest[shortfall[1]+vals[6] : shortfall[1]+vals[7]],
		}
		found = append(found, positioned{pos: start, item: item})
		maskRange(masked, start, end+shortfall[1]+vals[1])
	}

	remainder := string(masked)
	for _, row := range standardRowRE.FindAllStringSubmatchIndex(remainder, -1) {
		desc := strings.TrimSpace(remainder[row[2]:row[3]])
		if desc == "" {
			continue
		}
		item := LineItem{
			Kind:        ItemPriced,
			Description: desc,
			ItemCode:    priceRowItemCode(desc),
			Quantity:    remainder[row[4]:row[5]],
			UnitPrice:   remainder[row[6]:row[7]],
			Amount:      remainder[row[12]:row[13]],
		}
		found = append(found, positioned{pos: row[0], item: item})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })
	items := make([]LineItem, 0, len(found))
	for _, f := range found {
		items = append(items, f.item)
	}
	return items
}

// blockBoundaries returns the sorted start offsets of every meter and
// minimum-charge block, so a block's numeric search never runs into the next
// block.
func blockBoundaries(section string) []int {
	var starts []int
	for _, m := range meterBlockRE.FindAllStringIndex(section, -1) {
		starts = append(starts, m[0])
	}
	for _, m := range minChargeRE.FindAllStringIndex(section, -1) {
		starts = append(starts, m[0])
	}
	sort.Ints(starts)
	return starts
}

func nextBoundary(starts []int, after, max int) int {
	for _, s := range starts {
		if s >= after {
			return s
		}
	}
	return max
}

func maskRange(b []byte, start, end int) {
	for i := start; i < end && i < len(b); i++ {
		b[i] = ' '
	}
}

func meterItemCode(desc, title string) string {
	if m := copiesTierRE.FindStringSubmatch(desc); m != nil {
		return "Copies Made at Tier " + m[1]
	}
	if title != "" {
		return title + " Meter"
	}
	return "Meter Reading"
}

func priceRowItemCode(desc string) string {
	if m := copiesTierRE.FindStringSubmatch(desc); m != nil {
		return "Copies Made at Tier " + m[1]
	}
	if m := leadingCodeRE.FindStringSubmatch(desc); m != nil {
		return m[1]
	}
	if fields := strings.Fields(desc); len(fields) > 0 {
		return fields[0]
	}
	return desc
}

var tabularRowRE = regexp.MustCompile(`\b([A-Z0-9]{2,}(?:/[A-Z0-9]+)*)\s+([A-Za-z][^0-9*]*?)\s+(\d+(?:\.\d+)?)\s+(\d{1,3}(?:,\d{3})*\.\d{2})\s+(\d{1,3}(?:,\d{3})*\.\d{2})\b`)

// tabularStrategy reads the common one-row-per-item layout of
// "code description qty unitPrice amount" with one global pattern applied
// repeatedly. Suppliers known to use a different layout skip it.
type tabularStrategy struct{}

var nonTabularSuppliers = map[string]bool{
	"NASCPT": true,
}

func (s *tabularStrategy) Name() string { return "tabular" }

func (s *tabularStrategy) Applies(_ string, supplier SupplierMatch) bool {
	return !nonTabularSuppliers[supplier.Code]
}

func (s *tabularStrategy) Extract(text string, _ SupplierMatch) []LineItem {
	var items []LineItem
	for _, m := range tabularRowRE.FindAllStringSubmatch(text, -1) {
		desc := strings.TrimSpace(m[2])
		if isSummaryLabel(desc) {
			continue
		}
		items = append(items, LineItem{
			Kind:        ItemPriced,
			Description: desc,
			ItemCode:    m[1],
			Quantity:    normalizeNumber(m[3]),
			UnitPrice:   normalizeNumber(m[4]),
			Amount:      normalizeNumber(m[5]),
		})
	}
	return items
}

var (
	genericRowRE   = regexp.MustCompile(`([A-Za-z][^0-9*]{2,60}?)\s+(\d+(?:\.\d+)?)\s+(\d{1,3}(?:,\d{3})*\.\d{2})\s+(\d{1,3}(?:,\d{3})*\.\d{2})\b`)
	summaryLabelRE = regexp.MustCompile(`(?i)\b(?:sub\s*-?\s*total|total|tax|vat|date|invoice)\b`)
)

// genericStrategy is the last resort: any "description qty unitPrice amount"
// quadruple anywhere in the text, with summary labels rejected so totals
// lines do not masquerade as items.
type genericStrategy struct{}

func (s *genericStrategy) Name() string { return "generic" }

func (s *genericStrategy) Applies(_ string, _ SupplierMatch) bool { return true }

func (s *genericStrategy) Extract(text string, _ SupplierMatch) []LineItem {
	var items []LineItem
	for _, m := range genericRowRE.FindAllStringSubmatch(text, -1) {
		desc := strings.TrimSpace(m[1])
		if desc == "" || isSummaryLabel(desc) {
			continue
		}
		items = append(items, LineItem{
			Kind:        ItemPriced,
			Description: desc,
			Quantity:    normalizeNumber(m[2]),
			UnitPrice:   normalizeNumber(m[3]),
			Amount:      normalizeNumber(m[4]),
		})
	}
	return items
}

func isSummaryLabel(desc string) bool {
	return summaryLabelRE.MatchString(desc)
}

func normalizeNumber(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
