package extract

import "regexp"

// fieldPattern is one candidate pattern in a cascade. group selects which
// capture group carries the field value; 0 means the whole match.
type fieldPattern struct {
	re    *regexp.Regexp
	group int
}

func pat(expr string) fieldPattern { return fieldPattern{re: regexp.MustCompile(expr), group: 1} }

func patGroup(expr string, g int) fieldPattern {
	return fieldPattern{re: regexp.MustCompile(expr), group: g}
}

// Supplier-specific invoice number patterns, keyed by supplier code. These
// are tried before the generic cascade. Trust Patrol prints the invoice date
// and number side by side, hence the second capture group.
var invoiceNumberBySupplier = map[string][]fieldPattern{
	"MUSTEK": {pat(`(?i)CUSTOMER REF2\s+(INV-\d+\s+[A-Z]+)`)},
	"THEEW":  {pat(`(?i)Account Number:?\s*([0-9]+)`)},
	"TRUSC":  {pat(`(?i)Inv No\.?\s*([A-Z0-9]+)`)},
	"NASCPT": {pat(`(?i)020866 DIR\s*([A-Z0-9-]+)`)},
	"TRUPAT": {patGroup(`(?i)Tax\s+Invoice\s(\d{1,2}/\d{1,2}/\d{2,4})\s+([A-Z0-9-]+)`, 2)},
	"MATVAN": {pat(`(?i)BELASTING FAKTUUR NR\.\s*(\S+)`)},
}

// Generic invoice number cascade. Order is a binding contract: several
// patterns can match the same text with different capture intents, and the
// first match wins.
var invoiceNumberGeneric = []fieldPattern{
	pat(`(?i)Invoice\s*(?:Number|No|#|:)\s*:?\s*([A-Z0-9-]+)`),
	pat(`(?i)INV(?:OICE)?\s*(?::|#|No|Number)?\s*([A-Z0-9-]+)`),
	pat(`(?i)Tax Invoice No[.:]\s*([A-Z0-9-]+)`),
	pat(`(?i)Document No\.?\s*([A-Z0-9-]+)`),
	pat(`(?i)Reference[\s#:]+([A-Z0-9-]+)`),
	pat(`(?i)BELASTING FAKTUUR NR[.:]\s*([A-Z0-9-]+)`),
}

// Supplier-specific invoice date patterns.
var invoiceDateBySupplier = map[string][]fieldPattern{
	"MUSTEK": {pat(`(?i)Invoice Date\s*:\s*(\d{2}/\d{2}/\d{4})`)},
	"TRUPAT": {pat(`(?i)Tax\s+Invoice\s(\d{1,2}/\d{1,2}/\d{2,4})\s+[A-Z0-9-]+`)},
}

// Generic invoice date cascade. Municipal statements carry a bare dd/mm/yyyy
// as the first date on the page, so the unlabeled form leads.
var invoiceDateGeneric = []fieldPattern{
	patGroup(`\b\d{2}/\d{2}/\d{4}\b`, 0),
	pat(`(?i)Invoice Date:?\s*(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`),
	pat(`(?i)Date:?\s*(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`),
	pat(`(?i)DATE OF ACCOUNT:?\s*(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`),
	pat(`\b(\d{4}/\d{2}/\d{2})\b`),
}

// Due dates only ever appear labeled; no supplier overrides observed yet.
var dueDateBySupplier = map[string][]fieldPattern{}

var dueDateGeneric = []fieldPattern{
	pat(`(?i)(?:Due Date|Payment Due):?\s*(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`),
}

// ExtractFields recovers invoice number, invoice date and due date from
// normalized text. Supplier-specific patterns for the resolved supplier are
// tried first, then the generic cascade; a field no pattern matches is the
// Unknown sentinel. Dates are returned as raw capture text; callers needing
// a canonical date run them through ParseDate.
func ExtractFields(text string, supplier SupplierMatch) Fields {
	return Fields{
		InvoiceNumber: extractField(text, supplier, invoiceNumberBySupplier, invoiceNumberGeneric),
		InvoiceDate:   extractField(text, supplier, invoiceDateBySupplier, invoiceDateGeneric),
		DueDate:       extractField(text, supplier, dueDateBySupplier, dueDateGeneric),
	}
}

func extractField(text string, supplier SupplierMatch, bySupplier map[string][]fieldPattern, generic []fieldPattern) string {
	if patterns, ok := bySupplier[supplier.Code]; ok {
		if v, ok := firstMatch(patterns, text); ok {
			return v
		}
	}
	if v, ok := firstMatch(generic, text); ok {
		return v
	}
	return Unknown
}

func firstMatch(patterns []fieldPattern, text string) (string, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if p.group < len(m) && m[p.group] != "" {
			return m[p.group], true
		}
	}
	return "", false
}
