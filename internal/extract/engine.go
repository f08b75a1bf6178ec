package extract

import (
	"errors"
	"log/slog"
)

// ErrNoText marks a document whose recovered text is empty or unusable.
var ErrNoText = errors.New("document text is empty")

// Engine runs the full extraction cascade for one document: normalize,
// resolve the supplier, then recover header fields, totals and line items.
// All state is either the immutable registry or per-document locals, so one
// Engine may serve concurrent batches.
type Engine struct {
	registry  *Registry
	resolver  *Resolver
	lineItems *LineItemExtractor
	logger    *slog.Logger
}

// NewEngine builds an engine over the given registry. A nil logger falls
// back to slog.Default.
func NewEngine(registry *Registry, logger *slog.Logger) (*Engine, error) {
	if registry == nil || len(registry.Entries()) == 0 {
		return nil, ErrEmptyRegistry
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry:  registry,
		resolver:  NewResolver(registry),
		lineItems: NewLineItemExtractor(),
		logger:    logger,
	}, nil
}

// Resolver exposes the engine's supplier resolver for manual re-matching.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// Process converts one document's text into an invoice record. It returns an
// error only for document-level failures (empty text); a field no pattern
// recovers is reported through its sentinel, never as an error.
func (e *Engine) Process(doc RawDocument) (InvoiceRecord, error) {
	text := NormalizeText(doc.Text)
	if text == "" {
		return InvoiceRecord{}, ErrNoText
	}

	supplier := e.resolver.Resolve(text, doc.FileName)
	fields := ExtractFields(text, supplier)
	totals := ExtractTotals(text)
	items := e.lineItems.Extract(text, supplier)

	record := InvoiceRecord{
		ID:              doc.ID,
		FileName:        doc.FileName,
		Status:          StatusOK,
		SupplierName:    supplier.Name,
		SupplierCode:    supplier.Code,
		MatchConfidence: supplier.Confidence,
		InvoiceNumber:   fields.InvoiceNumber,
		InvoiceDate:     canonicalDate(fields.InvoiceDate),
		DueDate:         canonicalDate(fields.DueDate),
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Total:           totals.Total,
		LineItems:       items,
	}

	e.logger.Debug("document processed",
		"file", doc.FileName,
		"supplier", supplier.Code,
		"confidence", supplier.Confidence,
		"invoice_number", record.InvoiceNumber,
		"line_items", len(items),
	)
	return record, nil
}

// canonicalDate normalizes a raw extracted date. Records always carry either
// a canonical YYYY-MM-DD or the Unknown sentinel.
func canonicalDate(raw string) string {
	if raw == Unknown {
		return Unknown
	}
	return ParseDate(raw)
}
