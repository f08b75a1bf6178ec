package extract

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Unknown is the sentinel for text fields an exhaustive pattern search could
// not recover. Monetary fields use decimal zero instead; line-item quantity
// and unit-price fields use the empty string when never observed.
const Unknown = "Unknown"

// Confidence is the certainty tier attached to a supplier match.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

// String returns the wire representation of the confidence tier.
func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return "none"
	}
}

// MarshalJSON encodes the confidence tier as its string form.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON accepts the string form produced by MarshalJSON. Unrecognized
// values decode as ConfidenceNone.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "low":
		*c = ConfidenceLow
	case "medium":
		*c = ConfidenceMedium
	case "high":
		*c = ConfidenceHigh
	default:
		*c = ConfidenceNone
	}
	return nil
}

// RawDocument is one document's worth of recovered text. It is consumed once
// and yields exactly one InvoiceRecord.
type RawDocument struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Text     string `json:"text"`
}

// SupplierMatch is the outcome of supplier resolution for one document.
// It is created fresh per document and never mutated, only replaced.
type SupplierMatch struct {
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	Confidence Confidence `json:"confidence"`
}

// ItemKind distinguishes the shapes a line item can take. The set is closed:
// downstream consumers switch over these three values.
type ItemKind string

const (
	ItemPriced        ItemKind = "priced"
	ItemMeterReading  ItemKind = "meter_reading"
	ItemMinimumCharge ItemKind = "minimum_charge"
)

// LineItem is one itemized charge. Numeric fields are normalized decimal
// strings with thousands separators removed; quantity and unit price are the
// empty string when the source never showed them, which is distinct from "0".
type LineItem struct {
	Kind        ItemKind `json:"kind"`
	Description string   `json:"description"`
	ItemCode    string   `json:"item_code,omitempty"`
	Quantity    string   `json:"quantity"`
	UnitPrice   string   `json:"unit_price"`
	Amount      string   `json:"amount"`
}

// Fields holds the three header fields recovered by the field extractor.
// Dates here are raw capture text, not yet canonicalized.
type Fields struct {
	InvoiceNumber string
	InvoiceDate   string
	DueDate       string
}

// Totals holds the monetary summary recovered from a document. A field the
// pattern cascade could not find is decimal zero.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Record status values. A record is exactly one of the two shapes: a
// processed invoice, or an error variant carrying only the failure message.
const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// InvoiceRecord is the structured result for one document.
type InvoiceRecord struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Status   string `json:"status"`

	SupplierName    string          `json:"supplier_name,omitempty"`
	SupplierCode    string          `json:"supplier_code,omitempty"`
	MatchConfidence Confidence      `json:"match_confidence,omitempty"`
	InvoiceNumber   string          `json:"invoice_number,omitempty"`
	InvoiceDate     string          `json:"invoice_date,omitempty"`
	DueDate         string          `json:"due_date,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal,omitempty"`
	Tax             decimal.Decimal `json:"tax,omitempty"`
	Total           decimal.Decimal `json:"total,omitempty"`
	LineItems       []LineItem      `json:"line_items,omitempty"`

	Error string `json:"error,omitempty"`
}

// NewErrorRecord builds the error variant for a document that could not be
// processed.
func NewErrorRecord(id, fileName, message string) InvoiceRecord {
	return InvoiceRecord{
		ID:       id,
		FileName: fileName,
		Status:   StatusError,
		Error:    message,
	}
}

// IsError reports whether the record is the error variant.
func (r InvoiceRecord) IsError() bool {
	return r.Status == StatusError
}
