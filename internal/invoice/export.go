package invoice

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"invoice-capture/internal/extract"

	"github.com/shopspring/decimal"
)

// WriteCSV flattens records into a CSV table. The header is the union of the
// keys each record contributes, in first-appearance order; rows leave blank
// the columns their record has no value for. The internal record ID is not
// exported.
func WriteCSV(w io.Writer, records []extract.InvoiceRecord) error {
	var columns []string
	seen := map[string]bool{}
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		row := flatten(r)
		rows = append(rows, row)
		for _, key := range columnOrder {
			if _, ok := row[key]; ok && !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	line := make([]string, len(columns))
	for _, row := range rows {
		for i, key := range columns {
			line[i] = row[key]
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// columnOrder fixes first-appearance scanning so output columns are stable
// regardless of which record variant comes first.
var columnOrder = []string{
	"fileName",
	"status",
	"supplierName",
	"supplierCode",
	"matchConfidence",
	"invoiceNumber",
	"invoiceDate",
	"dueDate",
	"subtotal",
	"tax",
	"total",
	"lineItemCount",
	"lineItems",
	"error",
}

func flatten(r extract.InvoiceRecord) map[string]string {
	if r.IsError() {
		return map[string]string{
			"fileName": r.FileName,
			"status":   r.Status,
			"error":    r.Error,
		}
	}
	return map[string]string{
		"fileName":        r.FileName,
		"supplierName":    r.SupplierName,
		"supplierCode":    r.SupplierCode,
		"matchConfidence": r.MatchConfidence.String(),
		"invoiceNumber":   r.InvoiceNumber,
		"invoiceDate":     r.InvoiceDate,
		"dueDate":         r.DueDate,
		"subtotal":        money(r.Subtotal),
		"tax":             money(r.Tax),
		"total":           money(r.Total),
		"lineItemCount":   strconv.Itoa(len(r.LineItems)),
		"lineItems":       flattenItems(r.LineItems),
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func flattenItems(items []extract.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		part := item.Description
		if item.Quantity != "" || item.UnitPrice != "" {
			part = fmt.Sprintf("%s (%s x %s = %s)", item.Description, item.Quantity, item.UnitPrice, item.Amount)
		} else if item.Amount != "" {
			part = fmt.Sprintf("%s (%s)", item.Description, item.Amount)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
