package invoice

import (
	"bytes"
	"encoding/csv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"invoice-capture/internal/extract"
)

var _ = Describe("WriteCSV", func() {
	var (
		success extract.InvoiceRecord
		failed  extract.InvoiceRecord
	)

	BeforeEach(func() {
		success = extract.InvoiceRecord{
			ID:              "1",
			FileName:        "inv1.pdf",
			Status:          extract.StatusOK,
			SupplierName:    "Mustek Limited",
			SupplierCode:    "MUSTEK",
			MatchConfidence: extract.ConfidenceHigh,
			InvoiceNumber:   "INV-1",
			InvoiceDate:     "2024-01-15",
			DueDate:         extract.Unknown,
			Subtotal:        decimal.NewFromInt(100),
			Tax:             decimal.NewFromInt(15),
			Total:           decimal.NewFromInt(115),
			LineItems: []extract.LineItem{
				{Kind: extract.ItemPriced, Description: "Toner, black", Quantity: "2", UnitPrice: "450.00", Amount: "900.00"},
			},
		}
		failed = extract.NewErrorRecord("2", "bad.pdf", "no text layer")
	})

	parse := func(records ...extract.InvoiceRecord) [][]string {
		var buf bytes.Buffer
		Expect(WriteCSV(&buf, records)).To(Succeed())
		rows, err := csv.NewReader(&buf).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		return rows
	}

	cell := func(rows [][]string, row int, column string) string {
		for i, name := range rows[0] {
			if name == column {
				return rows[row][i]
			}
		}
		Fail("column not found: " + column)
		return ""
	}

	It("takes the header from the union of record keys in first-appearance order", func() {
		rows := parse(success, failed)
		Expect(rows[0]).To(Equal([]string{
			"fileName", "supplierName", "supplierCode", "matchConfidence",
			"invoiceNumber", "invoiceDate", "dueDate",
			"subtotal", "tax", "total", "lineItemCount", "lineItems",
			"status", "error",
		}))
	})

	It("orders error columns first when an error record leads", func() {
		rows := parse(failed, success)
		Expect(rows[0][:3]).To(Equal([]string{"fileName", "status", "error"}))
	})

	It("never exports the internal record ID", func() {
		rows := parse(success, failed)
		Expect(rows[0]).NotTo(ContainElement("id"))
	})

	It("writes monetary fields with two decimals", func() {
		rows := parse(success)
		Expect(cell(rows, 1, "subtotal")).To(Equal("100.00"))
		Expect(cell(rows, 1, "total")).To(Equal("115.00"))
	})

	It("flattens line items into a count and one summary cell", func() {
		rows := parse(success)
		Expect(cell(rows, 1, "lineItemCount")).To(Equal("1"))
		Expect(cell(rows, 1, "lineItems")).To(Equal("Toner, black (2 x 450.00 = 900.00)"))
	})

	It("leaves blank the columns a record has no value for", func() {
		rows := parse(success, failed)
		Expect(cell(rows, 1, "status")).To(Equal(""))
		Expect(cell(rows, 2, "supplierName")).To(Equal(""))
		Expect(cell(rows, 2, "status")).To(Equal("Error"))
		Expect(cell(rows, 2, "error")).To(Equal("no text layer"))
	})

	It("survives values containing commas and quotes", func() {
		success.InvoiceNumber = `INV "A", revised`
		rows := parse(success)
		Expect(cell(rows, 1, "invoiceNumber")).To(Equal(`INV "A", revised`))
	})

	It("writes only the header for no records", func() {
		var buf bytes.Buffer
		Expect(WriteCSV(&buf, nil)).To(Succeed())
		Expect(buf.String()).To(Equal("\n"))
	})
})
