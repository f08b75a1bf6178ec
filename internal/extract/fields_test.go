package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractFields", func() {
	unknownSupplier := SupplierMatch{Name: "Unknown Supplier"}

	Describe("invoice number", func() {
		It("uses the supplier-specific pattern when the supplier is known", func() {
			fields := ExtractFields("CUSTOMER REF2 INV-1234567 AB delivered", SupplierMatch{Code: "MUSTEK"})
			Expect(fields.InvoiceNumber).To(Equal("INV-1234567 AB"))
		})

		It("captures the second group for the patrol company's combined line", func() {
			fields := ExtractFields("Tax Invoice 5/6/2024 TP-998 guarding", SupplierMatch{Code: "TRUPAT"})
			Expect(fields.InvoiceNumber).To(Equal("TP-998"))
		})

		It("reads the municipal account number", func() {
			fields := ExtractFields("Account Number: 303au1881 water and rates", SupplierMatch{Code: "THEEW"})
			Expect(fields.InvoiceNumber).To(Equal("303"))
		})

		It("falls back to the generic cascade for an unknown supplier", func() {
			fields := ExtractFields("Invoice Number: ABC-123 for services", unknownSupplier)
			Expect(fields.InvoiceNumber).To(Equal("ABC-123"))
		})

		It("falls back to the generic cascade when the supplier pattern misses", func() {
			fields := ExtractFields("Invoice Number: XYZ-9 for services", SupplierMatch{Code: "MUSTEK"})
			Expect(fields.InvoiceNumber).To(Equal("XYZ-9"))
		})

		It("reads a reference label", func() {
			fields := ExtractFields("Payment Reference REF-2024-17 enclosed", unknownSupplier)
			Expect(fields.InvoiceNumber).To(Equal("REF-2024-17"))
		})

		It("returns the sentinel when nothing matches", func() {
			fields := ExtractFields("Statement with no usable references", unknownSupplier)
			Expect(fields.InvoiceNumber).To(Equal(Unknown))
		})
	})

	Describe("invoice date", func() {
		It("prefers the bare dd/mm/yyyy form", func() {
			fields := ExtractFields("Statement 01/02/2024 Account 555", unknownSupplier)
			Expect(fields.InvoiceDate).To(Equal("01/02/2024"))
		})

		It("uses the supplier-specific labeled form when the supplier is known", func() {
			fields := ExtractFields("Invoice Date : 15/01/2024 terms net 30", SupplierMatch{Code: "MUSTEK"})
			Expect(fields.InvoiceDate).To(Equal("15/01/2024"))
		})

		It("returns raw capture text without canonicalizing", func() {
			fields := ExtractFields("Tax Invoice 5/6/2024 TP-998", SupplierMatch{Code: "TRUPAT"})
			Expect(fields.InvoiceDate).To(Equal("5/6/2024"))
		})

		It("returns the sentinel when no date form matches", func() {
			fields := ExtractFields("No dates mentioned here at all", unknownSupplier)
			Expect(fields.InvoiceDate).To(Equal(Unknown))
		})
	})

	Describe("due date", func() {
		It("matches the labeled form", func() {
			fields := ExtractFields("Payment terms Due Date: 15/02/2024 strictly", unknownSupplier)
			Expect(fields.DueDate).To(Equal("15/02/2024"))
		})

		It("returns the sentinel when absent", func() {
			fields := ExtractFields("Statement 01/02/2024 Account 555", unknownSupplier)
			Expect(fields.DueDate).To(Equal(Unknown))
		})
	})
})
