package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func equalAmount(expected string) OmegaMatcher {
	return WithTransform(func(d decimal.Decimal) string {
		return d.StringFixed(2)
	}, Equal(expected))
}

var _ = Describe("ExtractTotals", func() {
	It("reads a currency-prefixed total with thousands separators", func() {
		totals := ExtractTotals("Amount payable Total: R 12,345.67 by month end")
		Expect(totals.Total).To(equalAmount("12345.67"))
	})

	It("reads bare labeled amounts", func() {
		totals := ExtractTotals("Subtotal 100.00 VAT 15.00 Total 115.00")
		Expect(totals.Subtotal).To(equalAmount("100.00"))
		Expect(totals.Tax).To(equalAmount("15.00"))
		Expect(totals.Total).To(equalAmount("115.00"))
	})

	It("accepts the hyphenated subtotal label", func() {
		totals := ExtractTotals("Sub-total 200.00 carried forward")
		Expect(totals.Subtotal).To(equalAmount("200.00"))
	})

	It("prefers the currency-prefixed form over an earlier bare one", func() {
		totals := ExtractTotals("Total due on statement ZAR 1,000.00 previously Total 900.00")
		Expect(totals.Total).To(equalAmount("1000.00"))
	})

	It("accepts the Amount Due label", func() {
		totals := ExtractTotals("Amount Due: 499.99 immediately")
		Expect(totals.Total).To(equalAmount("499.99"))
	})

	It("reports fields independently without cross-validation", func() {
		totals := ExtractTotals("Subtotal 100.00 VAT 15.00 Total 999.99")
		Expect(totals.Total).To(equalAmount("999.99"))
	})

	It("returns zero for fields no pattern matches", func() {
		totals := ExtractTotals("A narrative paragraph without any figures")
		Expect(totals.Subtotal.IsZero()).To(BeTrue())
		Expect(totals.Tax.IsZero()).To(BeTrue())
		Expect(totals.Total.IsZero()).To(BeTrue())
	})
})
