package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Engine", func() {
	var engine *Engine

	BeforeEach(func() {
		var err error
		engine, err = NewEngine(DefaultRegistry(), nil)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewEngine", func() {
		It("rejects a nil registry", func() {
			_, err := NewEngine(nil, nil)
			Expect(err).To(MatchError(ErrEmptyRegistry))
		})

		It("exposes its resolver for manual re-matching", func() {
			Expect(engine.Resolver()).NotTo(BeNil())
		})
	})

	Describe("Process", func() {
		It("fails for a document with no usable text", func() {
			_, err := engine.Process(RawDocument{ID: "d1", FileName: "blank.pdf", Text: " \n\t "})
			Expect(err).To(MatchError(ErrNoText))
		})

		When("processing a recognizable invoice", func() {
			var record InvoiceRecord

			BeforeEach(func() {
				doc := RawDocument{
					ID:       "d2",
					FileName: "inv.pdf",
					Text: "Trust Patrol guarding services\n" +
						"Tax Invoice 05/06/2024 TP-998\n" +
						"Due Date: 30/06/2024\n" +
						"Amount Due: 1,500.00",
				}
				var err error
				record, err = engine.Process(doc)
				Expect(err).NotTo(HaveOccurred())
			})

			It("carries the document identity and OK status", func() {
				Expect(record.ID).To(Equal("d2"))
				Expect(record.FileName).To(Equal("inv.pdf"))
				Expect(record.Status).To(Equal(StatusOK))
			})

			It("resolves the supplier", func() {
				Expect(record.SupplierCode).To(Equal("TRUPAT"))
				Expect(record.SupplierName).To(Equal("Trust Patrol"))
				Expect(record.MatchConfidence).To(Equal(ConfidenceMedium))
			})

			It("recovers the invoice number from the combined line", func() {
				Expect(record.InvoiceNumber).To(Equal("TP-998"))
			})

			It("canonicalizes the dates", func() {
				Expect(record.InvoiceDate).To(Equal("2024-06-05"))
				Expect(record.DueDate).To(Equal("2024-06-30"))
			})

			It("recovers the total", func() {
				Expect(record.Total.StringFixed(2)).To(Equal("1500.00"))
			})
		})

		When("nothing in the text is recognizable", func() {
			var record InvoiceRecord

			BeforeEach(func() {
				var err error
				record, err = engine.Process(RawDocument{ID: "d3", FileName: "note.txt", Text: "short handwritten reminder"})
				Expect(err).NotTo(HaveOccurred())
			})

			It("still succeeds with sentinel values everywhere", func() {
				Expect(record.Status).To(Equal(StatusOK))
				Expect(record.SupplierName).To(Equal("Unknown Supplier"))
				Expect(record.InvoiceNumber).To(Equal(Unknown))
				Expect(record.InvoiceDate).To(Equal(Unknown))
				Expect(record.DueDate).To(Equal(Unknown))
				Expect(record.Total.IsZero()).To(BeTrue())
				Expect(record.LineItems).To(BeEmpty())
			})
		})
	})
})
