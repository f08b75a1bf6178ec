package extract

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// stubProcessor echoes documents into records, failing where told to and
// optionally firing a callback per document.
type stubProcessor struct {
	failOn map[string]error
	onDoc  func(doc RawDocument)
}

func (p *stubProcessor) Process(doc RawDocument) (InvoiceRecord, error) {
	if p.onDoc != nil {
		p.onDoc(doc)
	}
	if err, ok := p.failOn[doc.FileName]; ok {
		return InvoiceRecord{}, err
	}
	return InvoiceRecord{ID: doc.ID, FileName: doc.FileName, Status: StatusOK}, nil
}

var _ = Describe("Batch", func() {
	var (
		processor *stubProcessor
		batch     *Batch
		docs      []RawDocument
	)

	BeforeEach(func() {
		processor = &stubProcessor{failOn: map[string]error{}}
		batch = NewBatch(processor, nil)
		docs = []RawDocument{
			{ID: "1", FileName: "a.pdf", Text: "a"},
			{ID: "2", FileName: "b.pdf", Text: "b"},
			{ID: "3", FileName: "c.pdf", Text: "c"},
		}
	})

	It("yields one record per document in input order", func() {
		records, err := batch.Process(context.Background(), docs)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(3))
		Expect(records[0].FileName).To(Equal("a.pdf"))
		Expect(records[1].FileName).To(Equal("b.pdf"))
		Expect(records[2].FileName).To(Equal("c.pdf"))
	})

	When("one document fails", func() {
		BeforeEach(func() {
			processor.failOn["b.pdf"] = errors.New("text layer missing")
		})

		It("emits the error variant in that document's position and continues", func() {
			records, err := batch.Process(context.Background(), docs)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(3))
			Expect(records[0].Status).To(Equal(StatusOK))
			Expect(records[1].Status).To(Equal(StatusError))
			Expect(records[1].Error).To(Equal("text layer missing"))
			Expect(records[1].ID).To(Equal("2"))
			Expect(records[2].Status).To(Equal(StatusOK))
		})
	})

	When("the context is already cancelled", func() {
		It("processes nothing and returns the context error", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			records, err := batch.Process(ctx, docs)
			Expect(err).To(MatchError(context.Canceled))
			Expect(records).To(BeEmpty())
		})
	})

	When("the context is cancelled mid-batch", func() {
		It("returns the records produced so far", func() {
			ctx, cancel := context.WithCancel(context.Background())
			processor.onDoc = func(doc RawDocument) {
				if doc.FileName == "a.pdf" {
					cancel()
				}
			}
			records, err := batch.Process(ctx, docs)
			Expect(err).To(MatchError(context.Canceled))
			Expect(records).To(HaveLen(1))
			Expect(records[0].FileName).To(Equal("a.pdf"))
		})
	})

	It("handles an empty document list", func() {
		records, err := batch.Process(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})
})
