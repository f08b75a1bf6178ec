package extract

import (
	"context"
	"log/slog"
)

// DocumentProcessor converts one document into an invoice record.
type DocumentProcessor interface {
	Process(doc RawDocument) (InvoiceRecord, error)
}

// Batch runs the pipeline over a sequence of documents. Each document is
// processed independently: a failure yields that document's error-variant
// record and the loop continues. Output order matches input order.
type Batch struct {
	processor DocumentProcessor
	logger    *slog.Logger
}

// NewBatch builds a batch runner over the given processor.
func NewBatch(processor DocumentProcessor, logger *slog.Logger) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{processor: processor, logger: logger}
}

// Process runs every document through the processor. When ctx is cancelled,
// documents not yet started are never processed and no partial record is
// emitted for them; the records produced so far are returned alongside the
// context error.
func (b *Batch) Process(ctx context.Context, docs []RawDocument) ([]InvoiceRecord, error) {
	records := make([]InvoiceRecord, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			b.logger.Warn("batch cancelled", "processed", len(records), "remaining", len(docs)-len(records))
			return records, err
		}
		record, err := b.processor.Process(doc)
		if err != nil {
			b.logger.Error("document failed", "file", doc.FileName, "error", err)
			record = NewErrorRecord(doc.ID, doc.FileName, err.Error())
		}
		records = append(records, record)
	}
	return records, nil
}
