package invoice

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"invoice-capture/internal/extract"
	"invoice-capture/internal/pdftext"
)

// IDGenerator generates unique IDs for documents
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// SupplierMatcher re-resolves a supplier code from a manually entered name,
// used when a reviewer overrides a match.
type SupplierMatcher interface {
	MatchName(name string) extract.SupplierMatch
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service drives the extraction pipeline for the review side: it sources
// document text, runs the engine, and holds the ordered records for the
// session. Records are immutable values; the review UI edits its own copies.
type Service struct {
	reader    pdftext.Reader
	processor extract.DocumentProcessor
	matcher   SupplierMatcher
	batch     *extract.Batch

	idGenerator IDGenerator
	timeSource  TimeSource

	mu      sync.Mutex
	records []extract.InvoiceRecord
}

// NewService creates a new Service with default ID generator and time source
func NewService(reader pdftext.Reader, processor extract.DocumentProcessor, matcher SupplierMatcher) *Service {
	return NewServiceWithDeps(reader, processor, matcher, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(reader pdftext.Reader, processor extract.DocumentProcessor, matcher SupplierMatcher, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		reader:      reader,
		processor:   processor,
		matcher:     matcher,
		batch:       extract.NewBatch(processor, slog.Default()),
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// ProcessUpload runs one uploaded document through the pipeline and records
// the result. Upstream text-extraction failure yields the error-variant
// record for this document, never a hard failure.
func (s *Service) ProcessUpload(fileName string, data []byte) extract.InvoiceRecord {
	id := s.idGenerator.Generate()

	text, err := s.reader.ExtractText(data, fileName)
	var record extract.InvoiceRecord
	if err != nil {
		slog.Error("Failed to extract document text",
			"filename", fileName,
			"file_size", len(data),
			"error", err,
		)
		record = extract.NewErrorRecord(id, fileName, err.Error())
	} else {
		record, err = s.processor.Process(extract.RawDocument{ID: id, FileName: fileName, Text: text})
		if err != nil {
			record = extract.NewErrorRecord(id, fileName, err.Error())
		}
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
	return record
}

// ProcessPaths sources every file and runs the batch over the extracted
// documents. Files that cannot be read or hold no text surface as error
// records in their input position. On cancellation the records produced so
// far are returned together with the context error; documents not yet
// started yield no record at all.
func (s *Service) ProcessPaths(ctx context.Context, paths []string) ([]extract.InvoiceRecord, error) {
	started := s.timeSource.Now()

	type sourced struct {
		doc     extract.RawDocument
		failure string
	}
	entries := make([]sourced, 0, len(paths))
	docs := make([]extract.RawDocument, 0, len(paths))
	for _, path := range paths {
		id := s.idGenerator.Generate()
		name := filepath.Base(path)

		data, err := os.ReadFile(path)
		var text string
		if err == nil {
			text, err = s.reader.ExtractText(data, name)
		}
		if err != nil {
			slog.Error("Failed to source document", "path", path, "error", err)
			entries = append(entries, sourced{doc: extract.RawDocument{ID: id, FileName: name}, failure: err.Error()})
			continue
		}

		doc := extract.RawDocument{ID: id, FileName: name, Text: text}
		entries = append(entries, sourced{doc: doc})
		docs = append(docs, doc)
	}

	processed, batchErr := s.batch.Process(ctx, docs)
	byID := make(map[string]extract.InvoiceRecord, len(processed))
	for _, r := range processed {
		byID[r.ID] = r
	}

	records := make([]extract.InvoiceRecord, 0, len(entries))
	for _, e := range entries {
		if e.failure != "" {
			records = append(records, extract.NewErrorRecord(e.doc.ID, e.doc.FileName, e.failure))
			continue
		}
		r, ok := byID[e.doc.ID]
		if !ok {
			// Cancelled before this document started.
			break
		}
		records = append(records, r)
	}

	s.mu.Lock()
	s.records = append(s.records, records...)
	s.mu.Unlock()

	slog.Info("Batch complete",
		"documents", len(paths),
		"records", len(records),
		"elapsed", s.timeSource.Now().Sub(started),
	)
	return records, batchErr
}

// Records returns a copy of all records in processing order.
func (s *Service) Records() []extract.InvoiceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]extract.InvoiceRecord, len(s.records))
	copy(out, s.records)
	return out
}

// MatchSupplier re-resolves a supplier from a manually entered name.
func (s *Service) MatchSupplier(name string) extract.SupplierMatch {
	return s.matcher.MatchName(name)
}

// ExportCSV writes all records to w as a flat tabular file.
func (s *Service) ExportCSV(w io.Writer) error {
	return WriteCSV(w, s.Records())
}
