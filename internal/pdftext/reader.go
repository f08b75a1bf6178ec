package pdftext

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ErrNoTextLayer is returned for documents whose pages carry no extractable
// text (typically pure image scans that were never OCRed).
var ErrNoTextLayer = errors.New("document has no extractable text")

// Reader produces the raw text blob for one source document. Implementations
// may fail per document; callers surface that as the record error variant,
// never as a batch failure.
type Reader interface {
	ExtractText(data []byte, fileName string) (string, error)
}

// FitzReader reads the text layer of PDF documents. Plain-text files pass
// through unchanged. The underlying document handle is opened and torn down
// within each call, never held across documents.
type FitzReader struct{}

// NewFitzReader returns a stateless PDF text reader.
func NewFitzReader() *FitzReader {
	return &FitzReader{}
}

// ExtractText returns the document's text, pages joined with blank lines.
func (r *FitzReader) ExtractText(data []byte, fileName string) (string, error) {
	if strings.EqualFold(filepath.Ext(fileName), ".txt") {
		return string(data), nil
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("opening document: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", n+1, err)
		}
		pages = append(pages, text)
	}

	joined := strings.Join(pages, "\n\n")
	if strings.TrimSpace(joined) == "" {
		return "", ErrNoTextLayer
	}
	return joined, nil
}
