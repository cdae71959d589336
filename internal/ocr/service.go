// Package ocr extracts page text from companion PDF files.
//
// Three backends implement services.PageExtractor:
//   - pdf: the embedded text layer, read locally with no network access
//   - vision: Google Cloud Vision document text detection, for scanned PDFs
//   - documentai: a Google Document AI OCR processor
//
// The cloud backends read credentials the usual way:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//
// Every backend returns pages in document order, each page as its text lines.
// Callers only scan the lines for stamp identifiers, so layout is not preserved.
package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ramsesmoreno/cfdi-summary/pkg/services"
)

// Backend names accepted by New.
const (
	BackendPDF        = "pdf"
	BackendVision     = "vision"
	BackendDocumentAI = "documentai"
)

// MaxFileSizeBytes is the largest file sent inline to a cloud backend (20MB).
const MaxFileSizeBytes = 20 * 1024 * 1024

// Extractor is a PageExtractor holding resources that must be released.
type Extractor interface {
	services.PageExtractor
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend     string
	ProjectID   string
	Location    string
	ProcessorID string
}

// New creates the extractor named by cfg.Backend. An empty name selects BackendPDF.
func New(ctx context.Context, cfg Config) (Extractor, error) {
	const op = "New"

	switch strings.ToLower(cfg.Backend) {
	case "", BackendPDF:
		return NewPDFTextExtractor(), nil
	case BackendVision:
		return NewVisionExtractor(ctx)
	case BackendDocumentAI:
		return NewDocumentAIExtractor(ctx, DocumentAIConfig{
			ProjectID:   cfg.ProjectID,
			Location:    cfg.Location,
			ProcessorID: cfg.ProcessorID,
		})
	default:
		return nil, NewOCRError(op, ErrUnknownBackend, cfg.Backend)
	}
}

// readPDF loads a file for inline upload, checking size and header.
func readPDF(op, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read PDF file")
	}
	if len(data) > MaxFileSizeBytes {
		return nil, WrapOCRError(op, ErrPDFTooLarge, fmt.Sprintf("file size: %d bytes", len(data)))
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		return nil, WrapOCRError(op, ErrInvalidPDF, "missing PDF header")
	}
	return data, nil
}

// splitLines breaks a block of recognized text into trimmed, non-empty lines.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
