package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"github.com/ramsesmoreno/cfdi-summary/internal/logger"
)

// PDFTextExtractor reads the text layer embedded in a PDF. Scanned documents
// without a text layer yield empty pages.
type PDFTextExtractor struct {
	log zerolog.Logger
}

// NewPDFTextExtractor creates a local extractor.
func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{log: logger.WithComponent("pdf-text")}
}

// ExtractPages returns one entry per page with the page's text rows.
func (p *PDFTextExtractor) ExtractPages(ctx context.Context, path string) (pages [][]string, err error) {
	const op = "ExtractPages"

	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = NewOCRError(op, ErrInvalidPDF, fmt.Sprintf("%s: %v", path, r))
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, NewOCRError(op, ErrInvalidPDF, fmt.Sprintf("%s: %v", path, err))
	}
	defer f.Close()

	total := r.NumPage()
	if total == 0 {
		return nil, NewOCRError(op, ErrEmptyDocument, path)
	}

	pages = make([][]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, WrapOCRError(op, err, fmt.Sprintf("page %d", i))
		}

		var lines []string
		for _, row := range rows {
			var b strings.Builder
			for _, word := range row.Content {
				b.WriteString(word.S)
			}
			if line := strings.TrimSpace(b.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, lines)
	}

	p.log.Debug().Str("file", path).Int("pages", len(pages)).Msg("Extracted embedded text")
	return pages, nil
}

// Close releases nothing; files are closed after each extraction.
func (p *PDFTextExtractor) Close() error {
	return nil
}
