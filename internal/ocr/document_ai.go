package ocr

import (
	"context"
	"fmt"
	"os"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/ramsesmoreno/cfdi-summary/internal/logger"
)

// DocumentAIConfig identifies the OCR processor.
type DocumentAIConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
	Timeout     time.Duration
}

// ProcessorName returns the full resource name of the processor.
func (c DocumentAIConfig) ProcessorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}

// DocumentAIExtractor recognizes text with a Document AI OCR processor.
type DocumentAIExtractor struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIExtractor creates a processor client for cfg.
func NewDocumentAIExtractor(ctx context.Context, cfg DocumentAIConfig) (*DocumentAIExtractor, error) {
	const op = "NewDocumentAIExtractor"

	if cfg.ProjectID == "" {
		return nil, WrapOCRError(op, ErrInvalidConfiguration, "GOOGLE_CLOUD_PROJECT is required")
	}
	if cfg.ProcessorID == "" {
		return nil, WrapOCRError(op, ErrInvalidConfiguration, "DOCUMENT_AI_PROCESSOR_ID is required")
	}
	if cfg.Location == "" {
		cfg.Location = "us"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	var clientOptions []option.ClientOption
	if cfg.Location != "us" {
		clientOptions = append(clientOptions, option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, WrapOCRError(op, ErrMissingCredentials, fmt.Sprintf("failed to create Document AI client for location %s: %v", cfg.Location, err))
	}

	return &DocumentAIExtractor{
		client: client,
		config: cfg,
		log:    logger.WithComponent("document-ai"),
	}, nil
}

// ExtractPages processes the PDF and returns the detected lines per page.
func (d *DocumentAIExtractor) ExtractPages(ctx context.Context, path string) ([][]string, error) {
	const op = "ExtractPages"

	pdfBytes, err := readPDF(op, path)
	if err != nil {
		return nil, err
	}

	processCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	resp, err := d.client.ProcessDocument(processCtx, &documentaipb.ProcessRequest{
		Name: d.config.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdfBytes,
				MimeType: "application/pdf",
			},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Document AI error: %v", err))
	}
	if resp.Document == nil {
		return nil, WrapOCRError(op, ErrOCRFailed, "no document in response")
	}

	pages := documentPages(resp.Document)
	d.log.Debug().Str("file", path).Int("pages", len(pages)).Msg("Recognized text")
	return pages, nil
}

// documentPages resolves each page's lines through their text anchors.
func documentPages(doc *documentaipb.Document) [][]string {
	text := []rune(doc.GetText())
	pages := make([][]string, 0, len(doc.GetPages()))

	for _, page := range doc.GetPages() {
		var lines []string
		for _, line := range page.GetLines() {
			if s := anchorText(text, line.GetLayout().GetTextAnchor()); s != "" {
				lines = append(lines, splitLines(s)...)
			}
		}
		pages = append(pages, lines)
	}
	return pages
}

func anchorText(text []rune, anchor *documentaipb.Document_TextAnchor) string {
	var out []rune
	for _, seg := range anchor.GetTextSegments() {
		start, end := seg.GetStartIndex(), seg.GetEndIndex()
		if start < 0 || end > int64(len(text)) || start >= end {
			continue
		}
		out = append(out, text[start:end]...)
	}
	return string(out)
}

// Close closes the underlying Document AI client.
func (d *DocumentAIExtractor) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
