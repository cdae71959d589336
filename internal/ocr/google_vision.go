package ocr

import (
	"context"
	"fmt"
	"os"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/ramsesmoreno/cfdi-summary/internal/logger"
)

// VisionExtractor recognizes text in PDFs with Google Cloud Vision.
type VisionExtractor struct {
	client *vision.ImageAnnotatorClient
	log    zerolog.Logger
}

// NewVisionExtractor creates a Vision client with credentials from the environment.
func NewVisionExtractor(ctx context.Context) (*VisionExtractor, error) {
	const op = "NewVisionExtractor"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return NewVisionExtractorWithClient(client), nil
}

// NewVisionExtractorWithClient creates an extractor with an explicit client.
func NewVisionExtractorWithClient(client *vision.ImageAnnotatorClient) *VisionExtractor {
	return &VisionExtractor{
		client: client,
		log:    logger.WithComponent("vision"),
	}
}

// ExtractPages sends the PDF inline and returns the recognized lines per page.
func (v *VisionExtractor) ExtractPages(ctx context.Context, path string) ([][]string, error) {
	const op = "ExtractPages"

	pdfBytes, err := readPDF(op, path)
	if err != nil {
		return nil, err
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  pdfBytes,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	pages, err := visionPages(resp.Responses[0])
	if err != nil {
		return nil, WrapOCRError(op, err, path)
	}

	v.log.Debug().Str("file", path).Int("pages", len(pages)).Msg("Recognized text")
	return pages, nil
}

// visionPages converts one file response to page lines.
func visionPages(fileResp *visionpb.AnnotateFileResponse) ([][]string, error) {
	if fileResp.Error != nil {
		return nil, fmt.Errorf("%w: Vision API error: %s", ErrOCRFailed, fileResp.Error.Message)
	}
	if len(fileResp.Responses) == 0 {
		return nil, ErrEmptyDocument
	}

	pages := make([][]string, 0, len(fileResp.Responses))
	for i, page := range fileResp.Responses {
		if page.Error != nil {
			return nil, fmt.Errorf("%w: page %d: %s", ErrOCRFailed, i+1, page.Error.Message)
		}
		if page.FullTextAnnotation == nil {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, splitLines(page.FullTextAnnotation.Text))
	}
	return pages, nil
}

// Close closes the underlying Vision client.
func (v *VisionExtractor) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
