package ocr

import (
	"errors"
	"fmt"
)

// Sentinels shared by the pdf, vision and documentai backends. Callers match
// them with errors.Is through an OCRError.
var (
	ErrPDFTooLarge          = errors.New("PDF file size exceeds the maximum limit (20MB)")
	ErrInvalidPDF           = errors.New("invalid or corrupted PDF document")
	ErrOCRFailed            = errors.New("OCR processing failed")
	ErrMissingCredentials   = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")
	ErrInvalidConfiguration = errors.New("invalid OCR configuration")
	ErrUnknownBackend       = errors.New("unknown extractor backend")
	ErrEmptyDocument        = errors.New("document contains no pages")
)

// OCRError reports which step of a companion-file extraction failed.
// Op is New, one of the backend constructors, or ExtractPages. Details
// names the file, page or setting involved.
type OCRError struct {
	Op      string
	Err     error
	Details string
}

func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is see the sentinel behind a backend failure.
func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewOCRError(op string, err error, details string) *OCRError {
	return &OCRError{Op: op, Err: err, Details: details}
}

// WrapOCRError keeps the innermost OCRError so the reported Op is the step
// that failed first, e.g. ExtractPages rather than the companion index build.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err
	}
	return NewOCRError(op, err, details)
}
