package services

import (
	"context"
)

// PageExtractor defines the page-text extraction capability used to scan companion files
type PageExtractor interface {
	// ExtractPages returns the text of the file at path as ordered pages of ordered lines
	ExtractPages(ctx context.Context, path string) ([][]string, error)
}

// PageExtractorFunc adapts a function to the PageExtractor interface
type PageExtractorFunc func(ctx context.Context, path string) ([][]string, error)

// ExtractPages calls f(ctx, path)
func (f PageExtractorFunc) ExtractPages(ctx context.Context, path string) ([][]string, error) {
	return f(ctx, path)
}
