package companion

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ramsesmoreno/cfdi-summary/pkg/services"
)

const stampID = "F47AC10B-58CC-4372-A567-0E02B2C3D479"

// fakeExtractor serves canned pages keyed by file base name.
func fakeExtractor(pages map[string][][]string, failures map[string]error) services.PageExtractor {
	return services.PageExtractorFunc(func(ctx context.Context, path string) ([][]string, error) {
		name := filepath.Base(path)
		if err, ok := failures[name]; ok {
			return nil, err
		}
		return pages[name], nil
	})
}

func TestBuildFilenameWinsOverContent(t *testing.T) {
	names := []string{"scan-001.pdf", "factura_" + stampID + "_copia.pdf"}
	extractor := fakeExtractor(map[string][][]string{
		"scan-001.pdf": {{"Folio fiscal:", stampID}},
	}, nil)

	idx, err := Build(context.Background(), "/invoices", names, extractor)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got, ok := idx.Lookup(stampID)
	if !ok {
		t.Fatalf("Lookup(%s) found nothing", stampID)
	}
	if got != names[1] {
		t.Errorf("Lookup(%s) = %q, want filename match %q", stampID, got, names[1])
	}
}

func TestBuildContentPass(t *testing.T) {
	second := "0e7a1c2b-3d4e-4f5a-8b6c-7d8e9f0a1b2c"
	names := []string{"a.pdf", "b.pdf"}
	extractor := fakeExtractor(map[string][][]string{
		"a.pdf": {{"RFC emisor AAA010101AAA"}, {"UUID " + stampID + " y " + second}},
		"b.pdf": {{second}},
	}, nil)

	idx, err := Build(context.Background(), "dir", names, extractor)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}

	tests := []struct {
		id   string
		want string
	}{
		{stampID, "a.pdf"},
		{second, "a.pdf"},
		// lookups are case-insensitive
		{"f47ac10b-58cc-4372-a567-0e02b2c3d479", "a.pdf"},
	}
	for _, tt := range tests {
		if got, _ := idx.Lookup(tt.id); got != tt.want {
			t.Errorf("Lookup(%s) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestBuildLaterFilenameOverwrites(t *testing.T) {
	names := []string{stampID + ".pdf", "copy-" + stampID + ".pdf"}
	idx, err := Build(context.Background(), "dir", names, fakeExtractor(nil, nil))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got, _ := idx.Lookup(stampID); got != names[1] {
		t.Errorf("Lookup() = %q, want %q", got, names[1])
	}
}

func TestBuildSkipsFailedExtraction(t *testing.T) {
	names := []string{"broken.pdf", "good.pdf"}
	extractor := fakeExtractor(
		map[string][][]string{"good.pdf": {{stampID}}},
		map[string]error{"broken.pdf": errors.New("invalid pdf")},
	)

	idx, err := Build(context.Background(), "dir", names, extractor)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got, _ := idx.Lookup(stampID); got != "good.pdf" {
		t.Errorf("Lookup() = %q, want good.pdf", got)
	}
}

func TestBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, "dir", []string{"a.pdf"}, fakeExtractor(nil, nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Build() error = %v, want context.Canceled", err)
	}
}

func TestBuildWithoutExtractor(t *testing.T) {
	if _, err := Build(context.Background(), "dir", []string{"a.pdf"}, nil); !errors.Is(err, ErrNoExtractor) {
		t.Errorf("Build() error = %v, want ErrNoExtractor", err)
	}

	idx, err := Build(context.Background(), "dir", nil, nil)
	if err != nil || idx.Len() != 0 {
		t.Errorf("Build(empty) = %d entries, %v", idx.Len(), err)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"f47ac10b-58cc-4372-a567-0e02b2c3d479": stampID,
		stampID:                                stampID,
		" not-a-uuid ":                         "NOT-A-UUID",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLookupNilIndex(t *testing.T) {
	var idx *Index
	if _, ok := idx.Lookup(stampID); ok {
		t.Error("Lookup() on nil index reported a match")
	}
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
}
