// Package companion locates PDF renditions of CFDI documents by stamp identifier.
//
// An Index is built in two passes over the companion files of a directory:
// file names first, then the text extracted from each file. A key found in a
// file name is never replaced by a content match.
package companion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/ramsesmoreno/cfdi-summary/internal/logger"
	"github.com/ramsesmoreno/cfdi-summary/pkg/services"
)

// identifierPattern matches the 8-4-4-4-12 hexadecimal shape of a stamp UUID.
var identifierPattern = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// ErrNoExtractor is returned by Build when companion files are given without a
// page-text extractor.
var ErrNoExtractor = errors.New("no page-text extractor configured")

// Index maps canonical stamp identifiers to companion file names.
// It is read-only once built.
type Index struct {
	entries map[string]string
}

// Build indexes the companion files named in names, all of them inside dir.
// Registration follows the order of names.
//
// Extraction failures for a single file are logged and the file is left out of
// the content pass. Context cancellation aborts the build.
func Build(ctx context.Context, dir string, names []string, extractor services.PageExtractor) (*Index, error) {
	const op = "Build"
	log := logger.WithComponent("companion")

	idx := &Index{entries: make(map[string]string, len(names))}

	for _, name := range names {
		if id := identifierPattern.FindString(name); id != "" {
			idx.entries[Normalize(id)] = name
		}
	}
	log.Debug().Int("files", len(names)).Int("identifiers", len(idx.entries)).Msg("Indexed companion file names")

	if len(names) == 0 {
		return idx, nil
	}
	if extractor == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoExtractor)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		pages, err := extractor.ExtractPages(ctx, filepath.Join(dir, name))
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%s: extract %s: %w", op, name, err)
			}
			log.Warn().Err(err).Str("file", name).Msg("Failed to extract companion text, skipping content match")
			continue
		}

		added := idx.registerContent(name, pages)
		log.Debug().Str("file", name).Int("pages", len(pages)).Int("new_identifiers", added).Msg("Indexed companion content")
	}

	return idx, nil
}

// registerContent adds every identifier found in pages that is not indexed yet.
func (idx *Index) registerContent(name string, pages [][]string) int {
	added := 0
	for _, lines := range pages {
		for _, line := range lines {
			for _, id := range identifierPattern.FindAllString(line, -1) {
				key := Normalize(id)
				if _, exists := idx.entries[key]; exists {
					continue
				}
				idx.entries[key] = name
				added++
			}
		}
	}
	return added
}

// Lookup returns the companion file name registered for id.
func (idx *Index) Lookup(id string) (string, bool) {
	if idx == nil || id == "" {
		return "", false
	}
	name, ok := idx.entries[Normalize(id)]
	return name, ok
}

// Len returns the number of indexed identifiers.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Entries returns a copy of the index.
func (idx *Index) Entries() map[string]string {
	out := make(map[string]string, idx.Len())
	if idx == nil {
		return out
	}
	for k, v := range idx.entries {
		out[k] = v
	}
	return out
}

// Normalize returns the canonical upper-case form of a stamp identifier.
func Normalize(id string) string {
	if parsed, err := uuid.Parse(id); err == nil {
		return strings.ToUpper(parsed.String())
	}
	return strings.ToUpper(strings.TrimSpace(id))
}
