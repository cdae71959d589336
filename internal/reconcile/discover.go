package reconcile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions recognized during discovery, compared case-insensitively.
const (
	DocumentExt  = ".xml"
	CompanionExt = ".pdf"
)

// Listing is the result of scanning one directory level.
type Listing struct {
	Documents  []string
	Companions []string
}

// Discover lists the CFDI candidates and companion files directly inside dir,
// sorted by name. Sub-directories are not descended into.
func Discover(dir string) (*Listing, error) {
	const op = "discover"

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, WrapFileSystemError(op, dir, "", ErrDirectoryNotFound)
		}
		return nil, WrapFileSystemError(op, dir, "", err)
	}
	if !info.IsDir() {
		return nil, WrapFileSystemError(op, dir, "", ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, WrapFileSystemError(op, dir, "", err)
	}

	listing := &Listing{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case DocumentExt:
			listing.Documents = append(listing.Documents, name)
		case CompanionExt:
			listing.Companions = append(listing.Companions, name)
		}
	}

	sort.Strings(listing.Documents)
	sort.Strings(listing.Companions)
	return listing, nil
}

// baseName strips the extension from a file name.
func baseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
