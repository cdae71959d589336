package reconcile

import (
	"errors"
	"fmt"
)

// Fatal filesystem conditions. They abort the run; files already moved stay where they are.
var (
	// ErrDirectoryNotFound is returned when the scanned directory does not exist.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrNotDirectory is returned when the scanned path is not a directory.
	ErrNotDirectory = errors.New("path is not a directory")

	// ErrDestinationExists is returned instead of overwriting a file during reorganization.
	ErrDestinationExists = errors.New("destination file already exists")

	// ErrSourceMissing is returned when a file disappears between discovery and rename.
	ErrSourceMissing = errors.New("source file no longer exists")
)

// FileSystemError describes a fatal filesystem failure.
type FileSystemError struct {
	// Op is the filesystem operation that failed (e.g., "discover", "read", "rename").
	Op string

	// Path is the file or directory the operation acted on.
	Path string

	// Target is the rename destination, empty for other operations.
	Target string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FileSystemError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("reconcile: %s %s -> %s: %v", e.Op, e.Path, e.Target, e.Err)
	}
	return fmt.Sprintf("reconcile: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *FileSystemError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *FileSystemError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapFileSystemError wraps err as a FileSystemError if it isn't already one.
func WrapFileSystemError(op, path, target string, err error) error {
	if err == nil {
		return nil
	}

	var fsErr *FileSystemError
	if errors.As(err, &fsErr) {
		return err
	}

	return &FileSystemError{Op: op, Path: path, Target: target, Err: err}
}
