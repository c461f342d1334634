// Package storage defines the FileStore interface that generated videos are
// written to and served from. Backends are the local filesystem and S3 (or
// any S3-compatible object store); Resolve picks one from an output
// location such as "out/clip.mp4" or "s3://bucket/clips/clip.mp4".
package storage

import (
	"context"
	"io"
)

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading.
	// The caller must close the returned ReadCloser when done.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing, truncating it if present.
	// The caller must close the returned WriteCloser; data is only
	// guaranteed to be stored once Close returns nil.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}
