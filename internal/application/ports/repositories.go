package ports

import (
	"context"
	"os"
)

// Storage defines the interface for reading and writing installation files
type Storage interface {
	// Exists reports whether a file or directory exists at path
	Exists(ctx context.Context, path string) (bool, error)

	// Read returns the whole content of the file at path
	Read(ctx context.Context, path string) ([]byte, error)

	// Write replaces the file at path, creating parent directories
	Write(ctx context.Context, path string, data []byte, mode os.FileMode) error

	// Copy copies the file at src to dst
	Copy(ctx context.Context, src, dst string) error

	// Delete removes the file at path
	Delete(ctx context.Context, path string) error

	// FirstExisting returns the first candidate that exists
	FirstExisting(ctx context.Context, candidates []string) (string, bool, error)
}
