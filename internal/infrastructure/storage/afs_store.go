// Package storage implements the installer's file access on top of afs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	afsfile "github.com/viant/afs/file"

	"showip.dev/cli/internal/application/ports"
)

// AFSStore reads and writes files through an afs service, so paths may be
// plain filesystem paths or afs URLs (file://, mem://).
type AFSStore struct {
	fs afs.Service
}

// NewAFSStore creates a store backed by the default afs service
func NewAFSStore() *AFSStore {
	return &AFSStore{fs: afs.New()}
}

// Exists reports whether path exists
func (s *AFSStore) Exists(ctx context.Context, path string) (bool, error) {
	ok, err := s.fs.Exists(ctx, location(path))
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	return ok, nil
}

// Read returns the content of path
func (s *AFSStore) Read(ctx context.Context, path string) ([]byte, error) {
	rc, err := s.fs.OpenURL(ctx, location(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces path with data, creating the parent directory when missing
func (s *AFSStore) Write(ctx context.Context, path string, data []byte, mode os.FileMode) error {
	url := location(path)
	parent, _ := splitParent(url)
	if parent != "" {
		exists, err := s.fs.Exists(ctx, parent)
		if err != nil {
			return fmt.Errorf("failed to check directory %s: %w", parent, err)
		}
		if !exists {
			if err := s.fs.Create(ctx, parent, afsfile.DefaultDirOsMode, true); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", parent, err)
			}
		}
	}

	if err := s.fs.Upload(ctx, url, mode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Copy copies src to dst with the default file mode
func (s *AFSStore) Copy(ctx context.Context, src, dst string) error {
	data, err := s.Read(ctx, src)
	if err != nil {
		return err
	}
	return s.Write(ctx, dst, data, afsfile.DefaultFileOsMode)
}

// Delete removes path
func (s *AFSStore) Delete(ctx context.Context, path string) error {
	if err := s.fs.Delete(ctx, location(path)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// FirstExisting returns the first candidate that exists
func (s *AFSStore) FirstExisting(ctx context.Context, candidates []string) (string, bool, error) {
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		ok, err := s.Exists(ctx, candidate)
		if err != nil {
			return "", false, err
		}
		if ok {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

// location turns relative filesystem paths into absolute ones; URLs pass through.
func location(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func splitParent(url string) (string, string) {
	i := strings.LastIndex(url, "/")
	if i <= 0 {
		return "", url
	}
	parent := url[:i]
	if strings.HasSuffix(parent, ":/") || strings.HasSuffix(parent, ":") {
		return "", url
	}
	return parent, url[i+1:]
}

var _ ports.Storage = (*AFSStore)(nil)
