package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	appexport "github.com/storefront/backend/internal/application/export"
)

var _ appexport.SnapshotSink = (*FileSnapshotSink)(nil)

// FileSnapshotSink writes snapshots into a local directory.
// A snapshot appears under its final name only once fully written.
type FileSnapshotSink struct {
	dir string
}

// NewFileSnapshotSink creates the directory if needed
func NewFileSnapshotSink(dir string) (*FileSnapshotSink, error) {
	if dir == "" {
		return nil, errors.New("snapshot directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileSnapshotSink{dir: dir}, nil
}

// Put writes body to dir/name
func (s *FileSnapshotSink) Put(ctx context.Context, name string, body io.Reader, _ int64) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	final := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("failed to publish snapshot: %w", err)
	}
	return final, nil
}
