package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
)

var _ dashboard.SnapshotArchive = (*LocalArchive)(nil)

// LocalArchive stores snapshots as files below a root directory.
// Use this for development or single node deployments.
type LocalArchive struct {
	root string
}

// NewLocalArchive creates a LocalArchive rooted at dir, creating it if needed
func NewLocalArchive(dir string) (*LocalArchive, error) {
	if dir == "" {
		return nil, errors.New("storage local path is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalArchive{root: dir}, nil
}

// Put writes data to the file for key, replacing any previous content
func (l *LocalArchive) Put(ctx context.Context, key string, data []byte) error {
	path, err := l.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write snapshot %s: %w", key, err)
	}
	return nil
}

// Get reads the file for key
func (l *LocalArchive) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := l.path(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, shared.ErrNotFound.WithCause(err)
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	return data, nil
}

// Root returns the archive directory
func (l *LocalArchive) Root() string {
	return l.root
}

// path maps a slash separated key below root, rejecting keys that escape it
func (l *LocalArchive) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	if !filepath.IsLocal(filepath.FromSlash(key)) || strings.Contains(key, "\\") {
		return "", shared.ErrInvalidInput.WithCause(fmt.Errorf("invalid storage key %q", key))
	}
	return filepath.Join(l.root, filepath.FromSlash(key)), nil
}
