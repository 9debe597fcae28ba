// Package media stores dream images and audio clips and produces the
// public URLs embedded in dream records.
package media

import (
	"context"
	"os"
	"path/filepath"
)

// Store is the object storage surface: write a blob under a path and get
// a public URL back, or delete it.
type Store interface {
	Upload(ctx context.Context, path string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
}

// DiskStore keeps blobs on the local filesystem, served under /media/.
type DiskStore struct {
	root string
}

// NewDiskStore creates a store rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{root: dir}
}

func (s *DiskStore) Upload(_ context.Context, path string, data []byte) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(abs, data, 0o600); err != nil {
		return "", err
	}
	return "/media/" + path, nil
}

func (s *DiskStore) Delete(_ context.Context, path string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(path)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
