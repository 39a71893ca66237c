// Package fs stores at-rest ciphertext blobs on the local filesystem.
// Each key maps deterministically to {key}.enc under the storage root,
// so re-syncing a file overwrites its previous ciphertext in place.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/l8testudy/drivevault/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore writes ciphertext blobs under a storage root directory.
type BlobStore struct {
	root string
}

// NewBlobStore creates a blob store rooted at dir, creating the
// directory if missing.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &BlobStore{root: dir}, nil
}

// Write stores data under the key, replacing any previous blob, and
// returns the storage location. The write goes through a temp file and
// rename so a crash never leaves a half-written blob at the final path.
func (s *BlobStore) Write(_ context.Context, key string, data []byte) (string, error) {
	path := s.path(key)

	tmp, err := os.CreateTemp(s.root, ".blob-*")
	if err != nil {
		return "", fmt.Errorf("creating temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing blob: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return "", fmt.Errorf("chmod blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("placing blob: %w", err)
	}

	return path, nil
}

// Read returns the blob stored under the key.
func (s *BlobStore) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", key, err)
	}
	return data, nil
}

// Remove deletes the blob stored under the key.
func (s *BlobStore) Remove(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing blob %s: %w", key, err)
	}
	return nil
}

func (s *BlobStore) path(key string) string {
	// Keys are opaque remote file IDs; Base strips any path separators
	// a hostile source could smuggle in.
	return filepath.Join(s.root, filepath.Base(key)+".enc")
}
