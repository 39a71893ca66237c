package driven

import "context"

// BlobStore persists at-rest ciphertext blobs. The location for a given
// key is deterministic, so re-sync naturally overwrites in place; the
// record store stays authoritative for location lookup.
type BlobStore interface {
	// Write stores a blob under the given key, replacing any previous
	// blob for that key, and returns the storage location.
	Write(ctx context.Context, key string, data []byte) (string, error)

	// Read returns the blob stored under the key.
	Read(ctx context.Context, key string) ([]byte, error)

	// Remove deletes the blob stored under the key.
	Remove(ctx context.Context, key string) error
}
