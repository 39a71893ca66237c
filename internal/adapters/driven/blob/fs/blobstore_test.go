package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRemove(t *testing.T) {
	store, err := NewBlobStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)

	ctx := context.Background()

	path, err := store.Write(ctx, "file-1", []byte("ciphertext"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "file-1.enc"))

	got, err := store.Read(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertext"), got)

	require.NoError(t, store.Remove(ctx, "file-1"))
	_, err = store.Read(ctx, "file-1")
	assert.Error(t, err)

	// Removing a missing blob is not an error.
	assert.NoError(t, store.Remove(ctx, "file-1"))
}

func TestWriteOverwritesInPlace(t *testing.T) {
	store, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	first, err := store.Write(ctx, "file-1", []byte("v1"))
	require.NoError(t, err)
	second, err := store.Write(ctx, "file-1", []byte("v2"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	got, err := store.Read(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestKeyCannotEscapeRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "blobs")
	store, err := NewBlobStore(root)
	require.NoError(t, err)

	path, err := store.Write(context.Background(), "../evil", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "evil.enc"), path)
}

func TestBlobFileMode(t *testing.T) {
	store, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Write(context.Background(), "f", []byte("x"))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
