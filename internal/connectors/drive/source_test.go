package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/l8testudy/drivevault/internal/cache"
	"github.com/l8testudy/drivevault/internal/core/domain"
)

// newTestSource wires a Source against a local fake Drive endpoint.
func newTestSource(t *testing.T, handler http.Handler) *Source {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	return &Source{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Inf, 1),
		opts:    Options{MaxRetries: 2, BaseDelay: time.Millisecond},
		names:   cache.New[string, string](nameCacheSize, nameCacheTTL),
		content: cache.New[string, []byte](contentCacheSize, contentCacheTTL),
	}
}

func writeFileList(w http.ResponseWriter, list *drive.FileList) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list) //nolint:errcheck
}

func TestNewSource_RequiresCredentials(t *testing.T) {
	_, err := NewSource(context.Background(), nil, DefaultOptions())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestListChildren_PaginatesAndSkipsFolders(t *testing.T) {
	var pages atomic.Int64
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch pages.Add(1) {
		case 1:
			assert.Empty(t, r.URL.Query().Get("pageToken"))
			writeFileList(w, &drive.FileList{
				NextPageToken: "page-2",
				Files: []*drive.File{
					{Id: "f1", Name: "notes.pdf", MimeType: "application/pdf", Size: 2048,
						ModifiedTime: "2026-03-01T10:00:00Z", Md5Checksum: "abc"},
					{Id: "sub", Name: "Altklausuren", MimeType: MimeTypeFolder},
				},
			})
		default:
			assert.Equal(t, "page-2", r.URL.Query().Get("pageToken"))
			writeFileList(w, &drive.FileList{
				Files: []*drive.File{
					{Id: "f2", Name: "homework.txt", MimeType: "text/plain", Size: 64},
				},
			})
		}
	}))

	files, err := src.ListChildren(context.Background(), "folder-1")
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "f1", files[0].ID)
	assert.Equal(t, "notes.pdf", files[0].Name)
	assert.Equal(t, int64(2048), files[0].Size)
	assert.Equal(t, "abc", files[0].Checksum)
	assert.Equal(t, 2026, files[0].ModifiedAt.Year())
	assert.Equal(t, "f2", files[1].ID)
}

func TestListChildren_RemoteFailure(t *testing.T) {
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))

	_, err := src.ListChildren(context.Background(), "folder-1")
	assert.ErrorIs(t, err, domain.ErrRemoteAccess)
}

func TestFetchFile_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int64
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "backend hiccup", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "file body")
	}))

	var buf bytes.Buffer
	n, err := src.FetchFile(context.Background(), "f1", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("file body")), n)
	assert.Equal(t, "file body", buf.String())
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetchFile_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))

	var buf bytes.Buffer
	_, err := src.FetchFile(context.Background(), "f1", &buf)
	assert.ErrorIs(t, err, domain.ErrRemoteAccess)
	assert.EqualValues(t, 1, calls.Load())
}

func TestPrefetch_ServesLaterFetchesFromCache(t *testing.T) {
	var downloads atomic.Int64
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") == "media" {
			downloads.Add(1)
			fmt.Fprint(w, "cached body")
			return
		}
		writeFileList(w, &drive.FileList{
			Files: []*drive.File{
				{Id: "small", Name: "small.txt", MimeType: "text/plain", Size: 10},
				{Id: "big", Name: "big.bin", MimeType: "application/octet-stream", Size: 5000},
			},
		})
	}))

	require.NoError(t, src.Prefetch(context.Background(), "folder-1", 1024))
	assert.EqualValues(t, 1, downloads.Load())

	var buf bytes.Buffer
	_, err := src.FetchFile(context.Background(), "small", &buf)
	require.NoError(t, err)
	assert.Equal(t, "cached body", buf.String())
	assert.EqualValues(t, 1, downloads.Load())
}

func TestFolderName_Memoised(t *testing.T) {
	var calls atomic.Int64
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&drive.File{Name: "LK Physik"}) //nolint:errcheck
	}))

	for range 2 {
		name, err := src.FolderName(context.Background(), "folder-1")
		require.NoError(t, err)
		assert.Equal(t, "LK Physik", name)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestVerifyAccess(t *testing.T) {
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files/ok" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(&drive.File{Id: "ok"}) //nolint:errcheck
			return
		}
		http.Error(w, "not shared", http.StatusNotFound)
	}))

	assert.True(t, src.VerifyAccess(context.Background(), "ok"))
	assert.False(t, src.VerifyAccess(context.Background(), "denied"))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(&googleapi.Error{Code: 500}))
	assert.True(t, isTransient(&googleapi.Error{Code: 503}))
	assert.True(t, isTransient(&googleapi.Error{Code: 429}))
	assert.False(t, isTransient(&googleapi.Error{Code: 404}))
	assert.False(t, isTransient(errors.New("local failure")))
}
