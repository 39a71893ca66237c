// Package drive adapts the Google Drive v3 API to the engine's
// RemoteSource port. Listing is paginated, every call goes through a
// token-bucket rate limiter, and transient server errors are retried
// with bounded exponential backoff. Folder names and warm-up content
// are memoised in bounded caches.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/l8testudy/drivevault/internal/cache"
	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/ports/driven"
	"github.com/l8testudy/drivevault/internal/logger"
)

// Ensure Source implements the port.
var _ driven.RemoteSource = (*Source)(nil)

const (
	// MimeTypeFolder identifies Drive folders in listings.
	MimeTypeFolder = "application/vnd.google-apps.folder"

	listPageSize = 100
	listFields   = "nextPageToken, files(id, name, mimeType, size, modifiedTime, md5Checksum)"

	// Google allows 10 requests/sec/user; stay below it.
	requestsPerSecond = 8.0
	burstSize         = 10

	nameCacheSize    = 128
	nameCacheTTL     = 10 * time.Minute
	contentCacheSize = 64
	contentCacheTTL  = 5 * time.Minute
)

// Options bound the retry behaviour for transient remote errors.
type Options struct {
	// MaxRetries is the retry ceiling per call. Zero disables retries.
	MaxRetries uint64

	// BaseDelay is the first backoff interval; later attempts double it.
	BaseDelay time.Duration
}

// DefaultOptions are conservative: three retries starting at 500ms.
func DefaultOptions() Options {
	return Options{MaxRetries: 3, BaseDelay: 500 * time.Millisecond}
}

// Source is a read-only Google Drive client authenticated with service
// account credentials.
type Source struct {
	svc     *drive.Service
	limiter *rate.Limiter
	opts    Options

	names   *cache.Cache[string, string]
	content *cache.Cache[string, []byte]
}

// NewSource creates a Drive source from service account credentials
// JSON. Credentials are validated at construction; a misconfigured
// source fails here, not deep inside a sync run.
func NewSource(ctx context.Context, credentialsJSON []byte, opts Options) (*Source, error) {
	if len(credentialsJSON) == 0 {
		return nil, fmt.Errorf("%w: drive credentials not configured", domain.ErrConfiguration)
	}

	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating drive service: %v", domain.ErrConfiguration, err)
	}

	return &Source{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
		opts:    opts,
		names:   cache.New[string, string](nameCacheSize, nameCacheTTL),
		content: cache.New[string, []byte](contentCacheSize, contentCacheTTL),
	}, nil
}

// ListChildren returns the non-folder, non-trashed files directly under
// folderID, in the order Drive reports them.
func (s *Source) ListChildren(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	var files []domain.RemoteFile
	pageToken := ""
	for {
		var page *drive.FileList
		err := s.withRetry(ctx, "list children", func(ctx context.Context) error {
			var apiErr error
			page, apiErr = s.svc.Files.List().
				Q(query).
				PageSize(listPageSize).
				Fields(listFields).
				PageToken(pageToken).
				Context(ctx).
				Do()
			return apiErr
		})
		if err != nil {
			return nil, fmt.Errorf("%w: listing folder %s: %v", domain.ErrRemoteAccess, folderID, err)
		}

		for _, f := range page.Files {
			if f.MimeType == MimeTypeFolder {
				continue
			}
			files = append(files, toRemoteFile(f))
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return files, nil
}

// FetchFile streams a file's bytes into w. Warm-up cache hits are
// served without an API call.
func (s *Source) FetchFile(ctx context.Context, fileID string, w io.Writer) (int64, error) {
	if data, ok := s.content.Get(fileID); ok {
		logger.Debug("Serving %s from prefetch cache", fileID)
		n, err := w.Write(data)
		return int64(n), err
	}

	var n int64
	err := s.withRetry(ctx, "fetch file", func(ctx context.Context) error {
		resp, apiErr := s.svc.Files.Get(fileID).Context(ctx).Download()
		if apiErr != nil {
			return apiErr
		}
		defer resp.Body.Close()

		var copyErr error
		n, copyErr = io.Copy(w, resp.Body)
		return copyErr
	})
	if err != nil {
		return 0, fmt.Errorf("%w: fetching file %s: %v", domain.ErrRemoteAccess, fileID, err)
	}
	return n, nil
}

// FolderName returns a folder's display name, memoised.
func (s *Source) FolderName(ctx context.Context, folderID string) (string, error) {
	if name, ok := s.names.Get(folderID); ok {
		return name, nil
	}

	var name string
	err := s.withRetry(ctx, "folder name", func(ctx context.Context) error {
		f, apiErr := s.svc.Files.Get(folderID).Fields("name").Context(ctx).Do()
		if apiErr != nil {
			return apiErr
		}
		name = f.Name
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: folder name for %s: %v", domain.ErrRemoteAccess, folderID, err)
	}

	s.names.Put(folderID, name)
	return name, nil
}

// VerifyAccess reports whether the configured service account can read
// the folder.
func (s *Source) VerifyAccess(ctx context.Context, folderID string) bool {
	err := s.withRetry(ctx, "verify access", func(ctx context.Context) error {
		_, apiErr := s.svc.Files.Get(folderID).Fields("id").Context(ctx).Do()
		return apiErr
	})
	return err == nil
}

// Prefetch downloads files no larger than maxSize into the content
// cache. A prefetch failure for one file is logged and skipped; the
// warm-up pass is an optimisation only.
func (s *Source) Prefetch(ctx context.Context, folderID string, maxSize int64) error {
	files, err := s.ListChildren(ctx, folderID)
	if err != nil {
		return err
	}

	for _, f := range files {
		if f.Size > maxSize {
			logger.Debug("Prefetch skipping %s: %d bytes over limit", f.Name, f.Size)
			continue
		}

		var buf bytes.Buffer
		if _, err := s.FetchFile(ctx, f.ID, &buf); err != nil {
			logger.Warn("Prefetch of %s failed: %v", f.Name, err)
			continue
		}
		s.content.Put(f.ID, buf.Bytes())
	}
	return nil
}

// withRetry wraps an API call with rate limiting and bounded
// exponential backoff. Only transient server-side failures are
// retried; local errors never are.
func (s *Source) withRetry(ctx context.Context, op string, call func(context.Context) error) error {
	backoff := retry.WithMaxRetries(s.opts.MaxRetries, retry.NewExponential(s.opts.BaseDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		err := call(ctx)
		if err == nil {
			return nil
		}
		if isTransient(err) {
			logger.Debug("Transient error on %s, will retry: %v", op, err)
			return retry.RetryableError(err)
		}
		return err
	})
}

// isTransient reports whether an API error is worth retrying:
// server-side 5xx and rate-limit 429 responses.
func isTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500 || apiErr.Code == 429
	}
	return false
}

func toRemoteFile(f *drive.File) domain.RemoteFile {
	modified, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	return domain.RemoteFile{
		ID:         f.Id,
		Name:       f.Name,
		MIMEType:   f.MimeType,
		Size:       f.Size,
		ModifiedAt: modified,
		Checksum:   f.Md5Checksum,
	}
}
