package driven

import (
	"context"
	"io"

	"github.com/l8testudy/drivevault/internal/core/domain"
)

// RemoteSource abstracts the vendor's content API: list files under a
// folder, fetch file bytes, fetch a folder name, verify access.
// Implementations handle pagination, rate limiting and bounded retry of
// transient errors internally; an error returned from ListChildren or
// FetchFile means retries are exhausted.
type RemoteSource interface {
	// ListChildren returns the file descriptors directly under a remote
	// folder, in the order the source reports them.
	ListChildren(ctx context.Context, folderID string) ([]domain.RemoteFile, error)

	// FetchFile streams a file's bytes into w and returns the byte count.
	FetchFile(ctx context.Context, fileID string, w io.Writer) (int64, error)

	// FolderName returns a remote folder's display name.
	FolderName(ctx context.Context, folderID string) (string, error)

	// VerifyAccess reports whether the configured credentials can read
	// the given folder.
	VerifyAccess(ctx context.Context, folderID string) bool

	// Prefetch warms the source's content cache with files under the
	// folder no larger than maxSize bytes. Optional optimisation; safe
	// to skip.
	Prefetch(ctx context.Context, folderID string, maxSize int64) error
}
