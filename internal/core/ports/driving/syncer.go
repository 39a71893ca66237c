package driving

import (
	"context"

	"github.com/l8testudy/drivevault/internal/core/domain"
)

// Syncer exposes the sync engine to the host.
type Syncer interface {
	// SyncAll syncs every enabled folder and returns a single structured
	// report. One folder's total failure never aborts the sweep.
	SyncAll(ctx context.Context) (*domain.BatchReport, error)

	// SyncFolder syncs one folder by record ID. Fails with
	// domain.ErrFolderNotFound, domain.ErrSyncDisabled or
	// domain.ErrSyncInProgress when preconditions are unmet.
	SyncFolder(ctx context.Context, folderID string) (*domain.FolderReport, error)

	// RegisterFolder links a new remote folder after verifying access.
	// Fails with domain.ErrAccessVerification if the source denies
	// access, domain.ErrAlreadyExists on duplicate registration.
	RegisterFolder(ctx context.Context, reg domain.FolderRegistration) (*domain.RemoteFolder, error)

	// WarmCache pre-fetches small files of a folder into the remote
	// source's content cache ahead of a sync.
	WarmCache(ctx context.Context, folderID string) error

	// OpenFile decrypts a synced file's at-rest blob and returns the
	// plaintext. Fails with domain.ErrNotFound for unknown files; a blob
	// that does not authenticate surfaces the cipher's error unchanged.
	OpenFile(ctx context.Context, fileID string) ([]byte, error)
}
