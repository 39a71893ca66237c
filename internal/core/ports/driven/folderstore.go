package driven

import (
	"context"

	"github.com/l8testudy/drivevault/internal/core/domain"
)

// FolderStore persists registered remote folders.
type FolderStore interface {
	// Save stores or updates a folder record.
	Save(ctx context.Context, folder domain.RemoteFolder) error

	// Get retrieves a folder by record ID.
	Get(ctx context.Context, id string) (*domain.RemoteFolder, error)

	// GetByRemoteID retrieves a folder by (owner, remote folder id).
	GetByRemoteID(ctx context.Context, ownerID, remoteID string) (*domain.RemoteFolder, error)

	// ListEnabled returns all folders with syncing enabled.
	ListEnabled(ctx context.Context) ([]domain.RemoteFolder, error)

	// BeginSync transitions a folder to the syncing state. It must be
	// atomic: if the folder is already syncing it returns
	// domain.ErrSyncInProgress and leaves the record untouched.
	BeginSync(ctx context.Context, id string) error

	// FinishSync records the outcome of a sync attempt: final status,
	// folder-level error message (empty if none), and the file count
	// seen in the remote listing.
	FinishSync(ctx context.Context, id string, status domain.SyncStatus, syncError string, fileCount int) error
}
