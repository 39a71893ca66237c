package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrFolderNotFound indicates the folder reference is unknown to the
	// persisted store.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrSyncDisabled indicates the folder's sync-enabled flag is off.
	ErrSyncDisabled = errors.New("folder sync disabled")

	// ErrSyncInProgress indicates a sync for the folder is already
	// running. The status field gates re-entry.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrAccessVerification indicates the remote source denied access to
	// the folder being registered.
	ErrAccessVerification = errors.New("remote folder access verification failed")

	// ErrRemoteAccess indicates a remote listing or fetch failed after
	// exhausting retries.
	ErrRemoteAccess = errors.New("remote access failed")

	// ErrConfiguration indicates missing or invalid configuration,
	// typically key material. Fatal: no sync may start without it.
	ErrConfiguration = errors.New("invalid configuration")
)
