package domain

import "time"

// SyncStatus is the lifecycle state of a folder's sync attempt.
type SyncStatus string

const (
	// StatusPending means the folder has been registered but never synced.
	StatusPending SyncStatus = "pending"

	// StatusSyncing means a sync is currently in flight.
	// A folder in this state must not be started again.
	StatusSyncing SyncStatus = "syncing"

	// StatusCompleted means the last sync attempt finished.
	StatusCompleted SyncStatus = "completed"

	// StatusError means the last sync attempt failed at the folder level.
	StatusError SyncStatus = "error"
)

// RemoteFolder identifies a remote container registered for syncing.
// It is created when a user links a remote folder and mutated by the
// orchestrator on every sync attempt. Deletion is an explicit user
// action, never automatic.
type RemoteFolder struct {
	// ID is the unique identifier for the folder record.
	ID string

	// RemoteID is the opaque, source-defined folder identifier.
	RemoteID string

	// Name is the folder's display name as reported by the remote source.
	Name string

	// OwnerID references the user who linked the folder.
	OwnerID string

	// GroupID references the owning group (school class), used as the
	// middle subject-mapping scope. Empty if the owner has no group.
	GroupID string

	// DefaultSubjectID is the optional category default. When set, every
	// file in the folder is assigned this subject without consulting the
	// mapper.
	DefaultSubjectID string

	// Privacy is the visibility scope chosen at registration.
	Privacy string

	// SyncEnabled gates whether the folder participates in sync sweeps.
	SyncEnabled bool

	// SyncStatus is the current lifecycle state.
	SyncStatus SyncStatus

	// SyncError holds the last folder-level error message, empty if none.
	SyncError string

	// LastSyncAt is when the last sync attempt finished.
	LastSyncAt time.Time

	// FileCount is the number of remote files seen on the last sync.
	FileCount int

	// CreatedAt is when the folder was registered.
	CreatedAt time.Time

	// UpdatedAt is when the folder record was last modified.
	UpdatedAt time.Time
}

// FolderRegistration carries the inputs for linking a new remote folder.
type FolderRegistration struct {
	OwnerID          string
	GroupID          string
	RemoteID         string
	Privacy          string
	DefaultSubjectID string
}
