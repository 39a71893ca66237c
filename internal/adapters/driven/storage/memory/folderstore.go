// Package memory provides in-memory implementations of the engine's
// store ports. Used in tests and by hosts that embed the engine
// without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/ports/driven"
)

// Ensure FolderStore implements the interface.
var _ driven.FolderStore = (*FolderStore)(nil)

// FolderStore is an in-memory implementation of driven.FolderStore.
type FolderStore struct {
	mu      sync.Mutex
	folders map[string]domain.RemoteFolder
}

// NewFolderStore creates a new in-memory folder store.
func NewFolderStore() *FolderStore {
	return &FolderStore{folders: make(map[string]domain.RemoteFolder)}
}

// Save stores or updates a folder record.
func (s *FolderStore) Save(_ context.Context, folder domain.RemoteFolder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now
	s.folders[folder.ID] = folder
	return nil
}

// Get retrieves a folder by record ID.
func (s *FolderStore) Get(_ context.Context, id string) (*domain.RemoteFolder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &folder, nil
}

// GetByRemoteID retrieves a folder by (owner, remote folder id).
func (s *FolderStore) GetByRemoteID(_ context.Context, ownerID, remoteID string) (*domain.RemoteFolder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, folder := range s.folders {
		if folder.OwnerID == ownerID && folder.RemoteID == remoteID {
			f := folder
			return &f, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListEnabled returns all folders with syncing enabled.
func (s *FolderStore) ListEnabled(_ context.Context) ([]domain.RemoteFolder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var folders []domain.RemoteFolder
	for _, folder := range s.folders {
		if folder.SyncEnabled {
			folders = append(folders, folder)
		}
	}
	return folders, nil
}

// BeginSync transitions a folder to syncing, refusing re-entry.
func (s *FolderStore) BeginSync(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if folder.SyncStatus == domain.StatusSyncing {
		return domain.ErrSyncInProgress
	}

	folder.SyncStatus = domain.StatusSyncing
	folder.SyncError = ""
	folder.UpdatedAt = time.Now().UTC()
	s.folders[id] = folder
	return nil
}

// FinishSync records the outcome of a sync attempt.
func (s *FolderStore) FinishSync(_ context.Context, id string, status domain.SyncStatus, syncError string, fileCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[id]
	if !ok {
		return domain.ErrNotFound
	}

	now := time.Now().UTC()
	folder.SyncStatus = status
	folder.SyncError = syncError
	folder.LastSyncAt = now
	folder.FileCount = fileCount
	folder.UpdatedAt = now
	s.folders[id] = folder
	return nil
}
