package memory

import (
	"context"
	"sync"
	"time"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore is an in-memory implementation of driven.FileStore.
type FileStore struct {
	mu       sync.Mutex
	folders  *FolderStore
	files    map[string]domain.SyncedFile       // keyed by record ID
	contents map[string]domain.ExtractedContent // keyed by file record ID
}

// NewFileStore creates a new in-memory file store. Folder names in
// listings are resolved through folders; nil leaves them empty.
func NewFileStore(folders *FolderStore) *FileStore {
	return &FileStore{
		folders:  folders,
		files:    make(map[string]domain.SyncedFile),
		contents: make(map[string]domain.ExtractedContent),
	}
}

// Get retrieves a file by record ID.
func (s *FileStore) Get(_ context.Context, id string) (*domain.SyncedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &file, nil
}

// GetByRemoteID retrieves a file by (folder record id, remote file id).
func (s *FileStore) GetByRemoteID(_ context.Context, folderID, remoteID string) (*domain.SyncedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, file := range s.files {
		if file.FolderID == folderID && file.RemoteID == remoteID {
			f := file
			return &f, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Upsert stores or replaces a file record and its content atomically.
func (s *FileStore) Upsert(_ context.Context, file *domain.SyncedFile, content *domain.ExtractedContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	file.UpdatedAt = now

	s.files[file.ID] = *file
	if content != nil {
		c := *content
		c.FileID = file.ID
		s.contents[file.ID] = c
	}
	return nil
}

// ListByFolder returns all tracked files for a folder, with the folder
// display name denormalised onto each record.
func (s *FileStore) ListByFolder(ctx context.Context, folderID string) ([]domain.SyncedFile, error) {
	folderName := ""
	if s.folders != nil {
		if folder, err := s.folders.Get(ctx, folderID); err == nil {
			folderName = folder.Name
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var files []domain.SyncedFile
	for _, file := range s.files {
		if file.FolderID == folderID {
			file.FolderName = folderName
			files = append(files, file)
		}
	}
	return files, nil
}

// GetContent retrieves the extracted content for a file.
func (s *FileStore) GetContent(_ context.Context, fileID string) (*domain.ExtractedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, ok := s.contents[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &content, nil
}
