package driven

import (
	"context"

	"github.com/l8testudy/drivevault/internal/core/domain"
)

// FileStore persists tracked files and their extracted text.
type FileStore interface {
	// Get retrieves a file by record ID.
	Get(ctx context.Context, id string) (*domain.SyncedFile, error)

	// GetByRemoteID retrieves a file by (folder record id, remote file id).
	GetByRemoteID(ctx context.Context, folderID, remoteID string) (*domain.SyncedFile, error)

	// Upsert stores or replaces a file record together with its
	// extracted content in one transaction. On update the content row
	// is replaced wholesale.
	Upsert(ctx context.Context, file *domain.SyncedFile, content *domain.ExtractedContent) error

	// ListByFolder returns all tracked files for a folder.
	ListByFolder(ctx context.Context, folderID string) ([]domain.SyncedFile, error)

	// GetContent retrieves the extracted content for a file.
	GetContent(ctx context.Context, fileID string) (*domain.ExtractedContent, error)
}
