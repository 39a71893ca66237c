package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/ports/driven"
)

// fileStore implements driven.FileStore.
type fileStore struct {
	store *Store
}

var _ driven.FileStore = (*fileStore)(nil)

const fileColumns = `id, folder_id, remote_id, filename, content_digest, size,
	mime_type, blob_path, subject_id, auto_mapped, extraction_ok, created_at, updated_at`

// Get retrieves a file record by ID.
func (s *fileStore) Get(ctx context.Context, id string) (*domain.SyncedFile, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = ?`, id)
	return scanFile(row)
}

// GetByRemoteID retrieves a file record by (folder, remote file id).
func (s *fileStore) GetByRemoteID(ctx context.Context, folderID, remoteID string) (*domain.SyncedFile, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE folder_id = ? AND remote_id = ?`,
		folderID, remoteID)
	return scanFile(row)
}

// Upsert writes a file record and its extracted content in one transaction
// so a file row never exists without its content row.
func (s *fileStore) Upsert(ctx context.Context, file *domain.SyncedFile, content *domain.ExtractedContent) error {
	now := time.Now().UTC()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	file.UpdatedAt = now

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `
		INSERT INTO files (`+fileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(folder_id, remote_id) DO UPDATE SET
			filename = excluded.filename,
			content_digest = excluded.content_digest,
			size = excluded.size,
			mime_type = excluded.mime_type,
			blob_path = excluded.blob_path,
			subject_id = excluded.subject_id,
			auto_mapped = excluded.auto_mapped,
			extraction_ok = excluded.extraction_ok,
			updated_at = excluded.updated_at
	`, file.ID, file.FolderID, file.RemoteID, file.Filename, file.ContentDigest,
		file.Size, file.MIMEType, file.BlobPath, file.SubjectID, file.AutoMapped,
		file.ExtractionOK, file.CreatedAt, file.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting file: %w", err)
	}

	// The conflict target may have kept an older row id, so resolve the
	// canonical id before writing content.
	var fileID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM files WHERE folder_id = ? AND remote_id = ?`,
		file.FolderID, file.RemoteID).Scan(&fileID)
	if err != nil {
		return fmt.Errorf("resolving file id: %w", err)
	}

	if content != nil {
		if content.ExtractedAt.IsZero() {
			content.ExtractedAt = now
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO contents (file_id, text, page_count, extracted_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(file_id) DO UPDATE SET
				text = excluded.text,
				page_count = excluded.page_count,
				extracted_at = excluded.extracted_at
		`, fileID, content.Text, content.PageCount, content.ExtractedAt)
		if err != nil {
			return fmt.Errorf("upserting content: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// ListByFolder returns all files belonging to a folder.
func (s *fileStore) ListByFolder(ctx context.Context, folderID string) ([]domain.SyncedFile, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT f.id, f.folder_id, f.remote_id, f.filename, f.content_digest,
			f.size, f.mime_type, f.blob_path, f.subject_id, f.auto_mapped,
			f.extraction_ok, f.created_at, f.updated_at, d.name
		FROM files f
		JOIN folders d ON d.id = f.folder_id
		WHERE f.folder_id = ?
		ORDER BY f.filename
	`, folderID)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var files []domain.SyncedFile //nolint:prealloc // size unknown from query
	for rows.Next() {
		var file domain.SyncedFile
		err := rows.Scan(&file.ID, &file.FolderID, &file.RemoteID, &file.Filename,
			&file.ContentDigest, &file.Size, &file.MIMEType, &file.BlobPath,
			&file.SubjectID, &file.AutoMapped, &file.ExtractionOK,
			&file.CreatedAt, &file.UpdatedAt, &file.FolderName)
		if err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating files: %w", err)
	}
	return files, nil
}

// GetContent retrieves the extracted content for a file.
func (s *fileStore) GetContent(ctx context.Context, fileID string) (*domain.ExtractedContent, error) {
	var content domain.ExtractedContent
	err := s.store.db.QueryRowContext(ctx,
		`SELECT file_id, text, page_count, extracted_at FROM contents WHERE file_id = ?`,
		fileID).Scan(&content.FileID, &content.Text, &content.PageCount, &content.ExtractedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("querying content: %w", err)
	}
	return &content, nil
}

// scanFile reads a file record from a row scanner.
func scanFile(row interface{ Scan(...any) error }) (*domain.SyncedFile, error) {
	var file domain.SyncedFile
	err := row.Scan(&file.ID, &file.FolderID, &file.RemoteID, &file.Filename,
		&file.ContentDigest, &file.Size, &file.MIMEType, &file.BlobPath,
		&file.SubjectID, &file.AutoMapped, &file.ExtractionOK,
		&file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning file: %w", err)
	}
	return &file, nil
}
