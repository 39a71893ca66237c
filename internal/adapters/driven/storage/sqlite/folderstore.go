package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/ports/driven"
)

// folderStore implements driven.FolderStore.
type folderStore struct {
	store *Store
}

var _ driven.FolderStore = (*folderStore)(nil)

const folderColumns = `id, remote_id, name, owner_id, group_id, default_subject_id,
	privacy, sync_enabled, sync_status, sync_error, last_sync_at, file_count,
	created_at, updated_at`

// Save stores or updates a folder record.
func (s *folderStore) Save(ctx context.Context, folder domain.RemoteFolder) error {
	now := time.Now().UTC()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO folders (`+folderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			remote_id = excluded.remote_id,
			name = excluded.name,
			owner_id = excluded.owner_id,
			group_id = excluded.group_id,
			default_subject_id = excluded.default_subject_id,
			privacy = excluded.privacy,
			sync_enabled = excluded.sync_enabled,
			sync_status = excluded.sync_status,
			sync_error = excluded.sync_error,
			last_sync_at = excluded.last_sync_at,
			file_count = excluded.file_count,
			updated_at = excluded.updated_at
	`, folder.ID, folder.RemoteID, folder.Name, folder.OwnerID, folder.GroupID,
		folder.DefaultSubjectID, folder.Privacy, folder.SyncEnabled,
		string(folder.SyncStatus), folder.SyncError, nullTime(folder.LastSyncAt),
		folder.FileCount, folder.CreatedAt, folder.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving folder: %w", err)
	}
	return nil
}

// Get retrieves a folder by record ID.
func (s *folderStore) Get(ctx context.Context, id string) (*domain.RemoteFolder, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE id = ?`, id)
	return scanFolder(row)
}

// GetByRemoteID retrieves a folder by (owner, remote folder id).
func (s *folderStore) GetByRemoteID(ctx context.Context, ownerID, remoteID string) (*domain.RemoteFolder, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE owner_id = ? AND remote_id = ?`,
		ownerID, remoteID)
	return scanFolder(row)
}

// ListEnabled returns all folders with syncing enabled.
func (s *folderStore) ListEnabled(ctx context.Context) ([]domain.RemoteFolder, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE sync_enabled = 1 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying folders: %w", err)
	}
	defer rows.Close()

	var folders []domain.RemoteFolder //nolint:prealloc // size unknown from query
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating folders: %w", err)
	}
	return folders, nil
}

// BeginSync transitions a folder to syncing with a compare-and-set so
// two concurrent attempts cannot both enter.
func (s *folderStore) BeginSync(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE folders SET sync_status = ?, sync_error = '', updated_at = ?
		WHERE id = ? AND sync_status != ?
	`, string(domain.StatusSyncing), time.Now().UTC(), id, string(domain.StatusSyncing))
	if err != nil {
		return fmt.Errorf("starting sync: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("starting sync: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// No row changed: the folder is either missing or already syncing.
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return domain.ErrSyncInProgress
}

// FinishSync records the outcome of a sync attempt.
func (s *folderStore) FinishSync(ctx context.Context, id string, status domain.SyncStatus, syncError string, fileCount int) error {
	now := time.Now().UTC()
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE folders SET sync_status = ?, sync_error = ?, last_sync_at = ?,
			file_count = ?, updated_at = ?
		WHERE id = ?
	`, string(status), syncError, now, fileCount, now, id)
	if err != nil {
		return fmt.Errorf("finishing sync: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing sync: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanFolder reads a folder from a row scanner.
func scanFolder(row interface{ Scan(...any) error }) (*domain.RemoteFolder, error) {
	var folder domain.RemoteFolder
	var status string
	var lastSync sql.NullTime

	err := row.Scan(&folder.ID, &folder.RemoteID, &folder.Name, &folder.OwnerID,
		&folder.GroupID, &folder.DefaultSubjectID, &folder.Privacy,
		&folder.SyncEnabled, &status, &folder.SyncError, &lastSync,
		&folder.FileCount, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning folder: %w", err)
	}

	folder.SyncStatus = domain.SyncStatus(status)
	if lastSync.Valid {
		folder.LastSyncAt = lastSync.Time
	}
	return &folder, nil
}

// nullTime maps the zero time to NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
