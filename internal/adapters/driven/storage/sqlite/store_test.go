package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l8testudy/drivevault/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// createTestFolder saves a folder to satisfy foreign key constraints.
func createTestFolder(t *testing.T, store *Store, id string) {
	t.Helper()
	err := store.FolderStore().Save(context.Background(), domain.RemoteFolder{
		ID:          id,
		RemoteID:    "drive-" + id,
		Name:        "Folder " + id,
		OwnerID:     "user-1",
		SyncEnabled: true,
		SyncStatus:  domain.StatusPending,
	})
	require.NoError(t, err)
}

func createTestSubject(t *testing.T, store *Store, id, name, groupID string) {
	t.Helper()
	err := store.SubjectStore().Save(context.Background(), domain.Subject{
		ID: id, Name: name, GroupID: groupID,
	})
	require.NoError(t, err)
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "records.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	err = store.db.Ping()
	assert.NoError(t, err)
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "should have at least one migration")

	tables := []string{"folders", "files", "contents", "subjects", "subject_mappings"}
	for _, table := range tables {
		var exists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.Equal(t, 1, exists, "table %s should exist", table)
	}
}

func TestNewStore_MigrationIdempotency(t *testing.T) {
	tempDir := t.TempDir()

	store1, err := NewStore(tempDir)
	require.NoError(t, err)

	var count1 int
	err = store1.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count1)
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	// Reopening must not re-run migrations.
	store2, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store2.Close()

	var count2 int
	err = store2.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count2)
	require.NoError(t, err)
	assert.Equal(t, count1, count2)
}

func TestNewStore_ForeignKeysEnabled(t *testing.T) {
	store := setupTestStore(t)

	var fkEnabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	require.NoError(t, err)
	assert.Equal(t, 1, fkEnabled)
}

// ==================== FolderStore Tests ====================

func TestFolderStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	folders := store.FolderStore()

	folder := domain.RemoteFolder{
		ID:               "folder-1",
		RemoteID:         "drive-abc",
		Name:             "Physik LK",
		OwnerID:          "user-1",
		GroupID:          "group-1",
		DefaultSubjectID: "subj-physik",
		Privacy:          "private",
		SyncEnabled:      true,
		SyncStatus:       domain.StatusPending,
	}

	err := folders.Save(ctx, folder)
	require.NoError(t, err)

	retrieved, err := folders.Get(ctx, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, folder.RemoteID, retrieved.RemoteID)
	assert.Equal(t, folder.Name, retrieved.Name)
	assert.Equal(t, folder.DefaultSubjectID, retrieved.DefaultSubjectID)
	assert.Equal(t, domain.StatusPending, retrieved.SyncStatus)
	assert.True(t, retrieved.LastSyncAt.IsZero())
	assert.False(t, retrieved.CreatedAt.IsZero())
}

func TestFolderStore_Get_NotFound(t *testing.T) {
	store := setupTestStore(t)

	retrieved, err := store.FolderStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, retrieved)
}

func TestFolderStore_GetByRemoteID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestFolder(t, store, "folder-1")

	retrieved, err := store.FolderStore().GetByRemoteID(ctx, "user-1", "drive-folder-1")
	require.NoError(t, err)
	assert.Equal(t, "folder-1", retrieved.ID)

	// Same remote id under a different owner is a different folder.
	_, err = store.FolderStore().GetByRemoteID(ctx, "user-2", "drive-folder-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolderStore_ListEnabled(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	folders := store.FolderStore()

	require.NoError(t, folders.Save(ctx, domain.RemoteFolder{
		ID: "on-1", RemoteID: "r1", OwnerID: "u", Name: "A",
		SyncEnabled: true, SyncStatus: domain.StatusPending,
	}))
	require.NoError(t, folders.Save(ctx, domain.RemoteFolder{
		ID: "off-1", RemoteID: "r2", OwnerID: "u", Name: "B",
		SyncEnabled: false, SyncStatus: domain.StatusPending,
	}))

	enabled, err := folders.ListEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "on-1", enabled[0].ID)
}

func TestFolderStore_BeginSync(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	folders := store.FolderStore()
	createTestFolder(t, store, "folder-1")

	err := folders.BeginSync(ctx, "folder-1")
	require.NoError(t, err)

	retrieved, err := folders.Get(ctx, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSyncing, retrieved.SyncStatus)

	// Second attempt while syncing must be refused.
	err = folders.BeginSync(ctx, "folder-1")
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
}

func TestFolderStore_BeginSync_NotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.FolderStore().BeginSync(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolderStore_FinishSync(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	folders := store.FolderStore()
	createTestFolder(t, store, "folder-1")

	require.NoError(t, folders.BeginSync(ctx, "folder-1"))
	err := folders.FinishSync(ctx, "folder-1", domain.StatusCompleted, "", 7)
	require.NoError(t, err)

	retrieved, err := folders.Get(ctx, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, retrieved.SyncStatus)
	assert.Empty(t, retrieved.SyncError)
	assert.Equal(t, 7, retrieved.FileCount)
	assert.False(t, retrieved.LastSyncAt.IsZero())

	// A folder that finished syncing can start again.
	assert.NoError(t, folders.BeginSync(ctx, "folder-1"))
}

func TestFolderStore_FinishSync_RecordsError(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	folders := store.FolderStore()
	createTestFolder(t, store, "folder-1")

	err := folders.FinishSync(ctx, "folder-1", domain.StatusError, "listing failed", 0)
	require.NoError(t, err)

	retrieved, err := folders.Get(ctx, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, retrieved.SyncStatus)
	assert.Equal(t, "listing failed", retrieved.SyncError)
}

// ==================== FileStore Tests ====================

func TestFileStore_UpsertAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	files := store.FileStore()
	createTestFolder(t, store, "folder-1")

	file := &domain.SyncedFile{
		ID:            "file-1",
		FolderID:      "folder-1",
		RemoteID:      "drive-file-1",
		Filename:      "notes.pdf",
		ContentDigest: "abc123",
		Size:          2048,
		MIMEType:      "application/pdf",
		BlobPath:      "/blobs/drive-file-1.enc",
		SubjectID:     "subj-1",
		AutoMapped:    true,
		ExtractionOK:  true,
	}
	content := &domain.ExtractedContent{
		FileID:    "file-1",
		Text:      "extracted text",
		PageCount: 3,
	}

	err := files.Upsert(ctx, file, content)
	require.NoError(t, err)

	retrieved, err := files.GetByRemoteID(ctx, "folder-1", "drive-file-1")
	require.NoError(t, err)
	assert.Equal(t, "abc123", retrieved.ContentDigest)

	byID, err := files.Get(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, "drive-file-1", byID.RemoteID)

	_, err = files.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(2048), retrieved.Size)
	assert.True(t, retrieved.AutoMapped)

	got, err := files.GetContent(ctx, retrieved.ID)
	require.NoError(t, err)
	assert.Equal(t, "extracted text", got.Text)
	assert.Equal(t, 3, got.PageCount)
	assert.False(t, got.ExtractedAt.IsZero())
}

func TestFileStore_Upsert_ReplacesContent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	files := store.FileStore()
	createTestFolder(t, store, "folder-1")

	file := &domain.SyncedFile{
		ID:            "file-1",
		FolderID:      "folder-1",
		RemoteID:      "drive-file-1",
		Filename:      "notes.pdf",
		ContentDigest: "digest-v1",
	}
	require.NoError(t, files.Upsert(ctx, file, &domain.ExtractedContent{
		Text: "version one", PageCount: 1,
	}))

	// Re-upsert with a new record id but the same remote identity: the
	// original row must survive with updated fields.
	updated := &domain.SyncedFile{
		ID:            "file-2",
		FolderID:      "folder-1",
		RemoteID:      "drive-file-1",
		Filename:      "notes-renamed.pdf",
		ContentDigest: "digest-v2",
	}
	require.NoError(t, files.Upsert(ctx, updated, &domain.ExtractedContent{
		Text: "version two", PageCount: 2,
	}))

	retrieved, err := files.GetByRemoteID(ctx, "folder-1", "drive-file-1")
	require.NoError(t, err)
	assert.Equal(t, "file-1", retrieved.ID)
	assert.Equal(t, "digest-v2", retrieved.ContentDigest)
	assert.Equal(t, "notes-renamed.pdf", retrieved.Filename)

	content, err := files.GetContent(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, "version two", content.Text)
}

func TestFileStore_ListByFolder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	files := store.FileStore()
	createTestFolder(t, store, "folder-1")
	createTestFolder(t, store, "folder-2")

	for _, name := range []string{"b.pdf", "a.pdf"} {
		require.NoError(t, files.Upsert(ctx, &domain.SyncedFile{
			ID:       name,
			FolderID: "folder-1",
			RemoteID: "remote-" + name,
			Filename: name,
		}, nil))
	}
	require.NoError(t, files.Upsert(ctx, &domain.SyncedFile{
		ID: "other", FolderID: "folder-2", RemoteID: "remote-other", Filename: "c.pdf",
	}, nil))

	listed, err := files.ListByFolder(ctx, "folder-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "a.pdf", listed[0].Filename)
	assert.Equal(t, "b.pdf", listed[1].Filename)
	assert.Equal(t, "Folder folder-1", listed[0].FolderName)
}

func TestFileStore_DeleteFolder_CascadesFiles(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	files := store.FileStore()
	createTestFolder(t, store, "folder-1")

	require.NoError(t, files.Upsert(ctx, &domain.SyncedFile{
		ID: "file-1", FolderID: "folder-1", RemoteID: "r1", Filename: "x.pdf",
	}, &domain.ExtractedContent{Text: "t"}))

	_, err := store.db.ExecContext(ctx, "DELETE FROM folders WHERE id = ?", "folder-1")
	require.NoError(t, err)

	_, err = files.GetByRemoteID(ctx, "folder-1", "r1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = files.GetContent(ctx, "file-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== MappingStore Tests ====================

func TestMappingStore_ScopePrecedence(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mappings := store.MappingStore()
	createTestSubject(t, store, "subj-user", "Physik", "")
	createTestSubject(t, store, "subj-group", "Physik GK", "")
	createTestSubject(t, store, "subj-global", "Physik LK", "")

	require.NoError(t, mappings.Save(ctx, domain.SubjectMapping{
		ID: "m-global", InformalName: "physik", SubjectID: "subj-global",
	}))
	require.NoError(t, mappings.Save(ctx, domain.SubjectMapping{
		ID: "m-group", InformalName: "physik", SubjectID: "subj-group", GroupID: "group-1",
	}))
	require.NoError(t, mappings.Save(ctx, domain.SubjectMapping{
		ID: "m-user", InformalName: "physik", SubjectID: "subj-user", UserID: "user-1",
	}))

	scope := domain.MappingScope{UserID: "user-1", GroupID: "group-1"}
	hit, err := mappings.Lookup(ctx, "physik", scope)
	require.NoError(t, err)
	assert.Equal(t, "subj-user", hit.SubjectID)

	// Without a user mapping the group scope wins.
	hit, err = mappings.Lookup(ctx, "physik", domain.MappingScope{UserID: "user-2", GroupID: "group-1"})
	require.NoError(t, err)
	assert.Equal(t, "subj-group", hit.SubjectID)

	// Unknown user and group fall back to global.
	hit, err = mappings.Lookup(ctx, "physik", domain.MappingScope{UserID: "user-9", GroupID: "group-9"})
	require.NoError(t, err)
	assert.Equal(t, "subj-global", hit.SubjectID)
}

func TestMappingStore_Lookup_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.MappingStore().Lookup(context.Background(), "unbekannt", domain.MappingScope{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMappingStore_ConfirmedNotOverwritten(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mappings := store.MappingStore()
	createTestSubject(t, store, "subj-1", "Mathematik", "")
	createTestSubject(t, store, "subj-2", "Deutsch", "")

	require.NoError(t, mappings.Save(ctx, domain.SubjectMapping{
		ID: "m-1", InformalName: "mathe", SubjectID: "subj-1",
		UserID: "user-1", Confirmed: true,
	}))

	// An auto-derived save must not displace the confirmed mapping.
	require.NoError(t, mappings.Save(ctx, domain.SubjectMapping{
		ID: "m-2", InformalName: "mathe", SubjectID: "subj-2",
		UserID: "user-1", Confirmed: false,
	}))

	hit, err := mappings.Lookup(ctx, "mathe", domain.MappingScope{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "subj-1", hit.SubjectID)
	assert.True(t, hit.Confirmed)

	// A confirmed save always wins.
	require.NoError(t, mappings.Save(ctx, domain.SubjectMapping{
		ID: "m-3", InformalName: "mathe", SubjectID: "subj-2",
		UserID: "user-1", Confirmed: true,
	}))

	hit, err = mappings.Lookup(ctx, "mathe", domain.MappingScope{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "subj-2", hit.SubjectID)
}

func TestMappingStore_AutoUpgradedByConfirm(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mappings := store.MappingStore()
	createTestSubject(t, store, "subj-1", "Biologie", "")

	require.NoError(t, mappings.Save(ctx, domain.SubjectMapping{
		ID: "m-1", InformalName: "bio", SubjectID: "subj-1", Confirmed: false,
	}))
	require.NoError(t, mappings.Save(ctx, domain.SubjectMapping{
		ID: "m-2", InformalName: "bio", SubjectID: "subj-1", Confirmed: true,
	}))

	hit, err := mappings.Lookup(ctx, "bio", domain.MappingScope{})
	require.NoError(t, err)
	assert.True(t, hit.Confirmed)
}

func TestMappingStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mappings := store.MappingStore()
	createTestSubject(t, store, "subj-1", "Chemie", "")

	require.NoError(t, mappings.Save(ctx, domain.SubjectMapping{
		ID: "m-1", InformalName: "chemie", SubjectID: "subj-1",
	}))

	require.NoError(t, mappings.Delete(ctx, "m-1"))
	_, err := mappings.Lookup(ctx, "chemie", domain.MappingScope{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = mappings.Delete(ctx, "m-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== SubjectStore Tests ====================

func TestSubjectStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	subjects := store.SubjectStore()

	require.NoError(t, subjects.Save(ctx, domain.Subject{
		ID: "subj-1", Name: "Physik", GroupID: "group-1",
	}))

	retrieved, err := subjects.Get(ctx, "subj-1")
	require.NoError(t, err)
	assert.Equal(t, "Physik", retrieved.Name)
	assert.Equal(t, "group-1", retrieved.GroupID)

	_, err = subjects.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubjectStore_List_GroupAndGlobal(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	subjects := store.SubjectStore()

	createTestSubject(t, store, "s-global", "Deutsch", "")
	createTestSubject(t, store, "s-group", "Astronomie AG", "group-1")
	createTestSubject(t, store, "s-other", "Robotik AG", "group-2")

	listed, err := subjects.List(ctx, "group-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Astronomie AG", listed[0].Name)
	assert.Equal(t, "Deutsch", listed[1].Name)

	global, err := subjects.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, global, 1)
	assert.Equal(t, "Deutsch", global[0].Name)
}

// ==================== Error Handling ====================

func TestStore_ContextCancellation(t *testing.T) {
	store := setupTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.FolderStore().Save(ctx, domain.RemoteFolder{
		ID: "f", RemoteID: "r", OwnerID: "u", Name: "n",
	})
	assert.Error(t, err)
}

func TestFolderStore_TimestampsRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	folders := store.FolderStore()

	before := time.Now().UTC().Add(-time.Second)
	createTestFolder(t, store, "folder-1")

	retrieved, err := folders.Get(ctx, "folder-1")
	require.NoError(t, err)
	assert.True(t, retrieved.CreatedAt.After(before))
	assert.True(t, retrieved.UpdatedAt.After(before))
}
