package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/ports/driven"
	"github.com/l8testudy/drivevault/internal/core/ports/driving"
	"github.com/l8testudy/drivevault/internal/logger"
	"github.com/l8testudy/drivevault/internal/vault"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.Syncer = (*SyncOrchestrator)(nil)

// fallbackFolderName is used when the source cannot report a name for a
// folder the credentials can otherwise read.
const fallbackFolderName = "Unknown Folder"

// fileOutcome classifies one file's processing result.
type fileOutcome int

const (
	outcomeNew fileOutcome = iota
	outcomeUpdated
	outcomeSkipped
)

// SyncOrchestrator coordinates folder synchronisation: listing, change
// detection, encryption, extraction and subject assignment. Re-running
// it against an unchanged remote folder is a no-op.
type SyncOrchestrator struct {
	folders   driven.FolderStore
	files     driven.FileStore
	blobs     driven.BlobStore
	source    driven.RemoteSource
	extractor driven.TextExtractor
	mapper    driving.Mapper
	cipher    *vault.Cipher

	// maxPrefetchSize caps the per-file size for cache warming.
	maxPrefetchSize int64
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(
	folders driven.FolderStore,
	files driven.FileStore,
	blobs driven.BlobStore,
	source driven.RemoteSource,
	extractor driven.TextExtractor,
	mapper driving.Mapper,
	cipher *vault.Cipher,
	maxPrefetchSize int64,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		folders:         folders,
		files:           files,
		blobs:           blobs,
		source:          source,
		extractor:       extractor,
		mapper:          mapper,
		cipher:          cipher,
		maxPrefetchSize: maxPrefetchSize,
	}
}

// SyncAll syncs every enabled folder. A folder's total failure is
// recorded in the report and the sweep moves on.
func (o *SyncOrchestrator) SyncAll(ctx context.Context) (*domain.BatchReport, error) {
	folders, err := o.folders.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	report := &domain.BatchReport{TotalFolders: len(folders)}
	for i := range folders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		folder := &folders[i]
		folderReport, err := o.syncOne(ctx, folder)
		if err != nil {
			logger.Warn("Folder %s failed: %v", folder.Name, err)
			report.FailedFolders++
			report.FolderErrors = append(report.FolderErrors, domain.FolderError{
				FolderID:   folder.ID,
				FolderName: folder.Name,
				Err:        err.Error(),
			})
			continue
		}
		report.SyncedFolders++
		report.Merge(folderReport)
	}

	logger.Info("Sync sweep complete: %d/%d folders, %d new, %d updated, %d skipped",
		report.SyncedFolders, report.TotalFolders,
		report.NewFiles, report.UpdatedFiles, report.SkippedFiles)
	return report, nil
}

// SyncFolder syncs one folder by record ID.
func (o *SyncOrchestrator) SyncFolder(ctx context.Context, folderID string) (*domain.FolderReport, error) {
	folder, err := o.folders.Get(ctx, folderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrFolderNotFound
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	if !folder.SyncEnabled {
		return nil, domain.ErrSyncDisabled
	}
	return o.syncOne(ctx, folder)
}

// syncOne runs the full pipeline for a single folder. The folder is
// locked via BeginSync for the duration; every exit path records a
// final status.
func (o *SyncOrchestrator) syncOne(ctx context.Context, folder *domain.RemoteFolder) (*domain.FolderReport, error) {
	if err := o.folders.BeginSync(ctx, folder.ID); err != nil {
		return nil, err
	}

	logger.Info("Syncing folder %s (%s)", folder.Name, folder.RemoteID)

	children, err := o.source.ListChildren(ctx, folder.RemoteID)
	if err != nil {
		listErr := fmt.Errorf("%w: listing %s: %v", domain.ErrRemoteAccess, folder.RemoteID, err)
		if finishErr := o.folders.FinishSync(ctx, folder.ID, domain.StatusError, listErr.Error(), folder.FileCount); finishErr != nil {
			logger.Warn("Failed to record sync error for %s: %v", folder.ID, finishErr)
		}
		return nil, listErr
	}

	report := &domain.FolderReport{}
	for i := range children {
		if err := ctx.Err(); err != nil {
			if finishErr := o.folders.FinishSync(ctx, folder.ID, domain.StatusError, err.Error(), len(children)); finishErr != nil {
				logger.Warn("Failed to record sync error for %s: %v", folder.ID, finishErr)
			}
			return nil, err
		}

		remote := &children[i]
		outcome, err := o.processFile(ctx, folder, remote)
		if err != nil {
			logger.Debug("File %s failed: %v", remote.Name, err)
			report.Errors = append(report.Errors, domain.FileError{
				FileID:   remote.ID,
				Filename: remote.Name,
				Err:      err.Error(),
			})
			continue
		}
		switch outcome {
		case outcomeNew:
			report.NewFiles++
		case outcomeUpdated:
			report.UpdatedFiles++
		case outcomeSkipped:
			report.SkippedFiles++
		}
	}

	syncError := ""
	if n := len(report.Errors); n > 0 {
		syncError = fmt.Sprintf("%d files failed", n)
	}
	if err := o.folders.FinishSync(ctx, folder.ID, domain.StatusCompleted, syncError, len(children)); err != nil {
		return nil, fmt.Errorf("finish sync: %w", err)
	}

	logger.Info("Folder %s: %d new, %d updated, %d skipped, %d errors",
		folder.Name, report.NewFiles, report.UpdatedFiles, report.SkippedFiles, len(report.Errors))
	return report, nil
}

// processFile downloads, digests and, when changed, encrypts and
// extracts one remote file.
func (o *SyncOrchestrator) processFile(ctx context.Context, folder *domain.RemoteFolder, remote *domain.RemoteFile) (fileOutcome, error) {
	existing, err := o.files.GetByRemoteID(ctx, folder.ID, remote.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return outcomeSkipped, fmt.Errorf("get file record: %w", err)
	}

	tmp, err := os.CreateTemp("", "drivevault-*")
	if err != nil {
		return outcomeSkipped, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			logger.Debug("Failed to remove temp file %s: %v", tmp.Name(), err)
		}
	}()

	size, err := o.source.FetchFile(ctx, remote.ID, tmp)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("fetch %s: %w", remote.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return outcomeSkipped, fmt.Errorf("close temp file: %w", err)
	}

	// Content digest decides whether anything changed. Remote timestamps
	// and checksums are advisory only.
	digest, err := vault.DigestFile(tmp.Name())
	if err != nil {
		return outcomeSkipped, fmt.Errorf("digest %s: %w", remote.Name, err)
	}
	if existing != nil && existing.ContentDigest == digest {
		return outcomeSkipped, nil
	}

	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return outcomeSkipped, fmt.Errorf("read temp file: %w", err)
	}

	// The at-rest blob is bound to its identity: decrypting under a
	// different file, owner or folder must fail authentication.
	aad := vault.BlobContext{
		RemoteFileID:  remote.ID,
		ContentDigest: digest,
		OwnerID:       folder.OwnerID,
		FolderID:      folder.ID,
	}.Canonical()

	sealed, err := o.cipher.Encrypt(data, aad)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("encrypt %s: %w", remote.Name, err)
	}

	location, err := o.blobs.Write(ctx, remote.ID, sealed)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("store blob %s: %w", remote.ID, err)
	}

	extraction := o.extractor.Extract(ctx, data, remote.MIMEType)
	if !extraction.OK {
		logger.Debug("No text extracted from %s", remote.Name)
	}

	subjectID, autoMapped := o.resolveSubject(ctx, folder, remote.Name)

	file := &domain.SyncedFile{
		ID:            uuid.New().String(),
		FolderID:      folder.ID,
		RemoteID:      remote.ID,
		Filename:      remote.Name,
		ContentDigest: digest,
		Size:          size,
		MIMEType:      remote.MIMEType,
		BlobPath:      location,
		SubjectID:     subjectID,
		AutoMapped:    autoMapped,
		ExtractionOK:  extraction.OK,
	}
	if existing != nil {
		file.ID = existing.ID
		file.CreatedAt = existing.CreatedAt
	}

	content := &domain.ExtractedContent{
		FileID:    file.ID,
		Text:      extraction.Text,
		PageCount: extraction.PageCount,
	}
	if err := o.files.Upsert(ctx, file, content); err != nil {
		return outcomeSkipped, fmt.Errorf("save file record: %w", err)
	}

	if existing != nil {
		return outcomeUpdated, nil
	}
	return outcomeNew, nil
}

// resolveSubject assigns a subject to a file. A folder default wins
// outright; otherwise the mapper tries the folder name, then the bare
// filename.
func (o *SyncOrchestrator) resolveSubject(ctx context.Context, folder *domain.RemoteFolder, filename string) (string, bool) {
	if folder.DefaultSubjectID != "" {
		return folder.DefaultSubjectID, false
	}
	if o.mapper == nil {
		return "", false
	}

	scope := domain.MappingScope{UserID: folder.OwnerID, GroupID: folder.GroupID}

	for _, candidate := range []string{folder.Name, stem(filename)} {
		subject, ok, err := o.mapper.Resolve(ctx, candidate, scope)
		if err != nil {
			logger.Debug("Subject resolution for %q failed: %v", candidate, err)
			continue
		}
		if ok {
			return subject.ID, true
		}
	}
	return "", false
}

// RegisterFolder links a new remote folder after verifying access.
func (o *SyncOrchestrator) RegisterFolder(ctx context.Context, reg domain.FolderRegistration) (*domain.RemoteFolder, error) {
	if !o.source.VerifyAccess(ctx, reg.RemoteID) {
		return nil, fmt.Errorf("%w: folder %s", domain.ErrAccessVerification, reg.RemoteID)
	}

	existing, err := o.folders.GetByRemoteID(ctx, reg.OwnerID, reg.RemoteID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing folder: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: folder %s already registered", domain.ErrAlreadyExists, reg.RemoteID)
	}

	name, err := o.source.FolderName(ctx, reg.RemoteID)
	if err != nil || name == "" {
		logger.Debug("Could not resolve name for %s: %v", reg.RemoteID, err)
		name = fallbackFolderName
	}

	privacy := reg.Privacy
	if privacy == "" {
		privacy = "private"
	}

	folder := &domain.RemoteFolder{
		ID:               uuid.New().String(),
		RemoteID:         reg.RemoteID,
		Name:             name,
		OwnerID:          reg.OwnerID,
		GroupID:          reg.GroupID,
		DefaultSubjectID: reg.DefaultSubjectID,
		Privacy:          privacy,
		SyncEnabled:      true,
		SyncStatus:       domain.StatusPending,
	}
	if err := o.folders.Save(ctx, *folder); err != nil {
		return nil, fmt.Errorf("save folder: %w", err)
	}

	logger.Info("Registered folder %s (%s)", folder.Name, folder.RemoteID)
	return folder, nil
}

// WarmCache pre-fetches small files of a folder ahead of a sync.
func (o *SyncOrchestrator) WarmCache(ctx context.Context, folderID string) error {
	folder, err := o.folders.Get(ctx, folderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrFolderNotFound
		}
		return fmt.Errorf("get folder: %w", err)
	}
	return o.source.Prefetch(ctx, folder.RemoteID, o.maxPrefetchSize)
}

// OpenFile reads a synced file's ciphertext blob and decrypts it under
// the identity it was sealed with.
func (o *SyncOrchestrator) OpenFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := o.files.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	folder, err := o.folders.Get(ctx, file.FolderID)
	if err != nil {
		return nil, fmt.Errorf("get folder: %w", err)
	}

	sealed, err := o.blobs.Read(ctx, file.RemoteID)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", file.RemoteID, err)
	}

	aad := vault.BlobContext{
		RemoteFileID:  file.RemoteID,
		ContentDigest: file.ContentDigest,
		OwnerID:       folder.OwnerID,
		FolderID:      folder.ID,
	}.Canonical()

	plaintext, err := o.cipher.Decrypt(sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Filename, err)
	}
	return plaintext, nil
}

// stem strips the extension from a filename.
func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
