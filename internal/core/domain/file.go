package domain

import "time"

// SyncedFile is the last-known state of one tracked remote file.
// (FolderID, RemoteID) is unique: a file is created on first sync and
// updated in place when its content digest changes. The at-rest blob is
// overwritten on update; no history is retained.
type SyncedFile struct {
	// ID is the unique identifier for the file record.
	ID string

	// FolderID references the owning RemoteFolder record.
	FolderID string

	// RemoteID is the opaque, source-defined file identifier.
	RemoteID string

	// Filename is the display name reported by the remote source.
	Filename string

	// ContentDigest is the hex SHA-256 of the plaintext content.
	// Change detection is digest-based, never timestamp-based.
	ContentDigest string

	// Size is the plaintext size in bytes.
	Size int64

	// MIMEType is the content type reported by the remote source.
	MIMEType string

	// BlobPath is the at-rest location of the ciphertext.
	BlobPath string

	// SubjectID is the resolved subject, empty if unresolved.
	SubjectID string

	// AutoMapped is true when SubjectID came from the mapper rather
	// than the folder's configured default.
	AutoMapped bool

	// ExtractionOK records whether text extraction succeeded.
	// Extraction failure is a flag, not a sync error.
	ExtractionOK bool

	// FolderName is the parent folder's display name, denormalised for
	// search result rendering.
	FolderName string

	// CreatedAt is when the file was first synced.
	CreatedAt time.Time

	// UpdatedAt is when the file record was last modified.
	UpdatedAt time.Time
}

// ExtractedContent is the searchable text for a SyncedFile, one-to-one.
// It is replaced wholesale on re-sync, never appended.
type ExtractedContent struct {
	// FileID references the owning SyncedFile.
	FileID string

	// Text is the cleaned extracted plain text, empty on failure.
	Text string

	// PageCount is the number of pages, 0 on failure.
	PageCount int

	// ExtractedAt is when extraction ran.
	ExtractedAt time.Time
}

// RemoteFile is a file descriptor returned by a remote listing.
type RemoteFile struct {
	// ID is the opaque, source-defined file identifier.
	ID string

	// Name is the display name.
	Name string

	// MIMEType is the declared content type.
	MIMEType string

	// Size is the declared size in bytes.
	Size int64

	// ModifiedAt is the remote-reported modification time. It is
	// informational only; content identity is digest-based.
	ModifiedAt time.Time

	// Checksum is the remote-reported content hash, if the source
	// provides one. May be empty.
	Checksum string
}

// Extraction is the result of a text extraction attempt.
// Failure is a first-class value: unreadable documents yield
// OK=false with empty text, never an error.
type Extraction struct {
	// Text is the extracted plain text.
	Text string

	// PageCount is the number of pages in the document.
	PageCount int

	// OK reports whether extraction succeeded.
	OK bool
}
