package domain

// FileError records one file's processing failure inside a folder sync.
// A single malformed file never aborts the folder's sync; its failure is
// downgraded to a report entry.
type FileError struct {
	// FileID is the remote file identifier.
	FileID string

	// Filename is the file's display name.
	Filename string

	// Err is the error text.
	Err string
}

// FolderError records one folder's total failure inside a sweep.
type FolderError struct {
	// FolderID is the folder record identifier.
	FolderID string

	// FolderName is the folder's display name.
	FolderName string

	// Err is the error text.
	Err string
}

// FolderReport summarises one folder's sync attempt.
type FolderReport struct {
	NewFiles     int
	UpdatedFiles int
	SkippedFiles int
	Errors       []FileError
}

// BatchReport summarises a multi-folder sweep. It is returned whole,
// never streamed.
type BatchReport struct {
	TotalFolders  int
	SyncedFolders int
	FailedFolders int
	NewFiles      int
	UpdatedFiles  int
	SkippedFiles  int
	FileErrors    []FileError
	FolderErrors  []FolderError
}

// Merge folds a folder report into the batch totals.
func (b *BatchReport) Merge(r *FolderReport) {
	b.NewFiles += r.NewFiles
	b.UpdatedFiles += r.UpdatedFiles
	b.SkippedFiles += r.SkippedFiles
	b.FileErrors = append(b.FileErrors, r.Errors...)
}
