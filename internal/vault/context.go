package vault

import "fmt"

// BlobContext is the metadata bound into a ciphertext as associated
// data. Binding the content digest means a blob can never be replayed
// against a different logical file identity without failing
// authentication.
type BlobContext struct {
	RemoteFileID  string
	ContentDigest string
	OwnerID       string
	FolderID      string
}

// Canonical serialises the context with a fixed field order so the
// authenticated-encryption binding is reproducible across runtimes.
func (c BlobContext) Canonical() []byte {
	return []byte(fmt.Sprintf(
		"remote_file_id=%s\ncontent_digest=%s\nowner_id=%s\nfolder_id=%s\n",
		c.RemoteFileID, c.ContentDigest, c.OwnerID, c.FolderID,
	))
}
