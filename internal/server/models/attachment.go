package models

import "time"

// DocumentAttachment describes binary evidence (a PDF) attached to a
// version. The bytes themselves live in the blob store under FilePath;
// the row carries the SHA-256 digest captured at upload time.
type DocumentAttachment struct {
	ID        string
	VersionID string

	FileName string
	FileSize int64
	MimeType string
	// FilePath is the opaque blob-store key. The service reads and writes
	// by path; nothing else is assumed about the location.
	FilePath string
	// FileHash is unique among non-deleted attachments of the same
	// version (per-version de-duplication, not global).
	FileHash string

	Description string

	UploadedBy string
	UploadedAt time.Time

	// Soft delete markers. Attachments are never hard-deleted.
	DeletedAt *time.Time
	DeletedBy string
}

// Deleted reports whether the attachment has been soft-deleted.
func (a *DocumentAttachment) Deleted() bool {
	return a.DeletedAt != nil
}
