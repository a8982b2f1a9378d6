package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction identifies what kind of mutation an audit entry documents.
type AuditAction string

const (
	ActionCreated          AuditAction = "CREATED"
	ActionMetadataModified AuditAction = "METADATA_MODIFIED"
	ActionVersionCreated   AuditAction = "VERSION_CREATED"
	ActionVersionPublished AuditAction = "VERSION_PUBLISHED"
	ActionContentModified  AuditAction = "CONTENT_MODIFIED"
	ActionDeleted          AuditAction = "DELETED"
)

// AuditEntry is one append-only audit row. No update or delete path exists
// for this entity anywhere in the codebase; immutability is an
// application-boundary convention, not a storage-engine guarantee.
type AuditEntry struct {
	ID         string
	DocumentID string
	// VersionID is empty for document-level actions.
	VersionID string

	Action AuditAction
	UserID string

	// Changes is an opaque snapshot/diff persisted as JSON.
	Changes map[string]any
	Reason  string

	IPAddress string
	UserAgent string

	CreatedAt time.Time
}

// NewAuditEntry builds an entry with a fresh id and timestamp. VersionID
// may be empty for document-level actions.
func NewAuditEntry(documentID, versionID string, action AuditAction, userID string) *AuditEntry {
	return &AuditEntry{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		VersionID:  versionID,
		Action:     action,
		UserID:     userID,
		CreatedAt:  time.Now(),
	}
}

// WithChanges attaches the change snapshot and returns the entry.
func (e *AuditEntry) WithChanges(changes map[string]any) *AuditEntry {
	e.Changes = changes
	return e
}

// WithReason attaches the caller-supplied reason and returns the entry.
func (e *AuditEntry) WithReason(reason string) *AuditEntry {
	e.Reason = reason
	return e
}

// WithRequestInfo attaches client network details and returns the entry.
func (e *AuditEntry) WithRequestInfo(ip, userAgent string) *AuditEntry {
	e.IPAddress = ip
	e.UserAgent = userAgent
	return e
}
