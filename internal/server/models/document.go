// Package models defines server-side data models persisted in the database.
package models

import "time"

// LegalDocument is the root record for a versioned legal document
// (policy, terms, compliance notice). The document row never carries
// content; content lives exclusively on versions.
type LegalDocument struct {
	ID string
	// Slug is the unique, immutable public identifier ("privacy-policy").
	// Uniqueness is enforced among non-deleted documents only.
	Slug        string
	Title       string
	DocType     string
	Description string

	// IsPublic allows unauthenticated reads through the slug path,
	// provided the document is also published.
	IsPublic    bool
	IsPublished bool
	IsActive    bool

	// CurrentVersionID points at the single PUBLISHED version, empty when
	// no version has been published yet. Updated only inside the publish
	// transaction, never derived at read time.
	CurrentVersionID string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Soft delete markers. Documents are never hard-deleted.
	DeletedAt *time.Time
	DeletedBy string
}

// Deleted reports whether the document has been soft-deleted.
func (d *LegalDocument) Deleted() bool {
	return d.DeletedAt != nil
}
