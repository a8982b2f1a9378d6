package models

import (
	"fmt"
	"time"
)

// VersionStatus is the lifecycle state of a document version.
type VersionStatus string

const (
	// StatusDraft versions are editable while unlocked. A version that is
	// never published stays DRAFT indefinitely.
	StatusDraft VersionStatus = "DRAFT"
	// StatusPublished is entered exactly once and locks the version.
	StatusPublished VersionStatus = "PUBLISHED"
	// StatusArchived is terminal, reached only as a side effect of a later
	// version being published.
	StatusArchived VersionStatus = "ARCHIVED"
)

// DocumentVersion is one immutable-once-locked revision of a document's
// content, with the SHA-256 digest captured at creation time.
type DocumentVersion struct {
	ID         string
	DocumentID string

	// VersionNumber is monotonic per document, starting at 1, assigned
	// once and never reused.
	VersionNumber int
	// VersionLabel is the display string derived from VersionNumber,
	// see DeriveVersionLabel.
	VersionLabel string

	Content     string
	ContentHash string
	ContentType string

	Status VersionStatus

	// IsLocked is a one-way flag set at publish time. Once true, Content
	// and ContentHash are frozen forever.
	IsLocked bool
	LockedAt *time.Time

	PublishedBy string
	PublishedAt *time.Time

	ArchivedBy    string
	ArchivedAt    *time.Time
	ArchiveReason string

	EffectiveFrom *time.Time
	EffectiveTo   *time.Time

	CreatedBy string
	CreatedAt time.Time
}

// DeriveVersionLabel turns a version number into its three-part display
// label by splitting the number into hundreds, tens, and ones digit groups
// (7 -> "0.0.7", 12 -> "0.1.2", 345 -> "3.4.5"). This is a legacy display
// convenience, not semantic versioning; it rolls over past 10 and 100 and
// is preserved as-is for compatibility.
func DeriveVersionLabel(n int) string {
	return fmt.Sprintf("%d.%d.%d", n/100, (n/10)%10, n%10)
}
