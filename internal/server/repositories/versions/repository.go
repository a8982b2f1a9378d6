package versions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PublishUpdate carries the fields set when a DRAFT version transitions to
// PUBLISHED. The transition also locks the version permanently.
type PublishUpdate struct {
	PublishedBy   string
	PublishedAt   time.Time
	EffectiveFrom time.Time
}

type Repository interface {
	Create(ctx context.Context, v *models.DocumentVersion) error
	GetByID(ctx context.Context, id string) (*models.DocumentVersion, error)
	// LatestVersionNumber returns the highest version number assigned to
	// the document so far, 0 when no versions exist. Numbers are never
	// reused, even across soft-deleted documents.
	LatestVersionNumber(ctx context.Context, documentID string) (int, error)
	ListByDocument(ctx context.Context, documentID string) ([]*models.DocumentVersion, error)
	// UpdateDraftContent replaces content+hash of an unlocked DRAFT.
	// Returns ErrorVersionLocked when the version exists but is locked.
	UpdateDraftContent(ctx context.Context, id, content, contentHash string) error
	// Publish transitions an unlocked DRAFT to PUBLISHED and locks it.
	// Returns ErrorConflict when the version is locked or not a draft.
	Publish(ctx context.Context, id string, u PublishUpdate) error
	// Archive transitions a PUBLISHED version to ARCHIVED. Called only as
	// a side effect of a newer version being published.
	Archive(ctx context.Context, id, archivedBy, reason string, at time.Time) error
}
