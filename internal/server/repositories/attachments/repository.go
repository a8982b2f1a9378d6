package attachments

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.DocumentAttachment) error
	// GetByID returns a live (non-deleted) attachment or ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.DocumentAttachment, error)
	// FindByVersionAndHash looks up a live attachment of the version with
	// the given content hash; ErrorNotFound when none exists. The
	// duplicate-upload guard runs this inside the upload transaction.
	FindByVersionAndHash(ctx context.Context, versionID, fileHash string) (*models.DocumentAttachment, error)
	ListByVersion(ctx context.Context, versionID string) ([]*models.DocumentAttachment, error)
	SoftDelete(ctx context.Context, id, deletedBy string) error
}
