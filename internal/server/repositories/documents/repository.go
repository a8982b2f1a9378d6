package documents

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// ListFilter narrows List results. Zero value returns all live documents.
type ListFilter struct {
	// DocType filters by document type when non-empty.
	DocType string
	// OnlyActive keeps documents with is_active=true.
	OnlyActive bool
	// IncludeDeleted also returns soft-deleted rows (admin view).
	IncludeDeleted bool
}

// MetadataUpdate carries the metadata fields a caller may change. Nil
// pointers leave the column untouched. Slug and content are deliberately
// absent: slug is immutable, content lives on versions.
type MetadataUpdate struct {
	Title       *string
	DocType     *string
	Description *string
	IsPublic    *bool
	IsActive    *bool
}

type Repository interface {
	Create(ctx context.Context, doc *models.LegalDocument) error
	GetByID(ctx context.Context, id string) (*models.LegalDocument, error)
	// GetByIDForUpdate loads the document with a row lock, serializing
	// concurrent publish/version-create transactions on the same document.
	GetByIDForUpdate(ctx context.Context, id string) (*models.LegalDocument, error)
	GetBySlug(ctx context.Context, slug string) (*models.LegalDocument, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, f ListFilter) ([]*models.LegalDocument, error)
	UpdateMetadata(ctx context.Context, id string, u MetadataUpdate) error
	// SetCurrentVersion repoints the published-version pointer and marks
	// the document published. Called only inside the publish transaction.
	SetCurrentVersion(ctx context.Context, id, versionID string) error
	SoftDelete(ctx context.Context, id, deletedBy string) error
}
