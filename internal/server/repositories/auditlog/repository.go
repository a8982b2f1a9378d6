package auditlog

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// Repository is append-only by construction: Append and a capped
// descending read are the entire surface. No update, delete, or upsert
// exists for audit rows anywhere in the codebase.
type Repository interface {
	Append(ctx context.Context, e *models.AuditEntry) error
	// ListByDocument returns the document's audit trail newest-first,
	// capped at limit entries.
	ListByDocument(ctx context.Context, documentID string, limit int) ([]*models.AuditEntry, error)
}
