package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
)

// historyLimit caps how many audit entries a history read returns.
const historyLimit = 100

// AuditService exposes the read side of the audit trail. The write side
// has no service of its own: every other service appends entries inside
// its own transactions.
type AuditService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewAuditService(db *sql.DB, rm repomanager.RepositoryManager) *AuditService {
	return &AuditService{db: db, rm: rm}
}

// History returns the most recent audit entries for a document, newest
// first, capped at 100.
func (s *AuditService) History(ctx context.Context, documentID string) ([]*models.AuditEntry, error) {
	return s.rm.AuditLog(s.db).ListByDocument(ctx, documentID, historyLimit)
}
