// Package auditlog provides the append-only PostgreSQL repository for
// document audit entries. Immutability is an application-boundary
// convention: this package simply never exposes a write path other than
// Append.
package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements audit storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append writes exactly one audit row. Callers run it inside the same
// transaction as the mutation it documents; a failure here must abort the
// whole unit of work.
func (r *PostgresRepository) Append(ctx context.Context, e *models.AuditEntry) error {
	var changes []byte
	if e.Changes != nil {
		var err error
		changes, err = json.Marshal(e.Changes)
		if err != nil {
			return fmt.Errorf("marshal changes: %w", err)
		}
	}

	var versionID any
	if e.VersionID != "" {
		versionID = e.VersionID
	}

	query := `
		INSERT INTO document_audit_log
			(id, document_id, version_id, action, user_id, changes, reason, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.DocumentID, versionID, e.Action, e.UserID,
		changes, e.Reason, e.IPAddress, e.UserAgent, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByDocument returns the newest audit entries for the document, capped
// at limit, in descending time order.
func (r *PostgresRepository) ListByDocument(ctx context.Context, documentID string, limit int) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, document_id, version_id, action, user_id, changes, reason, ip_address, user_agent, created_at
		FROM document_audit_log
		WHERE document_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select audit entries: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var versionID sql.NullString
		var changes []byte
		if err := rows.Scan(
			&e.ID, &e.DocumentID, &versionID, &e.Action, &e.UserID,
			&changes, &e.Reason, &e.IPAddress, &e.UserAgent, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if versionID.Valid {
			e.VersionID = versionID.String
		}
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &e.Changes); err != nil {
				return nil, fmt.Errorf("unmarshal changes: %w", err)
			}
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
