// Package versions provides the PostgreSQL-backed repository for document
// version records, including the guarded lifecycle transitions.
package versions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements version storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const versionColumns = `id, document_id, version_number, version_label, content, content_hash,
	content_type, status, is_locked, locked_at, published_by, published_at,
	archived_by, archived_at, archive_reason, effective_from, effective_to, created_by, created_at`

// Create inserts a new version row. The (document_id, version_number) pair
// is unique; a duplicate is reported as ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, v *models.DocumentVersion) error {
	query := `
		INSERT INTO document_versions
			(id, document_id, version_number, version_label, content, content_hash, content_type, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		v.ID, v.DocumentID, v.VersionNumber, v.VersionLabel,
		v.Content, v.ContentHash, v.ContentType, v.Status, v.CreatedBy,
	).Scan(&v.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the version or ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.DocumentVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM document_versions WHERE id=$1`
	v, err := scanVersion(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

// LatestVersionNumber returns MAX(version_number) for the document, 0 when
// none exist.
func (r *PostgresRepository) LatestVersionNumber(ctx context.Context, documentID string) (int, error) {
	var n int
	query := `SELECT COALESCE(MAX(version_number), 0) FROM document_versions WHERE document_id=$1`
	if err := r.db.QueryRowContext(ctx, query, documentID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ListByDocument returns all versions of the document, newest first.
func (r *PostgresRepository) ListByDocument(ctx context.Context, documentID string) ([]*models.DocumentVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM document_versions
		WHERE document_id=$1 ORDER BY version_number DESC`
	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select versions: %w", err)
	}
	defer rows.Close()

	var result []*models.DocumentVersion
	for rows.Next() {
		v, err := scanVersion(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateDraftContent replaces content and hash of an unlocked draft. The
// WHERE clause is the write-side enforcement of the lock invariant: a
// locked or published row is never touched, and the caller gets
// ErrorVersionLocked instead.
func (r *PostgresRepository) UpdateDraftContent(ctx context.Context, id, content, contentHash string) error {
	query := `
		UPDATE document_versions
		SET content=$2, content_hash=$3
		WHERE id=$1 AND status='DRAFT' AND NOT is_locked
	`
	res, err := r.db.ExecContext(ctx, query, id, content, contentHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res, common.ErrorVersionLocked)
}

// Publish transitions a draft to PUBLISHED, locking it. Zero rows affected
// means the version was already published/locked (or archived) and the
// caller gets ErrorConflict.
func (r *PostgresRepository) Publish(ctx context.Context, id string, u PublishUpdate) error {
	query := `
		UPDATE document_versions
		SET status='PUBLISHED', is_locked=TRUE, locked_at=$4,
			published_by=$2, published_at=$4, effective_from=$3
		WHERE id=$1 AND status='DRAFT' AND NOT is_locked
	`
	res, err := r.db.ExecContext(ctx, query, id, u.PublishedBy, u.EffectiveFrom, u.PublishedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res, common.ErrorConflict)
}

// Archive transitions the previously current version to ARCHIVED and closes
// its effective window.
func (r *PostgresRepository) Archive(ctx context.Context, id, archivedBy, reason string, at time.Time) error {
	query := `
		UPDATE document_versions
		SET status='ARCHIVED', archived_by=$2, archive_reason=$3, archived_at=$4, effective_to=$4
		WHERE id=$1 AND status='PUBLISHED'
	`
	res, err := r.db.ExecContext(ctx, query, id, archivedBy, reason, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res, common.ErrorConflict)
}

func scanVersion(scan func(dest ...any) error) (*models.DocumentVersion, error) {
	var v models.DocumentVersion
	var lockedAt, publishedAt, archivedAt, effFrom, effTo sql.NullTime
	if err := scan(
		&v.ID, &v.DocumentID, &v.VersionNumber, &v.VersionLabel, &v.Content, &v.ContentHash,
		&v.ContentType, &v.Status, &v.IsLocked, &lockedAt, &v.PublishedBy, &publishedAt,
		&v.ArchivedBy, &archivedAt, &v.ArchiveReason, &effFrom, &effTo, &v.CreatedBy, &v.CreatedAt,
	); err != nil {
		return nil, err
	}
	v.LockedAt = timePtr(lockedAt)
	v.PublishedAt = timePtr(publishedAt)
	v.ArchivedAt = timePtr(archivedAt)
	v.EffectiveFrom = timePtr(effFrom)
	v.EffectiveTo = timePtr(effTo)
	return &v, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func requireOneRow(res sql.Result, zeroRowsErr error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return zeroRowsErr
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
