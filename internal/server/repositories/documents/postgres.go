// Package documents provides the PostgreSQL-backed repository for
// legal document records.
package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements document storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const documentColumns = `id, slug, title, doc_type, description, is_public, is_published,
	is_active, current_version_id, created_by, created_at, updated_at, deleted_at, deleted_by`

// Create inserts a new document row. A live document with the same slug
// trips the partial unique index, reported as ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, doc *models.LegalDocument) error {
	query := `
		INSERT INTO legal_documents
			(id, slug, title, doc_type, description, is_public, is_published, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		doc.ID, doc.Slug, doc.Title, doc.DocType, doc.Description,
		doc.IsPublic, doc.IsPublished, doc.IsActive, doc.CreatedBy,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slug %q: %w", doc.Slug, common.ErrorConflict)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns a live (non-deleted) document or ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.LegalDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM legal_documents WHERE id=$1 AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate is GetByID with a FOR UPDATE row lock. Must run inside
// a transaction; the lock is held until commit or rollback.
func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.LegalDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM legal_documents WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetBySlug returns a live document by slug or ErrorNotFound.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.LegalDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM legal_documents WHERE slug=$1 AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRowContext(ctx, query, slug))
}

// SlugExists reports whether a live document already uses slug.
func (r *PostgresRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM legal_documents WHERE slug=$1 AND deleted_at IS NULL)`
	if err := r.db.QueryRowContext(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// List returns documents matching the filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*models.LegalDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM legal_documents
		WHERE ($1 = '' OR doc_type = $1)
		  AND (NOT $2 OR is_active)
		  AND ($3 OR deleted_at IS NULL)
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, f.DocType, f.OnlyActive, f.IncludeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []*models.LegalDocument
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateMetadata updates only the provided metadata fields of a live
// document. Exactly one row must be affected; zero rows means the document
// is missing or deleted.
func (r *PostgresRepository) UpdateMetadata(ctx context.Context, id string, u MetadataUpdate) error {
	query := `
		UPDATE legal_documents SET
			title = COALESCE($2, title),
			doc_type = COALESCE($3, doc_type),
			description = COALESCE($4, description),
			is_public = COALESCE($5, is_public),
			is_active = COALESCE($6, is_active),
			updated_at = now()
		WHERE id=$1 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id, u.Title, u.DocType, u.Description, u.IsPublic, u.IsActive)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

// SetCurrentVersion repoints current_version_id and flags the document as
// published.
func (r *PostgresRepository) SetCurrentVersion(ctx context.Context, id, versionID string) error {
	query := `
		UPDATE legal_documents
		SET current_version_id=$2, is_published=TRUE, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id, versionID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

// SoftDelete marks the document deleted. Already-deleted rows are not
// touched again.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id, deletedBy string) error {
	query := `
		UPDATE legal_documents
		SET deleted_at=now(), deleted_by=$2, is_active=FALSE, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id, deletedBy)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.LegalDocument, error) {
	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

func scanDocument(scan func(dest ...any) error) (*models.LegalDocument, error) {
	var doc models.LegalDocument
	var currentVersion sql.NullString
	var deletedAt sql.NullTime
	if err := scan(
		&doc.ID, &doc.Slug, &doc.Title, &doc.DocType, &doc.Description,
		&doc.IsPublic, &doc.IsPublished, &doc.IsActive, &currentVersion,
		&doc.CreatedBy, &doc.CreatedAt, &doc.UpdatedAt, &deletedAt, &doc.DeletedBy,
	); err != nil {
		return nil, err
	}
	if currentVersion.Valid {
		doc.CurrentVersionID = currentVersion.String
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		doc.DeletedAt = &t
	}
	return &doc, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
