// Package attachments provides the PostgreSQL-backed repository for binary
// evidence (PDF) records attached to document versions.
package attachments

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

// PostgresRepository implements attachment storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const attachmentColumns = `id, version_id, file_name, file_size, mime_type, file_path,
	file_hash, description, uploaded_by, uploaded_at, deleted_at, deleted_by`

// Create inserts a new attachment row. A live attachment with the same
// hash on the same version trips the partial unique index, reported as
// ErrorConflict (backstop for the service-level duplicate check).
func (r *PostgresRepository) Create(ctx context.Context, a *models.DocumentAttachment) error {
	query := `
		INSERT INTO document_attachments
			(id, version_id, file_name, file_size, mime_type, file_path, file_hash, description, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING uploaded_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.VersionID, a.FileName, a.FileSize, a.MimeType,
		a.FilePath, a.FileHash, a.Description, a.UploadedBy,
	).Scan(&a.UploadedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("duplicate attachment: %w", common.ErrorConflict)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns a live attachment or ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.DocumentAttachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM document_attachments WHERE id=$1 AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindByVersionAndHash returns the live attachment of the version with the
// given hash, or ErrorNotFound.
func (r *PostgresRepository) FindByVersionAndHash(ctx context.Context, versionID, fileHash string) (*models.DocumentAttachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM document_attachments
		WHERE version_id=$1 AND file_hash=$2 AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRowContext(ctx, query, versionID, fileHash))
}

// ListByVersion returns live attachments of the version, newest first.
func (r *PostgresRepository) ListByVersion(ctx context.Context, versionID string) ([]*models.DocumentAttachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM document_attachments
		WHERE version_id=$1 AND deleted_at IS NULL ORDER BY uploaded_at DESC`
	rows, err := r.db.QueryContext(ctx, query, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	var result []*models.DocumentAttachment
	for rows.Next() {
		a, err := scanAttachment(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SoftDelete marks the attachment deleted. The blob itself is retained;
// attachments are never hard-deleted.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id, deletedBy string) error {
	query := `
		UPDATE document_attachments
		SET deleted_at=now(), deleted_by=$2
		WHERE id=$1 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id, deletedBy)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
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

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.DocumentAttachment, error) {
	a, err := scanAttachment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func scanAttachment(scan func(dest ...any) error) (*models.DocumentAttachment, error) {
	var a models.DocumentAttachment
	var deletedAt sql.NullTime
	if err := scan(
		&a.ID, &a.VersionID, &a.FileName, &a.FileSize, &a.MimeType, &a.FilePath,
		&a.FileHash, &a.Description, &a.UploadedBy, &a.UploadedAt, &deletedAt, &a.DeletedBy,
	); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		a.DeletedAt = &t
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
