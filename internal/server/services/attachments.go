package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/hashx"
	"github.com/dmitrijs2005/docvault/internal/server/blob"
	sc "github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	// pdfMimeType is the single allowed media type for uploads.
	pdfMimeType = "application/pdf"
	// pdfMagic is the structural signature checked on the raw payload;
	// the declared mime type alone is not trusted.
	pdfMagic = "%PDF-"
)

// AttachmentService manages binary evidence (PDF) attached to versions.
// Payload bytes live in the blob store; rows carry the digest captured at
// upload time.
type AttachmentService struct {
	db            *sql.DB
	rm            repomanager.RepositoryManager
	blobs         blob.Store
	maxUploadSize int64
}

func NewAttachmentService(db *sql.DB, rm repomanager.RepositoryManager, blobs blob.Store, config *sc.Config) *AttachmentService {
	return &AttachmentService{db: db, rm: rm, blobs: blobs, maxUploadSize: config.MaxUploadSize}
}

// FileUpload is the parsed multipart file handed over by the request
// layer: raw bytes plus the declared name, media type, and size.
type FileUpload struct {
	FileName string
	MimeType string
	Size     int64
	Data     []byte
}

// Upload validates and stores a PDF against an unlocked version.
// Validation order, each a distinct BadRequest cause: declared media type,
// size ceiling, then the %PDF- signature of the actual payload. The
// duplicate check, blob write, row insert, and audit append share one
// transaction so the per-version de-duplication has no check-then-act
// window.
func (s *AttachmentService) Upload(ctx context.Context, versionID string, up FileUpload, description string, actor Actor) (*models.DocumentAttachment, error) {
	if up.MimeType != pdfMimeType {
		return nil, fmt.Errorf("unsupported media type %q: %w", up.MimeType, common.ErrorBadRequest)
	}
	if up.Size > s.maxUploadSize || int64(len(up.Data)) > s.maxUploadSize {
		return nil, fmt.Errorf("file exceeds %d bytes: %w", s.maxUploadSize, common.ErrorBadRequest)
	}
	if len(up.Data) < len(pdfMagic) || string(up.Data[:len(pdfMagic)]) != pdfMagic {
		return nil, fmt.Errorf("payload is not a PDF: %w", common.ErrorBadRequest)
	}

	fileHash := hashx.SumHex(up.Data)

	var att *models.DocumentAttachment

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vers := s.rm.Versions(tx)
		atts := s.rm.Attachments(tx)

		v, err := vers.GetByID(ctx, versionID)
		if err != nil {
			return err
		}
		if v.IsLocked {
			return fmt.Errorf("version %s: %w", versionID, common.ErrorVersionLocked)
		}

		if _, err := atts.FindByVersionAndHash(ctx, versionID, fileHash); err == nil {
			return fmt.Errorf("identical file already attached to version %s: %w", versionID, common.ErrorConflict)
		} else if !isNotFound(err) {
			return err
		}

		key := storageKey(fileHash)
		if err := s.blobs.Put(ctx, key, up.Data); err != nil {
			return err
		}

		att = &models.DocumentAttachment{
			ID:          uuid.NewString(),
			VersionID:   versionID,
			FileName:    up.FileName,
			FileSize:    int64(len(up.Data)),
			MimeType:    up.MimeType,
			FilePath:    key,
			FileHash:    fileHash,
			Description: description,
			UploadedBy:  actor.ID,
		}
		if err := atts.Create(ctx, att); err != nil {
			return err
		}

		entry := models.NewAuditEntry(v.DocumentID, versionID, models.ActionContentModified, actor.ID).
			WithChanges(map[string]any{
				"action":   "PDF_UPLOADED",
				"fileName": att.FileName,
				"fileSize": att.FileSize,
				"fileHash": att.FileHash,
			}).
			WithRequestInfo(actor.IP, actor.UserAgent)
		return s.rm.AuditLog(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return att, nil
}

// Get returns a live attachment record by id.
func (s *AttachmentService) Get(ctx context.Context, attachmentID string) (*models.DocumentAttachment, error) {
	return s.rm.Attachments(s.db).GetByID(ctx, attachmentID)
}

// ListByVersion returns the live attachments of a version.
func (s *AttachmentService) ListByVersion(ctx context.Context, versionID string) ([]*models.DocumentAttachment, error) {
	return s.rm.Attachments(s.db).ListByVersion(ctx, versionID)
}

// Download reads the stored bytes and recomputes their hash. A mismatch is
// a fatal ErrorIntegrity: tampered evidence is never served, not even with
// a warning.
func (s *AttachmentService) Download(ctx context.Context, attachmentID string) (*models.DocumentAttachment, []byte, error) {
	att, err := s.rm.Attachments(s.db).GetByID(ctx, attachmentID)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.blobs.Get(ctx, att.FilePath)
	if err != nil {
		return nil, nil, err
	}

	if !hashx.Matches(att.FileHash, data) {
		return nil, nil, fmt.Errorf("attachment %s failed its hash check: %w", attachmentID, common.ErrorIntegrity)
	}

	return att, data, nil
}

// SoftDelete marks the attachment deleted and audits DELETED. The blob is
// retained; deletion is a record-level marker only.
func (s *AttachmentService) SoftDelete(ctx context.Context, attachmentID, reason string, actor Actor) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		atts := s.rm.Attachments(tx)

		att, err := atts.GetByID(ctx, attachmentID)
		if err != nil {
			return err
		}
		v, err := s.rm.Versions(tx).GetByID(ctx, att.VersionID)
		if err != nil {
			return err
		}

		if err := atts.SoftDelete(ctx, attachmentID, actor.ID); err != nil {
			return err
		}

		entry := models.NewAuditEntry(v.DocumentID, att.VersionID, models.ActionDeleted, actor.ID).
			WithChanges(map[string]any{
				"action":   "PDF_DELETED",
				"fileName": att.FileName,
				"fileHash": att.FileHash,
			}).
			WithReason(reason).
			WithRequestInfo(actor.IP, actor.UserAgent)
		return s.rm.AuditLog(tx).Append(ctx, entry)
	})
}

// storageKey derives the blob key from the upload date and content hash,
// so identical payloads land on stable, content-addressed paths.
func storageKey(fileHash string) string {
	d := time.Now()
	return fmt.Sprintf("attachments/%d/%02d/%02d/%s.pdf", d.Year(), int(d.Month()), d.Day(), fileHash)
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}
