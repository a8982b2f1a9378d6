package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/hashx"
	sc "github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/versions"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// archiveReasonSuperseded is recorded on the previously current version
// when a newer version is published over it.
const archiveReasonSuperseded = "Superseded by new version"

// publishRetryBackoff is the pause between retries of a publish that hit a
// transient serialization failure.
const publishRetryBackoff = 50 * time.Millisecond

// VersionService manages document versions: creation, draft edits, and the
// DRAFT→PUBLISHED(→ARCHIVED) publication workflow.
type VersionService struct {
	db      *sql.DB
	rm      repomanager.RepositoryManager
	retries uint64
}

func NewVersionService(db *sql.DB, rm repomanager.RepositoryManager, config *sc.Config) *VersionService {
	return &VersionService{db: db, rm: rm, retries: config.PublishRetries}
}

// CreateVersionParams carries the fields for a new draft version.
type CreateVersionParams struct {
	Content     string
	ContentType string
}

// Create adds the next draft version of a document. The content hash is
// computed exactly once here; it is only ever recomputed by the integrity
// verifier. The document row is locked for the duration of the transaction
// so concurrent creates cannot race on the version number.
func (s *VersionService) Create(ctx context.Context, documentID string, p CreateVersionParams, actor Actor) (*models.DocumentVersion, error) {
	contentType := p.ContentType
	if contentType == "" {
		contentType = "text/html"
	}

	var v *models.DocumentVersion

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		docs := s.rm.Documents(tx)
		vers := s.rm.Versions(tx)

		if _, err := docs.GetByIDForUpdate(ctx, documentID); err != nil {
			return err
		}

		latest, err := vers.LatestVersionNumber(ctx, documentID)
		if err != nil {
			return err
		}
		number := latest + 1

		v = &models.DocumentVersion{
			ID:            uuid.NewString(),
			DocumentID:    documentID,
			VersionNumber: number,
			VersionLabel:  models.DeriveVersionLabel(number),
			Content:       p.Content,
			ContentHash:   hashx.SumHexString(p.Content),
			ContentType:   contentType,
			Status:        models.StatusDraft,
			CreatedBy:     actor.ID,
		}
		if err := vers.Create(ctx, v); err != nil {
			return err
		}

		entry := models.NewAuditEntry(documentID, v.ID, models.ActionVersionCreated, actor.ID).
			WithChanges(map[string]any{
				"versionNumber": v.VersionNumber,
				"versionLabel":  v.VersionLabel,
				"contentHash":   v.ContentHash,
			}).
			WithRequestInfo(actor.IP, actor.UserAgent)
		return s.rm.AuditLog(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return v, nil
}

// Get returns a version by id.
func (s *VersionService) Get(ctx context.Context, versionID string) (*models.DocumentVersion, error) {
	return s.rm.Versions(s.db).GetByID(ctx, versionID)
}

// ListByDocument returns all versions of a document, newest first.
func (s *VersionService) ListByDocument(ctx context.Context, documentID string) ([]*models.DocumentVersion, error) {
	return s.rm.Versions(s.db).ListByDocument(ctx, documentID)
}

// UpdateDraftContent replaces the content of an unlocked draft, re-hashing
// it, and audits CONTENT_MODIFIED. Locked versions fail with
// ErrorVersionLocked; the content/hash pair of a locked version is frozen
// forever and any change requires a new version.
func (s *VersionService) UpdateDraftContent(ctx context.Context, versionID, content string, actor Actor) (*models.DocumentVersion, error) {
	var v *models.DocumentVersion

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vers := s.rm.Versions(tx)

		var err error
		v, err = vers.GetByID(ctx, versionID)
		if err != nil {
			return err
		}
		if v.IsLocked || v.Status != models.StatusDraft {
			return fmt.Errorf("version %s: %w", versionID, common.ErrorVersionLocked)
		}

		hash := hashx.SumHexString(content)
		if err := vers.UpdateDraftContent(ctx, versionID, content, hash); err != nil {
			return err
		}
		v.Content = content
		v.ContentHash = hash

		entry := models.NewAuditEntry(v.DocumentID, versionID, models.ActionContentModified, actor.ID).
			WithChanges(map[string]any{"contentHash": hash}).
			WithRequestInfo(actor.IP, actor.UserAgent)
		return s.rm.AuditLog(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return v, nil
}

// PublishParams carries the optional fields of a publish call.
type PublishParams struct {
	// EffectiveFrom defaults to the publish time when nil.
	EffectiveFrom *time.Time
	Reason        string
}

// Publish runs the publication workflow: archive the previously current
// version (if any), publish and lock the target, repoint the document, and
// audit VERSION_PUBLISHED — all in one transaction serialized on the
// document row. Transient serialization failures are retried a bounded
// number of times before surfacing as Conflict.
func (s *VersionService) Publish(ctx context.Context, documentID, versionID string, p PublishParams, actor Actor) (*models.DocumentVersion, error) {
	var published *models.DocumentVersion

	backoff := retry.WithMaxRetries(s.retries, retry.NewConstant(publishRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		v, err := s.publishOnce(ctx, documentID, versionID, p, actor)
		if err != nil {
			if dbx.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		published = v
		return nil
	})
	if err != nil {
		if dbx.IsRetryable(err) {
			// Retry budget exhausted on contention.
			return nil, fmt.Errorf("publish contention on document %s: %w", documentID, common.ErrorConflict)
		}
		return nil, err
	}

	return published, nil
}

func (s *VersionService) publishOnce(ctx context.Context, documentID, versionID string, p PublishParams, actor Actor) (*models.DocumentVersion, error) {
	var published *models.DocumentVersion

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		docs := s.rm.Documents(tx)
		vers := s.rm.Versions(tx)

		// The row lock serializes concurrent publishes on one document:
		// the loser blocks here and then observes the winner's state.
		doc, err := docs.GetByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}

		v, err := vers.GetByID(ctx, versionID)
		if err != nil {
			return err
		}
		if v.DocumentID != documentID {
			return fmt.Errorf("version %s does not belong to document %s: %w", versionID, documentID, common.ErrorNotFound)
		}
		if v.IsLocked || v.Status != models.StatusDraft {
			return fmt.Errorf("version %s already published: %w", versionID, common.ErrorConflict)
		}

		now := time.Now()
		effectiveFrom := now
		if p.EffectiveFrom != nil {
			effectiveFrom = *p.EffectiveFrom
		}

		if doc.CurrentVersionID != "" {
			if err := vers.Archive(ctx, doc.CurrentVersionID, actor.ID, archiveReasonSuperseded, now); err != nil {
				return err
			}
		}

		if err := vers.Publish(ctx, versionID, versions.PublishUpdate{
			PublishedBy:   actor.ID,
			PublishedAt:   now,
			EffectiveFrom: effectiveFrom,
		}); err != nil {
			return err
		}

		if err := docs.SetCurrentVersion(ctx, documentID, versionID); err != nil {
			return err
		}

		entry := models.NewAuditEntry(documentID, versionID, models.ActionVersionPublished, actor.ID).
			WithChanges(map[string]any{
				"versionNumber": v.VersionNumber,
				"effectiveFrom": effectiveFrom,
			}).
			WithReason(p.Reason).
			WithRequestInfo(actor.IP, actor.UserAgent)
		if err := s.rm.AuditLog(tx).Append(ctx, entry); err != nil {
			return err
		}

		published, err = vers.GetByID(ctx, versionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return published, nil
}
