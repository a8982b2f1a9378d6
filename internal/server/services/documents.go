package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// DocumentService manages legal document records and their metadata.
// Content never flows through this service; it lives on versions.
type DocumentService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewDocumentService(db *sql.DB, rm repomanager.RepositoryManager) *DocumentService {
	return &DocumentService{db: db, rm: rm}
}

// CreateDocumentParams carries the fields for a new document.
type CreateDocumentParams struct {
	Slug        string
	Title       string
	DocType     string
	Description string
	IsPublic    bool
}

// Create inserts a new document and its CREATED audit row in one
// transaction. Fails with ErrorConflict when a live document already uses
// the slug.
func (s *DocumentService) Create(ctx context.Context, p CreateDocumentParams, actor Actor) (*models.LegalDocument, error) {
	if p.Slug == "" || p.Title == "" {
		return nil, fmt.Errorf("slug and title are required: %w", common.ErrorBadRequest)
	}

	doc := &models.LegalDocument{
		ID:          uuid.NewString(),
		Slug:        p.Slug,
		Title:       p.Title,
		DocType:     p.DocType,
		Description: p.Description,
		IsPublic:    p.IsPublic,
		IsActive:    true,
		CreatedBy:   actor.ID,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		docs := s.rm.Documents(tx)

		exists, err := docs.SlugExists(ctx, p.Slug)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("slug %q already exists: %w", p.Slug, common.ErrorConflict)
		}

		if err := docs.Create(ctx, doc); err != nil {
			return err
		}

		entry := models.NewAuditEntry(doc.ID, "", models.ActionCreated, actor.ID).
			WithChanges(map[string]any{"slug": doc.Slug, "title": doc.Title, "docType": doc.DocType}).
			WithRequestInfo(actor.IP, actor.UserAgent)
		return s.rm.AuditLog(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Get returns a live document by id.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.LegalDocument, error) {
	return s.rm.Documents(s.db).GetByID(ctx, id)
}

// List returns documents matching the filter.
func (s *DocumentService) List(ctx context.Context, f documents.ListFilter) ([]*models.LegalDocument, error) {
	return s.rm.Documents(s.db).List(ctx, f)
}

// GetPublicBySlug serves the only unauthenticated read path. A document
// that exists but is not both published and public is reported as
// ErrorForbidden, not leaked as present-but-hidden.
func (s *DocumentService) GetPublicBySlug(ctx context.Context, slug string) (*models.LegalDocument, error) {
	doc, err := s.rm.Documents(s.db).GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !doc.IsPublished || !doc.IsPublic {
		return nil, fmt.Errorf("document %q is not public: %w", slug, common.ErrorForbidden)
	}
	return doc, nil
}

// UpdateMetadata changes metadata fields only (title, type, description,
// flags), never content or slug, and audits METADATA_MODIFIED in the same
// transaction.
func (s *DocumentService) UpdateMetadata(ctx context.Context, id string, u documents.MetadataUpdate, actor Actor) (*models.LegalDocument, error) {
	var updated *models.LegalDocument

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		docs := s.rm.Documents(tx)

		if _, err := docs.GetByID(ctx, id); err != nil {
			return err
		}
		if err := docs.UpdateMetadata(ctx, id, u); err != nil {
			return err
		}

		var err error
		updated, err = docs.GetByID(ctx, id)
		if err != nil {
			return err
		}

		entry := models.NewAuditEntry(id, "", models.ActionMetadataModified, actor.ID).
			WithChanges(metadataChanges(u)).
			WithRequestInfo(actor.IP, actor.UserAgent)
		return s.rm.AuditLog(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// SoftDelete marks the document deleted and audits DELETED with the
// caller's reason. Documents are never reinstated.
func (s *DocumentService) SoftDelete(ctx context.Context, id, reason string, actor Actor) (*models.LegalDocument, error) {
	var doc *models.LegalDocument

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		docs := s.rm.Documents(tx)

		var err error
		doc, err = docs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := docs.SoftDelete(ctx, id, actor.ID); err != nil {
			return err
		}

		entry := models.NewAuditEntry(id, "", models.ActionDeleted, actor.ID).
			WithChanges(map[string]any{"slug": doc.Slug}).
			WithReason(reason).
			WithRequestInfo(actor.IP, actor.UserAgent)
		return s.rm.AuditLog(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc.DeletedAt = &now
	doc.DeletedBy = actor.ID
	doc.IsActive = false
	return doc, nil
}

func metadataChanges(u documents.MetadataUpdate) map[string]any {
	changes := map[string]any{}
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.DocType != nil {
		changes["docType"] = *u.DocType
	}
	if u.Description != nil {
		changes["description"] = *u.Description
	}
	if u.IsPublic != nil {
		changes["isPublic"] = *u.IsPublic
	}
	if u.IsActive != nil {
		changes["isActive"] = *u.IsActive
	}
	return changes
}
