package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/versions"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// newTestDB returns an in-memory database used only to satisfy the
// Begin/Commit cycle of WithTx; all state lives in fakeState.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeState is the shared in-memory backing store of the fake
// repositories. Not safe for concurrent use; the tests are sequential.
type fakeState struct {
	docs  map[string]*models.LegalDocument
	vers  map[string]*models.DocumentVersion
	atts  map[string]*models.DocumentAttachment
	audit []*models.AuditEntry
}

type fakeRepoManager struct {
	st *fakeState
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{st: &fakeState{
		docs: make(map[string]*models.LegalDocument),
		vers: make(map[string]*models.DocumentVersion),
		atts: make(map[string]*models.DocumentAttachment),
	}}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeRepoManager) Documents(db dbx.DBTX) documents.Repository {
	return &fakeDocuments{st: m.st}
}

func (m *fakeRepoManager) Versions(db dbx.DBTX) versions.Repository {
	return &fakeVersions{st: m.st}
}

func (m *fakeRepoManager) Attachments(db dbx.DBTX) attachments.Repository {
	return &fakeAttachments{st: m.st}
}

func (m *fakeRepoManager) AuditLog(db dbx.DBTX) auditlog.Repository {
	return &fakeAuditLog{st: m.st}
}

type fakeDocuments struct {
	st *fakeState
}

func (r *fakeDocuments) Create(ctx context.Context, doc *models.LegalDocument) error {
	for _, d := range r.st.docs {
		if !d.Deleted() && d.Slug == doc.Slug {
			return fmt.Errorf("slug %q: %w", doc.Slug, common.ErrorConflict)
		}
	}
	cp := *doc
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.st.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocuments) get(id string) (*models.LegalDocument, error) {
	d, ok := r.st.docs[id]
	if !ok || d.Deleted() {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrorNotFound)
	}
	return d, nil
}

func (r *fakeDocuments) GetByID(ctx context.Context, id string) (*models.LegalDocument, error) {
	d, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocuments) GetByIDForUpdate(ctx context.Context, id string) (*models.LegalDocument, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeDocuments) GetBySlug(ctx context.Context, slug string) (*models.LegalDocument, error) {
	for _, d := range r.st.docs {
		if !d.Deleted() && d.Slug == slug {
			cp := *d
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("document %q: %w", slug, common.ErrorNotFound)
}

func (r *fakeDocuments) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.GetBySlug(ctx, slug)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *fakeDocuments) List(ctx context.Context, f documents.ListFilter) ([]*models.LegalDocument, error) {
	var out []*models.LegalDocument
	for _, d := range r.st.docs {
		if d.Deleted() && !f.IncludeDeleted {
			continue
		}
		if f.DocType != "" && d.DocType != f.DocType {
			continue
		}
		if f.OnlyActive && !d.IsActive {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *fakeDocuments) UpdateMetadata(ctx context.Context, id string, u documents.MetadataUpdate) error {
	d, err := r.get(id)
	if err != nil {
		return err
	}
	if u.Title != nil {
		d.Title = *u.Title
	}
	if u.DocType != nil {
		d.DocType = *u.DocType
	}
	if u.Description != nil {
		d.Description = *u.Description
	}
	if u.IsPublic != nil {
		d.IsPublic = *u.IsPublic
	}
	if u.IsActive != nil {
		d.IsActive = *u.IsActive
	}
	d.UpdatedAt = time.Now()
	return nil
}

func (r *fakeDocuments) SetCurrentVersion(ctx context.Context, id, versionID string) error {
	d, err := r.get(id)
	if err != nil {
		return err
	}
	d.CurrentVersionID = versionID
	d.IsPublished = true
	d.UpdatedAt = time.Now()
	return nil
}

func (r *fakeDocuments) SoftDelete(ctx context.Context, id, deletedBy string) error {
	d, err := r.get(id)
	if err != nil {
		return err
	}
	now := time.Now()
	d.DeletedAt = &now
	d.DeletedBy = deletedBy
	d.IsActive = false
	return nil
}

type fakeVersions struct {
	st *fakeState
}

func (r *fakeVersions) Create(ctx context.Context, v *models.DocumentVersion) error {
	cp := *v
	cp.CreatedAt = time.Now()
	r.st.vers[v.ID] = &cp
	return nil
}

func (r *fakeVersions) get(id string) (*models.DocumentVersion, error) {
	v, ok := r.st.vers[id]
	if !ok {
		return nil, fmt.Errorf("version %s: %w", id, common.ErrorNotFound)
	}
	return v, nil
}

func (r *fakeVersions) GetByID(ctx context.Context, id string) (*models.DocumentVersion, error) {
	v, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVersions) LatestVersionNumber(ctx context.Context, documentID string) (int, error) {
	max := 0
	for _, v := range r.st.vers {
		if v.DocumentID == documentID && v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max, nil
}

func (r *fakeVersions) ListByDocument(ctx context.Context, documentID string) ([]*models.DocumentVersion, error) {
	var out []*models.DocumentVersion
	for _, v := range r.st.vers {
		if v.DocumentID == documentID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (r *fakeVersions) UpdateDraftContent(ctx context.Context, id, content, contentHash string) error {
	v, err := r.get(id)
	if err != nil {
		return err
	}
	if v.IsLocked || v.Status != models.StatusDraft {
		return fmt.Errorf("version %s: %w", id, common.ErrorVersionLocked)
	}
	v.Content = content
	v.ContentHash = contentHash
	return nil
}

func (r *fakeVersions) Publish(ctx context.Context, id string, u versions.PublishUpdate) error {
	v, err := r.get(id)
	if err != nil {
		return err
	}
	if v.IsLocked || v.Status != models.StatusDraft {
		return fmt.Errorf("version %s is not an unlocked draft: %w", id, common.ErrorConflict)
	}
	v.Status = models.StatusPublished
	v.IsLocked = true
	lockedAt := u.PublishedAt
	v.LockedAt = &lockedAt
	v.PublishedBy = u.PublishedBy
	publishedAt := u.PublishedAt
	v.PublishedAt = &publishedAt
	effectiveFrom := u.EffectiveFrom
	v.EffectiveFrom = &effectiveFrom
	return nil
}

func (r *fakeVersions) Archive(ctx context.Context, id, archivedBy, reason string, at time.Time) error {
	v, err := r.get(id)
	if err != nil {
		return err
	}
	if v.Status != models.StatusPublished {
		return fmt.Errorf("version %s is not published: %w", id, common.ErrorConflict)
	}
	v.Status = models.StatusArchived
	v.ArchivedBy = archivedBy
	archivedAt := at
	v.ArchivedAt = &archivedAt
	v.ArchiveReason = reason
	effectiveTo := at
	v.EffectiveTo = &effectiveTo
	return nil
}

type fakeAttachments struct {
	st *fakeState
}

func (r *fakeAttachments) Create(ctx context.Context, a *models.DocumentAttachment) error {
	cp := *a
	cp.UploadedAt = time.Now()
	r.st.atts[a.ID] = &cp
	return nil
}

func (r *fakeAttachments) GetByID(ctx context.Context, id string) (*models.DocumentAttachment, error) {
	a, ok := r.st.atts[id]
	if !ok || a.Deleted() {
		return nil, fmt.Errorf("attachment %s: %w", id, common.ErrorNotFound)
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAttachments) FindByVersionAndHash(ctx context.Context, versionID, fileHash string) (*models.DocumentAttachment, error) {
	for _, a := range r.st.atts {
		if !a.Deleted() && a.VersionID == versionID && a.FileHash == fileHash {
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("attachment for version %s: %w", versionID, common.ErrorNotFound)
}

func (r *fakeAttachments) ListByVersion(ctx context.Context, versionID string) ([]*models.DocumentAttachment, error) {
	var out []*models.DocumentAttachment
	for _, a := range r.st.atts {
		if !a.Deleted() && a.VersionID == versionID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileName < out[j].FileName })
	return out, nil
}

func (r *fakeAttachments) SoftDelete(ctx context.Context, id, deletedBy string) error {
	a, ok := r.st.atts[id]
	if !ok || a.Deleted() {
		return fmt.Errorf("attachment %s: %w", id, common.ErrorNotFound)
	}
	now := time.Now()
	a.DeletedAt = &now
	a.DeletedBy = deletedBy
	return nil
}

type fakeAuditLog struct {
	st *fakeState
}

func (r *fakeAuditLog) Append(ctx context.Context, e *models.AuditEntry) error {
	cp := *e
	r.st.audit = append(r.st.audit, &cp)
	return nil
}

func (r *fakeAuditLog) ListByDocument(ctx context.Context, documentID string, limit int) ([]*models.AuditEntry, error) {
	var out []*models.AuditEntry
	for i := len(r.st.audit) - 1; i >= 0 && len(out) < limit; i-- {
		if r.st.audit[i].DocumentID == documentID {
			cp := *r.st.audit[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// auditActions flattens the recorded trail oldest-first for assertions.
func auditActions(st *fakeState, documentID string) []models.AuditAction {
	var out []models.AuditAction
	for _, e := range st.audit {
		if e.DocumentID == documentID {
			out = append(out, e.Action)
		}
	}
	return out
}

func lastAudit(t *testing.T, st *fakeState) *models.AuditEntry {
	t.Helper()
	require.NotEmpty(t, st.audit)
	return st.audit[len(st.audit)-1]
}
