// Package httpapi exposes the document, version, attachment, audit, and
// integrity operations over HTTP. Handlers translate between JSON and the
// service layer; all policy lives in the services.
package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/logging"
	sc "github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// The service interfaces list exactly the operations the handlers call.
// The concrete services satisfy them; tests substitute stubs.

type DocumentAPI interface {
	Create(ctx context.Context, p services.CreateDocumentParams, actor services.Actor) (*models.LegalDocument, error)
	Get(ctx context.Context, id string) (*models.LegalDocument, error)
	List(ctx context.Context, f documents.ListFilter) ([]*models.LegalDocument, error)
	GetPublicBySlug(ctx context.Context, slug string) (*models.LegalDocument, error)
	UpdateMetadata(ctx context.Context, id string, u documents.MetadataUpdate, actor services.Actor) (*models.LegalDocument, error)
	SoftDelete(ctx context.Context, id, reason string, actor services.Actor) (*models.LegalDocument, error)
}

type VersionAPI interface {
	Create(ctx context.Context, documentID string, p services.CreateVersionParams, actor services.Actor) (*models.DocumentVersion, error)
	Get(ctx context.Context, versionID string) (*models.DocumentVersion, error)
	ListByDocument(ctx context.Context, documentID string) ([]*models.DocumentVersion, error)
	UpdateDraftContent(ctx context.Context, versionID, content string, actor services.Actor) (*models.DocumentVersion, error)
	Publish(ctx context.Context, documentID, versionID string, p services.PublishParams, actor services.Actor) (*models.DocumentVersion, error)
}

type AttachmentAPI interface {
	Upload(ctx context.Context, versionID string, up services.FileUpload, description string, actor services.Actor) (*models.DocumentAttachment, error)
	Get(ctx context.Context, attachmentID string) (*models.DocumentAttachment, error)
	ListByVersion(ctx context.Context, versionID string) ([]*models.DocumentAttachment, error)
	Download(ctx context.Context, attachmentID string) (*models.DocumentAttachment, []byte, error)
	SoftDelete(ctx context.Context, attachmentID, reason string, actor services.Actor) error
}

type IntegrityAPI interface {
	VerifyContent(ctx context.Context, versionID string) (*services.CheckResult, error)
	VerifyAttachment(ctx context.Context, attachmentID string) (*services.CheckResult, error)
}

type AuditAPI interface {
	History(ctx context.Context, documentID string) ([]*models.AuditEntry, error)
}

// Handler holds the service dependencies of the HTTP surface.
type Handler struct {
	documents   DocumentAPI
	versions    VersionAPI
	attachments AttachmentAPI
	integrity   IntegrityAPI
	audit       AuditAPI

	logger        logging.Logger
	secretKey     []byte
	maxUploadSize int64
}

func NewHandler(
	documents DocumentAPI,
	versions VersionAPI,
	attachments AttachmentAPI,
	integrity IntegrityAPI,
	audit AuditAPI,
	logger logging.Logger,
	config *sc.Config,
) *Handler {
	return &Handler{
		documents:     documents,
		versions:      versions,
		attachments:   attachments,
		integrity:     integrity,
		audit:         audit,
		logger:        logger,
		secretKey:     []byte(config.SecretKey),
		maxUploadSize: config.MaxUploadSize,
	}
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) createDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := readJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	doc, err := h.documents.Create(r.Context(), services.CreateDocumentParams{
		Slug:        req.Slug,
		Title:       req.Title,
		DocType:     req.DocType,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}, actorFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := documents.ListFilter{
		DocType:        q.Get("docType"),
		OnlyActive:     q.Get("onlyActive") == "true",
		IncludeDeleted: q.Get("includeDeleted") == "true",
	}

	docs, err := h.documents.List(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponses(docs))
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (h *Handler) getPublicDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.GetPublicBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (h *Handler) updateDocument(w http.ResponseWriter, r *http.Request) {
	var req updateDocumentRequest
	if err := readJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	doc, err := h.documents.UpdateMetadata(r.Context(), chi.URLParam(r, "documentID"), documents.MetadataUpdate{
		Title:       req.Title,
		DocType:     req.DocType,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		IsActive:    req.IsActive,
	}, actorFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	doc, err := h.documents.SoftDelete(r.Context(), chi.URLParam(r, "documentID"), req.Reason, actorFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (h *Handler) documentHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audit.History(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditEntryResponses(entries))
}

func (h *Handler) createVersion(w http.ResponseWriter, r *http.Request) {
	var req createVersionRequest
	if err := readJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	v, err := h.versions.Create(r.Context(), chi.URLParam(r, "documentID"), services.CreateVersionParams{
		Content:     req.Content,
		ContentType: req.ContentType,
	}, actorFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toVersionResponse(v))
}

func (h *Handler) listVersions(w http.ResponseWriter, r *http.Request) {
	vers, err := h.versions.ListByDocument(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVersionResponses(vers))
}

func (h *Handler) getVersion(w http.ResponseWriter, r *http.Request) {
	v, err := h.versions.Get(r.Context(), chi.URLParam(r, "versionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVersionResponse(v))
}

func (h *Handler) updateVersionContent(w http.ResponseWriter, r *http.Request) {
	var req updateContentRequest
	if err := readJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	v, err := h.versions.UpdateDraftContent(r.Context(), chi.URLParam(r, "versionID"), req.Content, actorFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toVersionResponse(v))
}

func (h *Handler) publishVersion(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	v, err := h.versions.Publish(r.Context(),
		chi.URLParam(r, "documentID"), chi.URLParam(r, "versionID"),
		services.PublishParams{EffectiveFrom: req.EffectiveFrom, Reason: req.Reason},
		actorFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toVersionResponse(v))
}

func (h *Handler) verifyVersion(w http.ResponseWriter, r *http.Request) {
	check, err := h.integrity.VerifyContent(r.Context(), chi.URLParam(r, "versionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckResultResponse(check))
}

func (h *Handler) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	// Parse one byte past the limit so the size decision stays in the
	// service, which reports the overflow as a 400.
	if err := r.ParseMultipartForm(h.maxUploadSize + 1); err != nil {
		h.writeError(w, r, fmt.Errorf("invalid multipart form: %w", common.ErrorBadRequest))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, fmt.Errorf("missing file field: %w", common.ErrorBadRequest))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	att, err := h.attachments.Upload(r.Context(), chi.URLParam(r, "versionID"), services.FileUpload{
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Data:     data,
	}, r.FormValue("description"), actorFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAttachmentResponse(att))
}

func (h *Handler) listAttachments(w http.ResponseWriter, r *http.Request) {
	atts, err := h.attachments.ListByVersion(r.Context(), chi.URLParam(r, "versionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttachmentResponses(atts))
}

func (h *Handler) getAttachment(w http.ResponseWriter, r *http.Request) {
	att, err := h.attachments.Get(r.Context(), chi.URLParam(r, "attachmentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttachmentResponse(att))
}

func (h *Handler) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	att, data, err := h.attachments.Download(r.Context(), chi.URLParam(r, "attachmentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", att.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.FileName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) verifyAttachment(w http.ResponseWriter, r *http.Request) {
	check, err := h.integrity.VerifyAttachment(r.Context(), chi.URLParam(r, "attachmentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckResultResponse(check))
}

func (h *Handler) deleteAttachment(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	err := h.attachments.SoftDelete(r.Context(), chi.URLParam(r, "attachmentID"), req.Reason, actorFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// Routes mounts the full API surface.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/ping", h.ping)
	r.Get("/api/public/documents/{slug}", h.getPublicDocument)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.authenticate)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", h.createDocument)
			r.Get("/", h.listDocuments)
			r.Get("/{documentID}", h.getDocument)
			r.Patch("/{documentID}", h.updateDocument)
			r.Delete("/{documentID}", h.deleteDocument)
			r.Get("/{documentID}/audit", h.documentHistory)

			r.Post("/{documentID}/versions", h.createVersion)
			r.Get("/{documentID}/versions", h.listVersions)
			r.Post("/{documentID}/versions/{versionID}/publish", h.publishVersion)
		})

		r.Route("/versions/{versionID}", func(r chi.Router) {
			r.Get("/", h.getVersion)
			r.Put("/content", h.updateVersionContent)
			r.Get("/verify", h.verifyVersion)
			r.Post("/attachments", h.uploadAttachment)
			r.Get("/attachments", h.listAttachments)
		})

		r.Route("/attachments/{attachmentID}", func(r chi.Router) {
			r.Get("/", h.getAttachment)
			r.Get("/download", h.downloadAttachment)
			r.Get("/verify", h.verifyAttachment)
			r.Delete("/", h.deleteAttachment)
		})
	})

	return r
}
