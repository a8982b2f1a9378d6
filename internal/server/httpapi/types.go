package httpapi

import (
	"time"

	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/services"
)

type createDocumentRequest struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	DocType     string `json:"docType"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

type updateDocumentRequest struct {
	Title       *string `json:"title"`
	DocType     *string `json:"docType"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"isPublic"`
	IsActive    *bool   `json:"isActive"`
}

type deleteRequest struct {
	Reason string `json:"reason"`
}

type createVersionRequest struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

type updateContentRequest struct {
	Content string `json:"content"`
}

type publishRequest struct {
	EffectiveFrom *time.Time `json:"effectiveFrom"`
	Reason        string     `json:"reason"`
}

type documentResponse struct {
	ID               string     `json:"id"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	DocType          string     `json:"docType"`
	Description      string     `json:"description"`
	IsPublic         bool       `json:"isPublic"`
	IsPublished      bool       `json:"isPublished"`
	IsActive         bool       `json:"isActive"`
	CurrentVersionID string     `json:"currentVersionId,omitempty"`
	CreatedBy        string     `json:"createdBy"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	DeletedAt        *time.Time `json:"deletedAt,omitempty"`
}

func toDocumentResponse(d *models.LegalDocument) documentResponse {
	return documentResponse{
		ID:               d.ID,
		Slug:             d.Slug,
		Title:            d.Title,
		DocType:          d.DocType,
		Description:      d.Description,
		IsPublic:         d.IsPublic,
		IsPublished:      d.IsPublished,
		IsActive:         d.IsActive,
		CurrentVersionID: d.CurrentVersionID,
		CreatedBy:        d.CreatedBy,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		DeletedAt:        d.DeletedAt,
	}
}

func toDocumentResponses(docs []*models.LegalDocument) []documentResponse {
	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentResponse(d))
	}
	return out
}

type versionResponse struct {
	ID            string     `json:"id"`
	DocumentID    string     `json:"documentId"`
	VersionNumber int        `json:"versionNumber"`
	VersionLabel  string     `json:"versionLabel"`
	Content       string     `json:"content"`
	ContentHash   string     `json:"contentHash"`
	ContentType   string     `json:"contentType"`
	Status        string     `json:"status"`
	IsLocked      bool       `json:"isLocked"`
	PublishedBy   string     `json:"publishedBy,omitempty"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	ArchivedBy    string     `json:"archivedBy,omitempty"`
	ArchivedAt    *time.Time `json:"archivedAt,omitempty"`
	ArchiveReason string     `json:"archiveReason,omitempty"`
	EffectiveFrom *time.Time `json:"effectiveFrom,omitempty"`
	EffectiveTo   *time.Time `json:"effectiveTo,omitempty"`
	CreatedBy     string     `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func toVersionResponse(v *models.DocumentVersion) versionResponse {
	return versionResponse{
		ID:            v.ID,
		DocumentID:    v.DocumentID,
		VersionNumber: v.VersionNumber,
		VersionLabel:  v.VersionLabel,
		Content:       v.Content,
		ContentHash:   v.ContentHash,
		ContentType:   v.ContentType,
		Status:        string(v.Status),
		IsLocked:      v.IsLocked,
		PublishedBy:   v.PublishedBy,
		PublishedAt:   v.PublishedAt,
		ArchivedBy:    v.ArchivedBy,
		ArchivedAt:    v.ArchivedAt,
		ArchiveReason: v.ArchiveReason,
		EffectiveFrom: v.EffectiveFrom,
		EffectiveTo:   v.EffectiveTo,
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt,
	}
}

func toVersionResponses(vers []*models.DocumentVersion) []versionResponse {
	out := make([]versionResponse, 0, len(vers))
	for _, v := range vers {
		out = append(out, toVersionResponse(v))
	}
	return out
}

type attachmentResponse struct {
	ID          string    `json:"id"`
	VersionID   string    `json:"versionId"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	MimeType    string    `json:"mimeType"`
	FileHash    string    `json:"fileHash"`
	Description string    `json:"description,omitempty"`
	UploadedBy  string    `json:"uploadedBy"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

func toAttachmentResponse(a *models.DocumentAttachment) attachmentResponse {
	return attachmentResponse{
		ID:          a.ID,
		VersionID:   a.VersionID,
		FileName:    a.FileName,
		FileSize:    a.FileSize,
		MimeType:    a.MimeType,
		FileHash:    a.FileHash,
		Description: a.Description,
		UploadedBy:  a.UploadedBy,
		UploadedAt:  a.UploadedAt,
	}
}

func toAttachmentResponses(atts []*models.DocumentAttachment) []attachmentResponse {
	out := make([]attachmentResponse, 0, len(atts))
	for _, a := range atts {
		out = append(out, toAttachmentResponse(a))
	}
	return out
}

type auditEntryResponse struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"documentId"`
	VersionID  string         `json:"versionId,omitempty"`
	Action     string         `json:"action"`
	UserID     string         `json:"userId"`
	Changes    map[string]any `json:"changes,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func toAuditEntryResponses(entries []*models.AuditEntry) []auditEntryResponse {
	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:         e.ID,
			DocumentID: e.DocumentID,
			VersionID:  e.VersionID,
			Action:     string(e.Action),
			UserID:     e.UserID,
			Changes:    e.Changes,
			Reason:     e.Reason,
			IPAddress:  e.IPAddress,
			UserAgent:  e.UserAgent,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}

type checkResultResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

func toCheckResultResponse(c *services.CheckResult) checkResultResponse {
	return checkResultResponse{Valid: c.Valid, Message: c.Message}
}
