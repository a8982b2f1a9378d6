package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/hashx"
	"github.com/dmitrijs2005/docvault/internal/server/blob"
	sc "github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfBytes = []byte("%PDF-1.7 fake body for tests")

func pdfUpload(name string, data []byte) FileUpload {
	return FileUpload{
		FileName: name,
		MimeType: "application/pdf",
		Size:     int64(len(data)),
		Data:     data,
	}
}

type attachmentFixture struct {
	docs    *DocumentService
	vers    *VersionService
	atts    *AttachmentService
	blobs   *blob.MemoryStore
	rm      *fakeRepoManager
	doc     *models.LegalDocument
	version *models.DocumentVersion
}

func newAttachmentFixture(t *testing.T) *attachmentFixture {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)
	rm := newFakeRepoManager()
	blobs := blob.NewMemoryStore()
	cfg := &sc.Config{MaxUploadSize: 1 << 20, PublishRetries: 3}

	f := &attachmentFixture{
		docs:  NewDocumentService(db, rm),
		vers:  NewVersionService(db, rm, cfg),
		atts:  NewAttachmentService(db, rm, blobs, cfg),
		blobs: blobs,
		rm:    rm,
	}

	var err error
	f.doc, err = f.docs.Create(ctx, CreateDocumentParams{Slug: "lease", Title: "Lease Agreement"}, testActor)
	require.NoError(t, err)
	f.version, err = f.vers.Create(ctx, f.doc.ID, CreateVersionParams{Content: "lease text"}, testActor)
	require.NoError(t, err)

	return f
}

func TestAttachmentService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a valid pdf", func(t *testing.T) {
		f := newAttachmentFixture(t)

		att, err := f.atts.Upload(ctx, f.version.ID, pdfUpload("signed.pdf", pdfBytes), "signed copy", testActor)
		require.NoError(t, err)

		assert.Equal(t, "signed.pdf", att.FileName)
		assert.Equal(t, int64(len(pdfBytes)), att.FileSize)
		assert.Equal(t, hashx.SumHex(pdfBytes), att.FileHash)
		assert.Equal(t, "signed copy", att.Description)
		assert.Equal(t, "user1", att.UploadedBy)

		stored, err := f.blobs.Get(ctx, att.FilePath)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(pdfBytes, stored))

		entry := lastAudit(t, f.rm.st)
		assert.Equal(t, models.ActionContentModified, entry.Action)
		assert.Equal(t, "PDF_UPLOADED", entry.Changes["action"])
		assert.Equal(t, att.FileHash, entry.Changes["fileHash"])
	})

	t.Run("rejects non-pdf media type", func(t *testing.T) {
		f := newAttachmentFixture(t)

		up := pdfUpload("doc.docx", pdfBytes)
		up.MimeType = "application/msword"

		_, err := f.atts.Upload(ctx, f.version.ID, up, "", testActor)
		assert.ErrorIs(t, err, common.ErrorBadRequest)
		assert.Contains(t, err.Error(), "unsupported media type")
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		f := newAttachmentFixture(t)

		big := append([]byte("%PDF-"), bytes.Repeat([]byte("x"), 1<<20)...)

		_, err := f.atts.Upload(ctx, f.version.ID, pdfUpload("big.pdf", big), "", testActor)
		assert.ErrorIs(t, err, common.ErrorBadRequest)
		assert.Contains(t, err.Error(), "exceeds")
	})

	t.Run("rejects payload without pdf signature", func(t *testing.T) {
		f := newAttachmentFixture(t)

		_, err := f.atts.Upload(ctx, f.version.ID, pdfUpload("fake.pdf", []byte("MZ not a pdf")), "", testActor)
		assert.ErrorIs(t, err, common.ErrorBadRequest)
		assert.Contains(t, err.Error(), "not a PDF")
	})

	t.Run("rejects duplicate content on the same version", func(t *testing.T) {
		f := newAttachmentFixture(t)

		_, err := f.atts.Upload(ctx, f.version.ID, pdfUpload("a.pdf", pdfBytes), "", testActor)
		require.NoError(t, err)

		_, err = f.atts.Upload(ctx, f.version.ID, pdfUpload("b.pdf", pdfBytes), "", testActor)
		assert.ErrorIs(t, err, common.ErrorConflict)
	})

	t.Run("same content on another version is allowed", func(t *testing.T) {
		f := newAttachmentFixture(t)

		_, err := f.atts.Upload(ctx, f.version.ID, pdfUpload("a.pdf", pdfBytes), "", testActor)
		require.NoError(t, err)

		v2, err := f.vers.Create(ctx, f.doc.ID, CreateVersionParams{Content: "lease text v2"}, testActor)
		require.NoError(t, err)

		_, err = f.atts.Upload(ctx, v2.ID, pdfUpload("a.pdf", pdfBytes), "", testActor)
		assert.NoError(t, err)
	})

	t.Run("locked version rejects uploads", func(t *testing.T) {
		f := newAttachmentFixture(t)

		_, err := f.vers.Publish(ctx, f.doc.ID, f.version.ID, PublishParams{}, testActor)
		require.NoError(t, err)

		_, err = f.atts.Upload(ctx, f.version.ID, pdfUpload("late.pdf", pdfBytes), "", testActor)
		assert.ErrorIs(t, err, common.ErrorVersionLocked)
	})

	t.Run("unknown version", func(t *testing.T) {
		f := newAttachmentFixture(t)

		_, err := f.atts.Upload(ctx, "missing", pdfUpload("a.pdf", pdfBytes), "", testActor)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestAttachmentService_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("serves intact files", func(t *testing.T) {
		f := newAttachmentFixture(t)

		att, err := f.atts.Upload(ctx, f.version.ID, pdfUpload("a.pdf", pdfBytes), "", testActor)
		require.NoError(t, err)

		got, data, err := f.atts.Download(ctx, att.ID)
		require.NoError(t, err)
		assert.Equal(t, att.ID, got.ID)
		assert.True(t, bytes.Equal(pdfBytes, data))
	})

	t.Run("refuses tampered files", func(t *testing.T) {
		f := newAttachmentFixture(t)

		att, err := f.atts.Upload(ctx, f.version.ID, pdfUpload("a.pdf", pdfBytes), "", testActor)
		require.NoError(t, err)

		f.blobs.Corrupt(att.FilePath, []byte("%PDF- tampered"))

		_, _, err = f.atts.Download(ctx, att.ID)
		assert.ErrorIs(t, err, common.ErrorIntegrity)
	})
}

func TestAttachmentService_SoftDelete(t *testing.T) {
	ctx := context.Background()
	f := newAttachmentFixture(t)

	att, err := f.atts.Upload(ctx, f.version.ID, pdfUpload("a.pdf", pdfBytes), "", testActor)
	require.NoError(t, err)

	err = f.atts.SoftDelete(ctx, att.ID, "uploaded by mistake", testActor)
	require.NoError(t, err)

	entry := lastAudit(t, f.rm.st)
	assert.Equal(t, models.ActionDeleted, entry.Action)
	assert.Equal(t, "PDF_DELETED", entry.Changes["action"])
	assert.Equal(t, "uploaded by mistake", entry.Reason)

	_, err = f.atts.Get(ctx, att.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	list, err := f.atts.ListByVersion(ctx, f.version.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	// The blob outlives the record.
	_, err = f.blobs.Get(ctx, att.FilePath)
	assert.NoError(t, err)
}
