package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrityService_VerifyContent(t *testing.T) {
	ctx := context.Background()
	f := newAttachmentFixture(t)
	svc := NewIntegrityService(newTestDB(t), f.rm, f.blobs)

	t.Run("intact content verifies", func(t *testing.T) {
		check, err := svc.VerifyContent(ctx, f.version.ID)
		require.NoError(t, err)
		assert.True(t, check.Valid)
	})

	t.Run("out-of-band corruption is detected", func(t *testing.T) {
		// Simulate a direct database edit that bypassed the service layer.
		f.rm.st.vers[f.version.ID].Content = "quietly rewritten"

		check, err := svc.VerifyContent(ctx, f.version.ID)
		require.NoError(t, err)
		assert.False(t, check.Valid)
		assert.Contains(t, check.Message, "does not match")
	})

	t.Run("unknown version errors", func(t *testing.T) {
		_, err := svc.VerifyContent(ctx, "missing")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestIntegrityService_VerifyAttachment(t *testing.T) {
	ctx := context.Background()
	f := newAttachmentFixture(t)
	svc := NewIntegrityService(newTestDB(t), f.rm, f.blobs)

	att, err := f.atts.Upload(ctx, f.version.ID, pdfUpload("a.pdf", pdfBytes), "", testActor)
	require.NoError(t, err)

	t.Run("intact file verifies", func(t *testing.T) {
		check, err := svc.VerifyAttachment(ctx, att.ID)
		require.NoError(t, err)
		assert.True(t, check.Valid)
	})

	t.Run("tampered file fails the check without erroring", func(t *testing.T) {
		f.blobs.Corrupt(att.FilePath, []byte("%PDF- swapped"))

		check, err := svc.VerifyAttachment(ctx, att.ID)
		require.NoError(t, err)
		assert.False(t, check.Valid)
	})

	t.Run("unreadable blob fails the check without erroring", func(t *testing.T) {
		f.rm.st.atts[att.ID].FilePath = "attachments/lost.pdf"

		check, err := svc.VerifyAttachment(ctx, att.ID)
		require.NoError(t, err)
		assert.False(t, check.Valid)
		assert.Contains(t, check.Message, "could not be read")
	})

	t.Run("unknown attachment errors", func(t *testing.T) {
		_, err := svc.VerifyAttachment(ctx, "missing")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestAuditService_History(t *testing.T) {
	ctx := context.Background()
	f := newAttachmentFixture(t)
	svc := NewAuditService(newTestDB(t), f.rm)

	entries, err := svc.History(ctx, f.doc.ID)
	require.NoError(t, err)
	// Fixture setup produced CREATED then VERSION_CREATED; newest first.
	require.Len(t, entries, 2)
	assert.Equal(t, "VERSION_CREATED", string(entries[0].Action))
	assert.Equal(t, "CREATED", string(entries[1].Action))
}
