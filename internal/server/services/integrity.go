package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docvault/internal/hashx"
	"github.com/dmitrijs2005/docvault/internal/server/blob"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
)

// CheckResult is the outcome of an integrity verification: a boolean
// finding plus an explanatory message. Verifications report tampering,
// they never fail because of it.
type CheckResult struct {
	Valid   bool
	Message string
}

// IntegrityService recomputes digests on demand and compares them against
// the values captured at creation time. Read-only and side-effect free;
// the only errors it returns are for records that cannot be found at all.
type IntegrityService struct {
	db    *sql.DB
	rm    repomanager.RepositoryManager
	blobs blob.Store
}

func NewIntegrityService(db *sql.DB, rm repomanager.RepositoryManager, blobs blob.Store) *IntegrityService {
	return &IntegrityService{db: db, rm: rm, blobs: blobs}
}

// VerifyContent recomputes the SHA-256 of the version's content and
// compares it with the digest stored at creation. A mismatch means the
// content was corrupted out-of-band; detection is the goal, prevention is
// not possible here.
func (s *IntegrityService) VerifyContent(ctx context.Context, versionID string) (*CheckResult, error) {
	v, err := s.rm.Versions(s.db).GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}

	if hashx.SumHexString(v.Content) != v.ContentHash {
		return &CheckResult{
			Valid:   false,
			Message: "content does not match the digest recorded at creation",
		}, nil
	}
	return &CheckResult{Valid: true, Message: "content hash verified"}, nil
}

// VerifyAttachment recomputes the SHA-256 of the stored file bytes and
// compares it with the recorded file hash. An unreadable blob is reported
// as a failed check, not an error: the verification endpoint must not
// crash on the very condition it exists to detect.
func (s *IntegrityService) VerifyAttachment(ctx context.Context, attachmentID string) (*CheckResult, error) {
	att, err := s.rm.Attachments(s.db).GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}

	data, err := s.blobs.Get(ctx, att.FilePath)
	if err != nil {
		return &CheckResult{
			Valid:   false,
			Message: "stored file could not be read",
		}, nil
	}

	if !hashx.Matches(att.FileHash, data) {
		return &CheckResult{
			Valid:   false,
			Message: "stored file does not match the digest recorded at upload",
		}, nil
	}
	return &CheckResult{Valid: true, Message: "file hash verified"}, nil
}
