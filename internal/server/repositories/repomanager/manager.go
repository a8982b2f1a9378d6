// Package repomanager wires entity repositories to a database handle.
// Repositories are constructed per-DBTX so the same methods run standalone
// against *sql.DB or composed inside a multi-entity *sql.Tx.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/versions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Documents(db dbx.DBTX) documents.Repository
	Versions(db dbx.DBTX) versions.Repository
	Attachments(db dbx.DBTX) attachments.Repository
	AuditLog(db dbx.DBTX) auditlog.Repository
}
