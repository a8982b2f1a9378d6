// Package services implements the document, version, attachment, audit,
// and integrity operations. Every mutating operation runs its store writes
// and its audit append inside one dbx.WithTx unit of work; a failed audit
// write rolls back the mutation it documents.
package services

// Actor identifies the authenticated caller of a mutating operation,
// together with the request metadata recorded in the audit trail. The
// surrounding request layer authenticates and authorizes the actor; this
// package only records who acted.
type Actor struct {
	ID        string
	IP        string
	UserAgent string
}
