package repository

import (
	"context"

	"docvault/internal/model"
)

// DocumentRepository defines data access for documents. Documents are always
// scoped by their owning report.
type DocumentRepository interface {
	// FindByID returns the document regardless of soft-delete state,
	// or nil and no error if no row exists.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByReport lists a report's documents, newest first. Soft-deleted rows
	// are excluded unless includeDeleted is true, in which case no filter applies.
	FindByReport(ctx context.Context, reportID string, includeDeleted bool) ([]model.Document, error)

	// FindByHash returns the active document in reportID with the given content
	// hash, or nil. Soft-deleted rows never match, so deleting a document frees
	// its hash for reuse.
	FindByHash(ctx context.Context, reportID, fileHash string) (*model.Document, error)

	// Save inserts the document or, if the id exists, updates its mutable fields
	// (filename, parsed content, notes, timestamps, deleted marker). Report id,
	// file hash, storage path and created_at are written only on insert.
	// Returns the row as persisted.
	Save(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Delete soft-deletes the document. A missing id is not an error, and
	// store failures are not reported.
	Delete(ctx context.Context, id string) error

	// Search matches query case-insensitively as a substring of filename, notes
	// or parsed content among the report's active documents, newest first.
	Search(ctx context.Context, reportID, query string) ([]model.Document, error)
}
