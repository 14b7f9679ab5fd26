package repository

import (
	"context"

	"docvault/internal/model"
)

// ReportRepository defines data access for reports. Semantics mirror
// DocumentRepository with the user as owner.
type ReportRepository interface {
	FindByID(ctx context.Context, id string) (*model.Report, error)

	// FindByUser lists a user's reports, newest first.
	FindByUser(ctx context.Context, userID string, includeDeleted bool) ([]model.Report, error)

	// Save upserts by id. User id and created_at are written only on insert.
	Save(ctx context.Context, report *model.Report) (*model.Report, error)

	Delete(ctx context.Context, id string) error

	// Search matches title or description among the user's active reports.
	Search(ctx context.Context, userID, query string) ([]model.Report, error)
}
