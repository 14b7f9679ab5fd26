package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docvault/internal/logger"
	"docvault/internal/model"
	"docvault/internal/repository"
)

var (
	// documentCreateColumns are written on insert.
	documentCreateColumns = []string{
		"id", "report_id", "filename", "file_hash", "storage_path",
		"parsed_content", "notes", "created_at", "updated_at", "deleted_at",
	}
	// documentUpdateColumns are rewritten when the id already exists. Ownership,
	// the dedup hash and the blob reference never change after insert.
	documentUpdateColumns = []string{"filename", "parsed_content", "notes", "updated_at", "deleted_at"}
)

// DocumentPostgres is a gorm implementation of repository.DocumentRepository.
type DocumentPostgres struct {
	db   *gorm.DB
	opts options
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *gorm.DB, opts ...Option) *DocumentPostgres {
	return &DocumentPostgres{db: db, opts: buildOptions(opts)}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// FindByID fetches a single document by its ID, deleted or not.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	return r.take(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByReport returns the report's documents, newest first.
func (r *DocumentPostgres) FindByReport(ctx context.Context, reportID string, includeDeleted bool) ([]model.Document, error) {
	var rows []documentRow
	err := r.db.WithContext(ctx).
		Scopes(listScopes("report_id", reportID, includeDeleted)...).
		Order(newestFirst).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return documentsFromRows(rows), nil
}

// FindByHash looks for an active document with the same content in the report.
func (r *DocumentPostgres) FindByHash(ctx context.Context, reportID, fileHash string) (*model.Document, error) {
	return r.take(r.db.WithContext(ctx).
		Scopes(whereEq("report_id", reportID), whereEq("file_hash", fileHash), activeOnly).
		Order(newestFirst))
}

// Save upserts the document and reads it back.
func (r *DocumentPostgres) Save(ctx context.Context, doc *model.Document) (*model.Document, error) {
	row := newDocumentRow(doc)
	err := r.db.WithContext(ctx).
		Select(documentCreateColumns).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(documentUpdateColumns),
		}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, doc.ID)
}

// Delete soft-deletes the document. It does not return an error if the row
// does not exist or the update fails.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	now := r.opts.now()
	err := r.db.WithContext(ctx).
		Model(&documentRow{}).
		Where("id = ?", id).
		Scopes(activeOnly).
		Updates(map[string]any{"deleted_at": now, "updated_at": now}).Error
	if err != nil {
		logger.From(ctx).Warn("document soft delete failed", logger.DocumentID(id), zap.Error(err))
	}
	return nil
}

// Search matches filename, notes and parsed content.
func (r *DocumentPostgres) Search(ctx context.Context, reportID, query string) ([]model.Document, error) {
	var rows []documentRow
	err := r.db.WithContext(ctx).
		Scopes(whereEq("report_id", reportID), activeOnly, matchesAny(repository.ContainsPattern(query), "filename", "notes", "parsed_content")).
		Order(newestFirst).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return documentsFromRows(rows), nil
}

func (r *DocumentPostgres) take(q *gorm.DB) (*model.Document, error) {
	var row documentRow
	err := q.Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := row.toModel()
	return &out, nil
}

func documentsFromRows(rows []documentRow) []model.Document {
	items := make([]model.Document, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return items
}
