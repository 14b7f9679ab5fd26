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
	// reportCreateColumns are written on insert.
	reportCreateColumns = []string{"id", "user_id", "title", "description", "created_at", "updated_at", "deleted_at"}
	// reportUpdateColumns are rewritten when the id already exists; user_id and
	// created_at are deliberately absent.
	reportUpdateColumns = []string{"title", "description", "updated_at", "deleted_at"}
)

// ReportPostgres is a gorm implementation of repository.ReportRepository.
type ReportPostgres struct {
	db   *gorm.DB
	opts options
}

// NewReportPostgres creates a new ReportPostgres repository.
func NewReportPostgres(db *gorm.DB, opts ...Option) *ReportPostgres {
	return &ReportPostgres{db: db, opts: buildOptions(opts)}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

// FindByID fetches a report by id whether or not it is soft-deleted.
func (r *ReportPostgres) FindByID(ctx context.Context, id string) (*model.Report, error) {
	var row reportRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := row.toModel()
	return &out, nil
}

func (r *ReportPostgres) FindByUser(ctx context.Context, userID string, includeDeleted bool) ([]model.Report, error) {
	var rows []reportRow
	err := r.db.WithContext(ctx).
		Scopes(listScopes("user_id", userID, includeDeleted)...).
		Order(newestFirst).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return reportsFromRows(rows), nil
}

// Save upserts the report and reads it back.
func (r *ReportPostgres) Save(ctx context.Context, rep *model.Report) (*model.Report, error) {
	row := newReportRow(rep)
	err := r.db.WithContext(ctx).
		Select(reportCreateColumns).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(reportUpdateColumns),
		}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, rep.ID)
}

// Delete soft-deletes the report. Any failure, including a missing row, is
// logged and swallowed.
func (r *ReportPostgres) Delete(ctx context.Context, id string) error {
	now := r.opts.now()
	err := r.db.WithContext(ctx).
		Model(&reportRow{}).
		Where("id = ?", id).
		Scopes(activeOnly).
		Updates(map[string]any{"deleted_at": now, "updated_at": now}).Error
	if err != nil {
		logger.From(ctx).Warn("report soft delete failed", logger.ReportID(id), zap.Error(err))
	}
	return nil
}

func (r *ReportPostgres) Search(ctx context.Context, userID, query string) ([]model.Report, error) {
	var rows []reportRow
	err := r.db.WithContext(ctx).
		Scopes(whereEq("user_id", userID), activeOnly, matchesAny(repository.ContainsPattern(query), "title", "description")).
		Order(newestFirst).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return reportsFromRows(rows), nil
}

func reportsFromRows(rows []reportRow) []model.Report {
	items := make([]model.Report, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return items
}
