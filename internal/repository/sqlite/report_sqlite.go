package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"docvault/internal/logger"
	"docvault/internal/model"
	"docvault/internal/repository"
)

var (
	reportCreateColumns = []string{"id", "user_id", "title", "description", "created_at", "updated_at", "deleted_at"}
	reportUpdateColumns = []string{"title", "description", "updated_at", "deleted_at"}

	reportSelect = "SELECT " + strings.Join(reportCreateColumns, ", ") + " FROM reports"
	reportUpsert = upsertSQL("reports", reportCreateColumns, reportUpdateColumns)
)

// ReportSQLite is a SQLite implementation of repository.ReportRepository.
type ReportSQLite struct {
	db   *sql.DB
	opts options
}

func NewReportSQLite(db *sql.DB, opts ...Option) *ReportSQLite {
	return &ReportSQLite{db: db, opts: buildOptions(opts)}
}

var _ repository.ReportRepository = (*ReportSQLite)(nil)

func (r *ReportSQLite) FindByID(ctx context.Context, id string) (*model.Report, error) {
	row := r.db.QueryRowContext(ctx, reportSelect+where("id = ?"), id)
	rep, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *ReportSQLite) FindByUser(ctx context.Context, userID string, includeDeleted bool) ([]model.Report, error) {
	conds := []string{"user_id = ?"}
	if !includeDeleted {
		conds = append(conds, activeOnly)
	}
	return r.list(ctx, reportSelect+where(conds...)+" ORDER BY created_at DESC, id DESC", userID)
}

// Save binds arguments in reportCreateColumns order.
func (r *ReportSQLite) Save(ctx context.Context, rep *model.Report) (*model.Report, error) {
	if err := checkTimes(rep.CreatedAt, rep.UpdatedAt, rep.DeletedAt); err != nil {
		return nil, err
	}
	_, err := r.db.ExecContext(ctx, reportUpsert,
		rep.ID,
		rep.UserID,
		rep.Title,
		nullString(rep.Description),
		toNanos(rep.CreatedAt),
		toNanos(rep.UpdatedAt),
		nullNanos(rep.DeletedAt),
	)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, rep.ID)
}

// Delete soft-deletes the report. Failures are logged and dropped so callers
// cannot tell a missing row from a deleted one.
func (r *ReportSQLite) Delete(ctx context.Context, id string) error {
	now := toNanos(r.opts.now())
	_, err := r.db.ExecContext(ctx,
		"UPDATE reports SET deleted_at = ?, updated_at = ?"+where("id = ?", activeOnly),
		now, now, id)
	if err != nil {
		logger.From(ctx).Warn("report soft delete failed", logger.ReportID(id), zap.Error(err))
	}
	return nil
}

func (r *ReportSQLite) Search(ctx context.Context, userID, query string) ([]model.Report, error) {
	pattern := repository.ContainsPattern(query)
	q := reportSelect + where("user_id = ?", activeOnly, anyLike("title", "description")) +
		" ORDER BY created_at DESC, id DESC"
	return r.list(ctx, q, userID, pattern, pattern)
}

func (r *ReportSQLite) list(ctx context.Context, q string, args ...any) ([]model.Report, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (*model.Report, error) {
	var (
		rep                  model.Report
		description          sql.NullString
		createdAt, updatedAt int64
		deletedAt            sql.NullInt64
	)
	if err := s.Scan(&rep.ID, &rep.UserID, &rep.Title, &description, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}
	rep.Description = fromNullString(description)
	rep.CreatedAt = fromNanos(createdAt)
	rep.UpdatedAt = fromNanos(updatedAt)
	rep.DeletedAt = fromNullNanos(deletedAt)
	return &rep, nil
}
