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
	documentCreateColumns = []string{
		"id", "report_id", "filename", "file_hash", "storage_path",
		"parsed_content", "notes", "created_at", "updated_at", "deleted_at",
	}
	documentUpdateColumns = []string{"filename", "parsed_content", "notes", "updated_at", "deleted_at"}

	documentSelect = "SELECT " + strings.Join(documentCreateColumns, ", ") + " FROM documents"
	documentUpsert = upsertSQL("documents", documentCreateColumns, documentUpdateColumns)
)

// DocumentSQLite is a SQLite implementation of repository.DocumentRepository.
type DocumentSQLite struct {
	db   *sql.DB
	opts options
}

func NewDocumentSQLite(db *sql.DB, opts ...Option) *DocumentSQLite {
	return &DocumentSQLite{db: db, opts: buildOptions(opts)}
}

var _ repository.DocumentRepository = (*DocumentSQLite)(nil)

func (r *DocumentSQLite) FindByID(ctx context.Context, id string) (*model.Document, error) {
	return r.one(ctx, documentSelect+where("id = ?"), id)
}

func (r *DocumentSQLite) FindByReport(ctx context.Context, reportID string, includeDeleted bool) ([]model.Document, error) {
	conds := []string{"report_id = ?"}
	if !includeDeleted {
		conds = append(conds, activeOnly)
	}
	return r.list(ctx, documentSelect+where(conds...)+" ORDER BY created_at DESC, id DESC", reportID)
}

// FindByHash applies the active-only predicate unconditionally.
func (r *DocumentSQLite) FindByHash(ctx context.Context, reportID, fileHash string) (*model.Document, error) {
	q := documentSelect + where("report_id = ?", "file_hash = ?", activeOnly) +
		" ORDER BY created_at DESC, id DESC LIMIT 1"
	return r.one(ctx, q, reportID, fileHash)
}

// Save binds arguments in documentCreateColumns order.
func (r *DocumentSQLite) Save(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if err := checkTimes(doc.CreatedAt, doc.UpdatedAt, doc.DeletedAt); err != nil {
		return nil, err
	}
	_, err := r.db.ExecContext(ctx, documentUpsert,
		doc.ID,
		doc.ReportID,
		doc.Filename,
		doc.FileHash,
		doc.StoragePath,
		nullString(doc.ParsedContent),
		nullString(doc.Notes),
		toNanos(doc.CreatedAt),
		toNanos(doc.UpdatedAt),
		nullNanos(doc.DeletedAt),
	)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, doc.ID)
}

func (r *DocumentSQLite) Delete(ctx context.Context, id string) error {
	now := toNanos(r.opts.now())
	_, err := r.db.ExecContext(ctx,
		"UPDATE documents SET deleted_at = ?, updated_at = ?"+where("id = ?", activeOnly),
		now, now, id)
	if err != nil {
		logger.From(ctx).Warn("document soft delete failed", logger.DocumentID(id), zap.Error(err))
	}
	return nil
}

func (r *DocumentSQLite) Search(ctx context.Context, reportID, query string) ([]model.Document, error) {
	pattern := repository.ContainsPattern(query)
	q := documentSelect + where("report_id = ?", activeOnly, anyLike("filename", "notes", "parsed_content")) +
		" ORDER BY created_at DESC, id DESC"
	return r.list(ctx, q, reportID, pattern, pattern, pattern)
}

func (r *DocumentSQLite) one(ctx context.Context, q string, args ...any) (*model.Document, error) {
	doc, err := scanDocument(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *DocumentSQLite) list(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanDocument(s scanner) (*model.Document, error) {
	var (
		d                    model.Document
		parsed, notes        sql.NullString
		createdAt, updatedAt int64
		deletedAt            sql.NullInt64
	)
	if err := s.Scan(
		&d.ID,
		&d.ReportID,
		&d.Filename,
		&d.FileHash,
		&d.StoragePath,
		&parsed,
		&notes,
		&createdAt,
		&updatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}
	d.ParsedContent = fromNullString(parsed)
	d.Notes = fromNullString(notes)
	d.CreatedAt = fromNanos(createdAt)
	d.UpdatedAt = fromNanos(updatedAt)
	d.DeletedAt = fromNullNanos(deletedAt)
	return &d, nil
}
