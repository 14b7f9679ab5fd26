// Package repotest holds synthetic entity factories, mock store construction
// and adapter-agnostic contract suites for the repository interfaces.
package repotest

import (
	"time"

	"github.com/google/uuid"

	"docvault/internal/model"
)

// Epoch is the base timestamp for generated entities.
var Epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type ReportOption func(*model.Report)

func WithReportID(id string) ReportOption { return func(r *model.Report) { r.ID = id } }

func WithUser(userID string) ReportOption { return func(r *model.Report) { r.UserID = userID } }

func WithTitle(title string) ReportOption { return func(r *model.Report) { r.Title = title } }

func WithDescription(s string) ReportOption { return func(r *model.Report) { r.Description = &s } }

// CreatedAt sets both created_at and updated_at.
func CreatedAt(t time.Time) ReportOption {
	return func(r *model.Report) {
		r.CreatedAt = t
		r.UpdatedAt = t
	}
}

func ReportDeletedAt(t time.Time) ReportOption { return func(r *model.Report) { r.DeletedAt = &t } }

// NewReport builds an active report with a random id owned by "user-1".
func NewReport(opts ...ReportOption) *model.Report {
	r := &model.Report{
		ID:        uuid.NewString(),
		UserID:    "user-1",
		Title:     "Report",
		CreatedAt: Epoch,
		UpdatedAt: Epoch,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type DocumentOption func(*model.Document)

func WithDocumentID(id string) DocumentOption { return func(d *model.Document) { d.ID = id } }

func WithFilename(name string) DocumentOption { return func(d *model.Document) { d.Filename = name } }

func WithHash(h string) DocumentOption { return func(d *model.Document) { d.FileHash = h } }

func WithNotes(s string) DocumentOption { return func(d *model.Document) { d.Notes = &s } }

func WithParsedContent(s string) DocumentOption {
	return func(d *model.Document) { d.ParsedContent = &s }
}

func WithStoragePath(p string) DocumentOption { return func(d *model.Document) { d.StoragePath = p } }

func DocumentCreatedAt(t time.Time) DocumentOption {
	return func(d *model.Document) {
		d.CreatedAt = t
		d.UpdatedAt = t
	}
}

func DocumentDeletedAt(t time.Time) DocumentOption {
	return func(d *model.Document) { d.DeletedAt = &t }
}

// NewDocument builds an active document in reportID with a random id and hash.
func NewDocument(reportID string, opts ...DocumentOption) *model.Document {
	id := uuid.NewString()
	d := &model.Document{
		ID:          id,
		ReportID:    reportID,
		Filename:    "file.pdf",
		FileHash:    "sha256-" + id,
		StoragePath: "reports/" + reportID + "/" + id + ".pdf",
		CreatedAt:   Epoch,
		UpdatedAt:   Epoch,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}
