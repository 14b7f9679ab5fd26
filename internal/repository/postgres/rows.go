package postgres

import (
	"time"

	"docvault/internal/model"
)

// reportRow is the gorm mapping of the reports table.
type reportRow struct {
	ID          string     `gorm:"column:id;primaryKey"`
	UserID      string     `gorm:"column:user_id"`
	Title       string     `gorm:"column:title"`
	Description *string    `gorm:"column:description"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime:false"`
	DeletedAt   *time.Time `gorm:"column:deleted_at"`
}

func (reportRow) TableName() string { return "reports" }

func newReportRow(r *model.Report) reportRow {
	return reportRow{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		DeletedAt:   r.DeletedAt,
	}
}

func (row reportRow) toModel() model.Report {
	return model.Report{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		DeletedAt:   row.DeletedAt,
	}
}

// documentRow is the gorm mapping of the documents table.
type documentRow struct {
	ID            string     `gorm:"column:id;primaryKey"`
	ReportID      string     `gorm:"column:report_id"`
	Filename      string     `gorm:"column:filename"`
	FileHash      string     `gorm:"column:file_hash"`
	StoragePath   string     `gorm:"column:storage_path"`
	ParsedContent *string    `gorm:"column:parsed_content"`
	Notes         *string    `gorm:"column:notes"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime:false"`
	DeletedAt     *time.Time `gorm:"column:deleted_at"`
}

func (documentRow) TableName() string { return "documents" }

func newDocumentRow(d *model.Document) documentRow {
	return documentRow{
		ID:            d.ID,
		ReportID:      d.ReportID,
		Filename:      d.Filename,
		FileHash:      d.FileHash,
		StoragePath:   d.StoragePath,
		ParsedContent: d.ParsedContent,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		DeletedAt:     d.DeletedAt,
	}
}

func (row documentRow) toModel() model.Document {
	return model.Document{
		ID:            row.ID,
		ReportID:      row.ReportID,
		Filename:      row.Filename,
		FileHash:      row.FileHash,
		StoragePath:   row.StoragePath,
		ParsedContent: row.ParsedContent,
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		DeletedAt:     row.DeletedAt,
	}
}
