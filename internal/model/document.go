package model

import "time"

// Document is a file attached to exactly one Report.
// FileHash is the content digest used to detect re-uploads within a report.
type Document struct {
	ID            string     `json:"id" validate:"required"`
	ReportID      string     `json:"report_id" validate:"required"`
	Filename      string     `json:"filename" validate:"notblank,max=255"`
	FileHash      string     `json:"file_hash" validate:"required"`
	StoragePath   string     `json:"storage_path"`
	ParsedContent *string    `json:"parsed_content,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

func (d *Document) IsDeleted() bool { return d.DeletedAt != nil }

func (d *Document) IsActive() bool { return !d.IsDeleted() }

// IsParsed reports whether parsed text has been stored for the document.
func (d *Document) IsParsed() bool { return d.ParsedContent != nil }
