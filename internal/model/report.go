package model

import "time"

// Report is a top-level container owned by a user.
// Like Document it carries no persistence tags; adapters map it to their own rows.
type Report struct {
	ID          string     `json:"id" validate:"required"`
	UserID      string     `json:"user_id" validate:"required"`
	Title       string     `json:"title" validate:"notblank,max=200"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the report has been soft-deleted.
func (r *Report) IsDeleted() bool { return r.DeletedAt != nil }

// IsActive is the negation of IsDeleted.
func (r *Report) IsActive() bool { return !r.IsDeleted() }
