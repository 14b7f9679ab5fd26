package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid marks a validation failure. Validation is never applied by
// repositories; callers invoke these helpers explicitly.
var ErrInvalid = errors.New("invalid entity")

// MaxTitleLength is the maximum report title length in runes.
const MaxTitleLength = 200

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// IsValidTitle reports whether s is usable as a report title.
func IsValidTitle(s string) bool {
	return strings.TrimSpace(s) != "" && utf8.RuneCountInString(s) <= MaxTitleLength
}

// ValidateReport checks field rules and the soft-delete ordering invariant.
func ValidateReport(r *Report) error {
	if r == nil {
		return fmt.Errorf("%w: report is nil", ErrInvalid)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, describe(err))
	}
	if !IsValidTitle(r.Title) {
		return fmt.Errorf("%w: title must be 1-%d characters", ErrInvalid, MaxTitleLength)
	}
	return checkDeletedAt(r.CreatedAt, r.DeletedAt)
}

// ValidateDocument checks field rules and the soft-delete ordering invariant.
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalid)
	}
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, describe(err))
	}
	return checkDeletedAt(d.CreatedAt, d.DeletedAt)
}

func checkDeletedAt(created time.Time, deleted *time.Time) error {
	if deleted != nil && deleted.Before(created) {
		return fmt.Errorf("%w: deleted_at precedes created_at", ErrInvalid)
	}
	return nil
}

// describe flattens validator errors into "field rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
