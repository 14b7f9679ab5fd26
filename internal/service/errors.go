package service

import (
	"errors"

	"docvault/internal/model"
)

var (
	ErrIDRequired   = errors.New("id is required")
	ErrUserRequired = errors.New("user id is required")
	ErrNotFound     = errors.New("not found")
	ErrReaderNil    = errors.New("reader is nil")
	ErrTooLarge     = errors.New("file exceeds upload limit")
	ErrDuplicate    = errors.New("duplicate document")
)

// DuplicateError is returned by Upload when the report already holds an
// active document with the same content. It matches ErrDuplicate.
type DuplicateError struct {
	Existing *model.Document
}

func (e *DuplicateError) Error() string {
	return "duplicate document: same content as " + e.Existing.ID
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }
