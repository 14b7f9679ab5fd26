package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeletedPredicates(t *testing.T) {
	now := time.Now()

	d := &Document{ID: "d1"}
	assert.False(t, d.IsDeleted())
	assert.True(t, d.IsActive())

	d.DeletedAt = &now
	assert.True(t, d.IsDeleted())
	assert.False(t, d.IsActive())

	r := &Report{ID: "r1"}
	assert.True(t, r.IsActive())
	r.DeletedAt = &now
	assert.True(t, r.IsDeleted())
	assert.Equal(t, !r.IsDeleted(), r.IsActive())
}

func TestIsParsed(t *testing.T) {
	d := &Document{}
	assert.False(t, d.IsParsed())
	text := ""
	d.ParsedContent = &text
	assert.True(t, d.IsParsed())
}

func TestIsValidTitle(t *testing.T) {
	assert.True(t, IsValidTitle("Trip"))
	assert.False(t, IsValidTitle(""))
	assert.False(t, IsValidTitle("   "))
	assert.True(t, IsValidTitle(strings.Repeat("é", MaxTitleLength)))
	assert.False(t, IsValidTitle(strings.Repeat("a", MaxTitleLength+1)))
}

func TestValidateReport(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	before := created.Add(-time.Hour)
	after := created.Add(time.Hour)

	valid := func() *Report {
		return &Report{ID: "r1", UserID: "u1", Title: "Trip", CreatedAt: created}
	}

	tests := []struct {
		name    string
		mutate  func(r *Report)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *Report) {}},
		{name: "deleted after creation", mutate: func(r *Report) { r.DeletedAt = &after }},
		{name: "blank title", mutate: func(r *Report) { r.Title = "  " }, wantErr: true},
		{name: "missing user", mutate: func(r *Report) { r.UserID = "" }, wantErr: true},
		{name: "title too long", mutate: func(r *Report) { r.Title = strings.Repeat("x", 201) }, wantErr: true},
		{name: "deleted before creation", mutate: func(r *Report) { r.DeletedAt = &before }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			err := ValidateReport(r)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, ValidateReport(nil), ErrInvalid)
}

func TestValidateDocument(t *testing.T) {
	doc := &Document{ID: "d1", ReportID: "r1", Filename: "a.pdf", FileHash: "h1"}
	assert.NoError(t, ValidateDocument(doc))

	doc.FileHash = ""
	err := ValidateDocument(doc)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "filehash required")

	assert.ErrorIs(t, ValidateDocument(nil), ErrInvalid)
}
