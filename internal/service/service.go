// Package service holds the report and document use cases. Ownership is
// enforced here: a caller only sees reports it owns and documents inside them.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// Option configures a service.
type Option func(*deps)

type deps struct {
	now   func() time.Time
	newID func() string
	// async runs background work such as auto-parsing.
	async func(func())
}

// WithClock overrides the time source for created/updated timestamps.
func WithClock(now func() time.Time) Option { return func(d *deps) { d.now = now } }

// WithIDs overrides identifier generation.
func WithIDs(newID func() string) Option { return func(d *deps) { d.newID = newID } }

// WithAsync overrides how background work is started.
func WithAsync(run func(func())) Option { return func(d *deps) { d.async = run } }

func buildDeps(opts []Option) deps {
	d := deps{
		// Postgres keeps microseconds; truncating keeps the read-back equal.
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID: uuid.NewString,
		async: func(f func()) { go f() },
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// ownedReport loads an active report belonging to userID. Missing, deleted
// and foreign reports are indistinguishable to the caller.
func ownedReport(ctx context.Context, repo repository.ReportRepository, userID, reportID string) (*model.Report, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if reportID == "" {
		return nil, ErrIDRequired
	}
	r, err := repo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r == nil || r.IsDeleted() || r.UserID != userID {
		return nil, ErrNotFound
	}
	return r, nil
}
