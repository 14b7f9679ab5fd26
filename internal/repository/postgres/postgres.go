// Package postgres implements the repository interfaces with gorm over
// PostgreSQL.
package postgres

import (
	"time"

	"gorm.io/gorm"
)

// Option configures an adapter.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for delete timestamps.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// activeOnly restricts a query to rows that have not been soft-deleted.
func activeOnly(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// whereEq scopes a query to rows whose column equals value.
func whereEq(column, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", value)
	}
}

// listScopes returns the owner scope plus activeOnly unless includeDeleted.
func listScopes(column, id string, includeDeleted bool) []func(*gorm.DB) *gorm.DB {
	scopes := []func(*gorm.DB) *gorm.DB{whereEq(column, id)}
	if !includeDeleted {
		scopes = append(scopes, activeOnly)
	}
	return scopes
}

// newestFirst is the ordering shared by every list query.
const newestFirst = "created_at DESC, id DESC"

// matchesAny ORs a case-insensitive match of pattern over columns as one
// parenthesised condition.
func matchesAny(pattern string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		group := db.Session(&gorm.Session{NewDB: true})
		for i, c := range columns {
			if i == 0 {
				group = group.Where(c+" ILIKE ?", pattern)
				continue
			}
			group = group.Or(c+" ILIKE ?", pattern)
		}
		return db.Where(group)
	}
}
