// Package sqlite implements the repository interfaces over an embedded SQLite
// database using database/sql. Timestamps are stored as Unix nanoseconds.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"docvault/internal/database"
)

// activeOnly is the soft-delete predicate applied to default reads.
const activeOnly = "deleted_at IS NULL"

// Option configures an adapter.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for delete timestamps.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func buildOptions(opts []Option) options {
	o := options{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// where joins predicates with AND.
func where(conds ...string) string {
	return " WHERE " + strings.Join(conds, " AND ")
}

// anyLike ORs a case-insensitive LIKE over each column; every term binds the
// same pattern argument. Both sides go through the Unicode fold function
// registered by the database package.
func anyLike(cols ...string) string {
	terms := make([]string, len(cols))
	for i, c := range cols {
		terms[i] = fmt.Sprintf(`%[1]s(%[2]s) LIKE %[1]s(?) ESCAPE '\'`, database.SQLiteFoldFunc, c)
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

// upsertSQL builds an INSERT over createCols that, on id conflict, rewrites
// only updateCols.
func upsertSQL(table string, createCols, updateCols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(createCols)), ", ")
	sets := make([]string, len(updateCols))
	for i, c := range updateCols {
		sets[i] = c + " = excluded." + c
	}
	return "INSERT INTO " + table + " (" + strings.Join(createCols, ", ") + ") VALUES (" + placeholders + ")" +
		" ON CONFLICT(id) DO UPDATE SET " + strings.Join(sets, ", ")
}

// ErrTimestampRange is returned by Save for a timestamp that does not fit in
// int64 Unix nanoseconds (before 1677 or after 2262), the zero time included.
var ErrTimestampRange = errors.New("sqlite: timestamp outside storable range")

var (
	minStorable = time.Unix(0, math.MinInt64)
	maxStorable = time.Unix(0, math.MaxInt64)
)

// checkTimes rejects timestamps that toNanos cannot represent.
func checkTimes(created, updated time.Time, deleted *time.Time) error {
	named := []struct {
		col string
		ts  *time.Time
	}{{"created_at", &created}, {"updated_at", &updated}, {"deleted_at", deleted}}
	for _, n := range named {
		if n.ts == nil {
			continue
		}
		if n.ts.Before(minStorable) || n.ts.After(maxStorable) {
			return fmt.Errorf("%w: %s %s", ErrTimestampRange, n.col, n.ts.UTC().Format(time.RFC3339Nano))
		}
	}
	return nil
}

func toNanos(t time.Time) int64 { return t.UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func nullNanos(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromNullNanos(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromNanos(n.Int64)
	return &t
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
