package postgres

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"docvault/internal/database"
	"docvault/internal/repository/repotest"
)

var deletedAt = repotest.Epoch.Add(24 * time.Hour)

func fixedClock() time.Time { return deletedAt }

// newGormMock returns a gorm session backed by sqlmock. Statements are matched
// as substrings of the generated SQL.
func newGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := repotest.NewMockDB(t)
	gdb, err := database.NewGorm(db, zap.NewNop())
	require.NoError(t, err)
	return gdb, mock
}

// value unwraps optional columns the way a driver would return them.
func value[T any](p *T) driver.Value {
	if p == nil {
		return nil
	}
	return *p
}

func q(sql string) string { return regexp.QuoteMeta(sql) }

var reportColumns = []string{"id", "user_id", "title", "description", "created_at", "updated_at", "deleted_at"}

var documentColumns = []string{
	"id", "report_id", "filename", "file_hash", "storage_path",
	"parsed_content", "notes", "created_at", "updated_at", "deleted_at",
}
