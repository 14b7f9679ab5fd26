// Package migration creates the reports and documents schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"docvault/internal/logger"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

type migrationStep struct {
	Name string
	SQL  string
}

// Identifiers are opaque strings, so id columns are TEXT in both dialects and
// a lookup by a malformed id finds nothing instead of failing the cast.
//
// The (report_id, file_hash) index is deliberately not unique: duplicate
// detection is a read before insert, and concurrent uploads may still race.
var postgresSteps = []migrationStep{
	{
		Name: "create_table_reports",
		SQL: `CREATE TABLE IF NOT EXISTS reports (
  id          TEXT        PRIMARY KEY,
  user_id     TEXT        NOT NULL,
  title       TEXT        NOT NULL CHECK (length(btrim(title)) > 0),
  description TEXT,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  deleted_at  TIMESTAMPTZ,
  CHECK (deleted_at IS NULL OR deleted_at >= created_at)
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id             TEXT        PRIMARY KEY,
  report_id      TEXT        NOT NULL REFERENCES reports (id) ON DELETE CASCADE,
  filename       TEXT        NOT NULL,
  file_hash      TEXT        NOT NULL,
  storage_path   TEXT        NOT NULL,
  parsed_content TEXT,
  notes          TEXT,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  deleted_at     TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_reports_user_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reports_user_created_at ON reports (user_id, created_at DESC);`,
	},
	{
		Name: "create_index_documents_report_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_report_created_at ON documents (report_id, created_at DESC);`,
	},
	{
		Name: "create_index_documents_active_hash",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_active_hash ON documents (report_id, file_hash) WHERE deleted_at IS NULL;`,
	},
}

// SQLite stores timestamps as Unix nanoseconds.
var sqliteSteps = []migrationStep{
	{
		Name: "create_table_reports",
		SQL: `CREATE TABLE IF NOT EXISTS reports (
  id          TEXT    PRIMARY KEY,
  user_id     TEXT    NOT NULL,
  title       TEXT    NOT NULL CHECK (length(trim(title)) > 0),
  description TEXT,
  created_at  INTEGER NOT NULL,
  updated_at  INTEGER NOT NULL,
  deleted_at  INTEGER
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id             TEXT    PRIMARY KEY,
  report_id      TEXT    NOT NULL REFERENCES reports (id) ON DELETE CASCADE,
  filename       TEXT    NOT NULL,
  file_hash      TEXT    NOT NULL,
  storage_path   TEXT    NOT NULL,
  parsed_content TEXT,
  notes          TEXT,
  created_at     INTEGER NOT NULL,
  updated_at     INTEGER NOT NULL,
  deleted_at     INTEGER
);`,
	},
	{
		Name: "create_index_reports_user_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reports_user_created_at ON reports (user_id, created_at DESC);`,
	},
	{
		Name: "create_index_documents_report_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_report_created_at ON documents (report_id, created_at DESC);`,
	},
	{
		Name: "create_index_documents_active_hash",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_active_hash ON documents (report_id, file_hash) WHERE deleted_at IS NULL;`,
	},
}

var sentinelQueries = map[string]string{
	DialectPostgres: "SELECT to_regclass('public.documents') IS NOT NULL",
	DialectSQLite:   "SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = 'documents'",
}

func stepsFor(dialect string) ([]migrationStep, string, error) {
	switch dialect {
	case DialectPostgres:
		return postgresSteps, sentinelQueries[dialect], nil
	case DialectSQLite:
		return sqliteSteps, sentinelQueries[dialect], nil
	default:
		return nil, "", fmt.Errorf("unsupported migration dialect %q", dialect)
	}
}

// EnsureMigrated checks if the documents table exists and runs the dialect's
// steps if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, dialect string) error {
	start := time.Now()
	log := logger.From(ctx).With(logger.Component("database"), zap.String("dialect", dialect))

	steps, sentinel, err := stepsFor(dialect)
	if err != nil {
		return err
	}

	log.Info("db_migration_check")

	var exists bool
	if err := db.QueryRowContext(ctx, sentinel).Scan(&exists); err != nil {
		log.Error("db_migration_failed", zap.Error(err), logger.Latency(time.Since(start)))
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}
	if exists {
		log.Info("db_migration_skip", zap.String("msg", "schema already exists, skipping migration"), logger.Latency(time.Since(start)))
		return nil
	}

	log.Info("db_migration_start", zap.Int("steps", len(steps)))
	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("migration_step", step.Name),
				zap.Error(err),
				logger.Latency(time.Since(start)),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Debug("db_migration_step",
			zap.String("migration_step", step.Name),
			logger.Latency(time.Since(stepStart)),
		)
	}

	log.Info("db_migration_success", logger.Latency(time.Since(start)))
	return nil
}
