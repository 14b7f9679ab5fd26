package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/database/migration"
	"docvault/internal/repository/postgres"
	"docvault/internal/repository/sqlite"
	"docvault/internal/service"
	serviceMocks "docvault/internal/service/mocks"
)

func TestDialectFor(t *testing.T) {
	assert.Equal(t, migration.DialectSQLite, dialectFor(database.DriverSQLite))
	assert.Equal(t, migration.DialectPostgres, dialectFor(database.DriverPostgres))
	assert.Equal(t, migration.DialectPostgres, dialectFor(""))
}

func TestNewRepositories(t *testing.T) {
	db, err := database.NewSQLite(config.DatabaseConfig{SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	t.Run("sqlite", func(t *testing.T) {
		reports, docs, err := newRepositories(db, database.DriverSQLite)
		require.NoError(t, err)
		assert.IsType(t, &sqlite.ReportSQLite{}, reports)
		assert.IsType(t, &sqlite.DocumentSQLite{}, docs)
	})

	t.Run("postgres", func(t *testing.T) {
		reports, docs, err := newRepositories(db, database.DriverPostgres)
		require.NoError(t, err)
		assert.IsType(t, &postgres.ReportPostgres{}, reports)
		assert.IsType(t, &postgres.DocumentPostgres{}, docs)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := newRepositories(db, "oracle")
		assert.ErrorContains(t, err, "unsupported database driver")
	})
}

func TestNewApp(t *testing.T) {
	app, err := newApp(documentSettings(config.Defaults()).MaxBytes, nil, new(serviceMocks.MockReportService), new(serviceMocks.MockDocumentService), zap.NewNop())
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func TestDocumentSettings_UploadLimit(t *testing.T) {
	tests := []struct {
		name     string
		maxBytes int64
		want     int64
	}{
		{name: "configured", maxBytes: 4 << 20, want: 4 << 20},
		{name: "zero falls back to default", maxBytes: 0, want: service.DefaultMaxBytes},
		{name: "negative falls back to default", maxBytes: -1, want: service.DefaultMaxBytes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.Upload.MaxBytes = tt.maxBytes

			settings := documentSettings(cfg)
			assert.Equal(t, tt.want, settings.MaxBytes)

			app, err := newApp(settings.MaxBytes, nil, new(serviceMocks.MockReportService), new(serviceMocks.MockDocumentService), zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, int(tt.want)+multipartOverhead, app.Config().BodyLimit)
		})
	}
}
