package main

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docvault/docs"
	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/database/migration"
	handlers "docvault/internal/http/handler"
	"docvault/internal/http/middleware"
	"docvault/internal/logger"
	"docvault/internal/otel"
	"docvault/internal/parser"
	"docvault/internal/repository"
	"docvault/internal/repository/postgres"
	"docvault/internal/repository/sqlite"
	"docvault/internal/service"
	"docvault/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func serve(ctx context.Context, cfg *config.AppConfig) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.L()
	ctx = logger.ToContext(ctx, log)

	shutdownTracing, err := otel.Init(ctx, "docvault")
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	db, err := openMigrated(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	reportRepo, docRepo, err := newRepositories(db, cfg.Database.Driver)
	if err != nil {
		return err
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	var p parser.Parser
	if pc := parser.New(cfg.Parser); pc.Enabled() {
		p = pc
	} else {
		log.Info("document parsing disabled", zap.String("reason", "PARSER_BASE_URL not set"))
	}

	reportSvc := service.NewReportService(reportRepo)
	settings := documentSettings(cfg)
	docSvc := service.NewDocumentService(reportRepo, docRepo, objStore, p, settings)

	app, err := newApp(settings.MaxBytes, db, reportSvc, docSvc, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("http server listening", zap.String("addr", addr), zap.String("db_driver", cfg.Database.Driver))
		if err := app.Listen(addr); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})
	return g.Wait()
}

// documentSettings is the single source of the upload limit for both the
// service and the HTTP body limit.
func documentSettings(cfg *config.AppConfig) service.DocumentSettings {
	return service.DocumentSettings{
		MaxBytes:      cfg.Upload.MaxBytes,
		PresignExpiry: cfg.Upload.PresignExpiry,
		AutoParse:     cfg.Parser.AutoParse,
		ParseTimeout:  cfg.Parser.Timeout,
	}.WithDefaults()
}

// multipartOverhead leaves room for form boundaries and headers around the file.
const multipartOverhead = 1 << 20

func newApp(uploadMaxBytes int64, db *sql.DB, reportSvc service.ReportService, docSvc service.DocumentService, log *zap.Logger) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             int(uploadMaxBytes) + multipartOverhead,
		DisableStartupMessage: true,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}
		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, db, reportSvc, docSvc)
	return app, nil
}

// newRepositories picks the adapter pair matching the configured driver.
func newRepositories(db *sql.DB, driver string) (repository.ReportRepository, repository.DocumentRepository, error) {
	switch driver {
	case "", database.DriverPostgres:
		gdb, err := database.NewGorm(db, logger.Named("gorm"))
		if err != nil {
			return nil, nil, fmt.Errorf("init gorm: %w", err)
		}
		return postgres.NewReportPostgres(gdb), postgres.NewDocumentPostgres(gdb), nil
	case database.DriverSQLite:
		return sqlite.NewReportSQLite(db), sqlite.NewDocumentSQLite(db), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func openMigrated(ctx context.Context, c config.DatabaseConfig) (*sql.DB, error) {
	db, err := database.Open(c)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, db, dialectFor(c.Driver)); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func dialectFor(driver string) string {
	if driver == database.DriverSQLite {
		return migration.DialectSQLite
	}
	return migration.DialectPostgres
}

func migrate(ctx context.Context, cfg *config.AppConfig) error {
	ctx = logger.ToContext(ctx, logger.L())
	db, err := openMigrated(ctx, cfg.Database)
	if err != nil {
		return err
	}
	return db.Close()
}
