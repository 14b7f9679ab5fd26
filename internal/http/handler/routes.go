package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/service"
)

// RegisterRoutes attaches the probes and the caller-scoped API to app.
// /metrics and /swagger are mounted by the server.
func RegisterRoutes(app *fiber.App, db *sql.DB, reportSvc service.ReportService, docSvc service.DocumentService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	reports := app.Group("/reports", middleware.Owner())
	reports.Get("/", ListReports(reportSvc))
	reports.Post("/", CreateReport(reportSvc))
	reports.Get("/:id", GetReport(reportSvc))
	reports.Patch("/:id", UpdateReport(reportSvc))
	reports.Delete("/:id", DeleteReport(reportSvc))
	reports.Get("/:id/documents", ListDocuments(docSvc))
	reports.Post("/:id/documents", UploadDocument(docSvc))

	documents := app.Group("/documents", middleware.Owner())
	documents.Get("/:id", GetDocument(docSvc))
	documents.Patch("/:id", UpdateDocument(docSvc))
	documents.Delete("/:id", DeleteDocument(docSvc))
	documents.Post("/:id/parse", ParseDocument(docSvc))
	documents.Get("/:id/download", DownloadDocument(docSvc))
}
