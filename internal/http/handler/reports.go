package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/service"
)

const reportNotFound = "report not found"

// ListReports lists the caller's reports, newest first. With ?q= it searches
// title and description instead.
//
// @Summary  List or search reports
// @Tags     reports
// @Produce  json
// @Param    X-User-ID        header  string  true   "caller identity"
// @Param    q                query   string  false  "case-insensitive substring"
// @Param    include_deleted  query   bool    false  "include soft-deleted reports"
// @Router   /reports [get]
func ListReports(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := middleware.GetUserID(c)
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			items, err := svc.Search(c.UserContext(), uid, q)
			if err != nil {
				return writeServiceError(c, err, reportNotFound)
			}
			return c.JSON(newList(items))
		}

		withDeleted, err := includeDeleted(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INCLUDE_DELETED", "include_deleted must be a boolean")
		}
		items, err := svc.List(c.UserContext(), uid, withDeleted)
		if err != nil {
			return writeServiceError(c, err, reportNotFound)
		}
		return c.JSON(newList(items))
	}
}

// CreateReport creates a report owned by the caller.
//
// @Summary  Create report
// @Tags     reports
// @Accept   json
// @Produce  json
// @Router   /reports [post]
func CreateReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ReportInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		r, err := svc.Create(c.UserContext(), middleware.GetUserID(c), in)
		if err != nil {
			return writeServiceError(c, err, reportNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

// GetReport returns one active report.
//
// @Summary  Get report
// @Tags     reports
// @Produce  json
// @Router   /reports/{id} [get]
func GetReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		r, err := svc.Get(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return writeServiceError(c, err, reportNotFound)
		}
		return c.JSON(r)
	}
}

// UpdateReport patches title and description.
//
// @Summary  Update report
// @Tags     reports
// @Accept   json
// @Produce  json
// @Router   /reports/{id} [patch]
func UpdateReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var patch service.ReportPatch
		if err := c.BodyParser(&patch); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		r, err := svc.Update(c.UserContext(), middleware.GetUserID(c), id, patch)
		if err != nil {
			return writeServiceError(c, err, reportNotFound)
		}
		return c.JSON(r)
	}
}

// DeleteReport soft-deletes a report.
//
// @Summary  Delete report
// @Tags     reports
// @Router   /reports/{id} [delete]
func DeleteReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), middleware.GetUserID(c), id); err != nil {
			return writeServiceError(c, err, reportNotFound)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
