package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/service"
)

const documentNotFound = "document not found"

// ListDocuments lists a report's documents, or searches filename, notes and
// parsed content when ?q= is set.
//
// @Summary  List or search documents of a report
// @Tags     documents
// @Produce  json
// @Param    q                query  string  false  "case-insensitive substring"
// @Param    include_deleted  query  bool    false  "include soft-deleted documents"
// @Router   /reports/{id}/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reportID, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		uid := middleware.GetUserID(c)
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			items, err := svc.Search(c.UserContext(), uid, reportID, q)
			if err != nil {
				return writeServiceError(c, err, reportNotFound)
			}
			return c.JSON(newList(items))
		}

		withDeleted, err := includeDeleted(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INCLUDE_DELETED", "include_deleted must be a boolean")
		}
		items, err := svc.List(c.UserContext(), uid, reportID, withDeleted)
		if err != nil {
			return writeServiceError(c, err, reportNotFound)
		}
		return c.JSON(newList(items))
	}
}

// UploadDocument accepts multipart/form-data with the file in field "file".
//
// @Summary  Upload document
// @Tags     documents
// @Accept   multipart/form-data
// @Produce  json
// @Param    file  formData  file  true  "document"
// @Failure  409   {object}  errorPayload  "identical content already uploaded"
// @Router   /reports/{id}/documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reportID, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.Upload(c.UserContext(), middleware.GetUserID(c), reportID, f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeServiceError(c, err, reportNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument returns one active document.
//
// @Summary  Get document
// @Tags     documents
// @Router   /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return writeServiceError(c, err, documentNotFound)
		}
		return c.JSON(doc)
	}
}

// UpdateDocument edits filename and notes.
//
// @Summary  Update document
// @Tags     documents
// @Router   /documents/{id} [patch]
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var patch service.DocumentPatch
		if err := c.BodyParser(&patch); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := svc.Update(c.UserContext(), middleware.GetUserID(c), id, patch)
		if err != nil {
			return writeServiceError(c, err, documentNotFound)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument soft-deletes a document. The stored file is kept.
//
// @Summary  Delete document
// @Tags     documents
// @Router   /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), middleware.GetUserID(c), id); err != nil {
			return writeServiceError(c, err, documentNotFound)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ParseDocument runs the parser synchronously and returns the updated document.
//
// @Summary  Parse document
// @Tags     documents
// @Router   /documents/{id}/parse [post]
func ParseDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Parse(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return writeServiceError(c, err, documentNotFound)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument redirects to a short-lived presigned URL.
//
// @Summary  Download document
// @Tags     documents
// @Router   /documents/{id}/download [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.DownloadURL(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return writeServiceError(c, err, documentNotFound)
		}
		return c.Redirect(url, fiber.StatusTemporaryRedirect)
	}
}
