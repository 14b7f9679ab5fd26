package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docvault/internal/http/middleware"
	"docvault/internal/logger"
	"docvault/internal/model"
	"docvault/internal/parser"
	"docvault/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// ExistingID points at the document a duplicate upload collided with.
	ExistingID string `json:"existing_id,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// writeServiceError maps use-case errors to responses. Unknown errors are
// logged and reported as INTERNAL_ERROR.
func writeServiceError(c *fiber.Ctx, err error, notFound string) error {
	var dup *service.DuplicateError
	var parseErr *parser.StatusError
	switch {
	case errors.As(err, &dup):
		return c.Status(fiber.StatusConflict).JSON(errorPayload{
			RequestID: middleware.GetRequestID(c),
			Error: errorEnvelope{
				Code:       "DUPLICATE_DOCUMENT",
				Message:    "a document with identical content already exists in this report",
				ExistingID: dup.Existing.ID,
			},
		})
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", notFound)
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrUserRequired):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "caller identity required")
	case errors.Is(err, model.ErrInvalid):
		return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, service.ErrTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds upload limit")
	case errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.Is(err, parser.ErrDisabled):
		return writeError(c, fiber.StatusServiceUnavailable, "PARSER_UNAVAILABLE", "document parsing is not configured")
	case errors.As(err, &parseErr), errors.Is(err, parser.ErrEmptyResult), errors.Is(err, parser.ErrMalformedResponse):
		logger.From(c.UserContext()).Warn("parse failed", zap.Error(err))
		return writeError(c, fiber.StatusBadGateway, "PARSER_FAILED", "document could not be parsed")
	default:
		logger.From(c.UserContext()).Error("request failed", zap.Error(err))
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "caller identity required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			logger.From(c.UserContext()).Error("unhandled error", zap.Error(err))
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
