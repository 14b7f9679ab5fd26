package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/logger"
)

const (
	// UserIDHeader carries the caller identity set by the upstream gateway.
	UserIDHeader = "X-User-ID"
	// UserIDLocalKey stores the caller identity in Fiber's context locals.
	UserIDLocalKey = "user_id"
)

// Owner requires a caller identity. Authentication happens upstream; this
// only rejects requests that arrive without one.
func Owner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := strings.Clone(strings.TrimSpace(c.Get(UserIDHeader)))
		if uid == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing "+UserIDHeader)
		}
		c.Locals(UserIDLocalKey, uid)
		ctx := c.UserContext()
		c.SetUserContext(logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(uid))))
		return c.Next()
	}
}

// GetUserID returns the identity stored by Owner, or "".
func GetUserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(UserIDLocalKey).(string)
	return uid
}
