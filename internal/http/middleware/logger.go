package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docvault/internal/logger"
)

// Logger logs one structured line per request and places a request-scoped
// logger (carrying request_id) in the user context for handlers and below.
//
// Fields: request_id, method, path, status, latency_ms.
func Logger(base *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid := GetRequestID(c)

		scoped := base.With(logger.RequestID(rid))
		c.SetUserContext(logger.ToContext(c.UserContext(), scoped))

		err := c.Next()

		status := statusOf(c, err)
		// Owner may have enriched the scoped logger.
		log := logger.From(c.UserContext())
		if ce := log.Check(levelFor(status), "http_request"); ce != nil {
			ce.Write(
				logger.Method(strings.Clone(c.Method())),
				logger.Path(strings.Clone(c.Path())),
				logger.Status(status),
				logger.Latency(time.Since(start)),
			)
		}
		return err
	}
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
