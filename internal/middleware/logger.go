package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger emits one structured line per request. Health checks
// are skipped so liveness polling does not flood the log, and client
// errors (signup validation, bad credentials) stay at info level since
// they are expected traffic, not service faults.
func RequestLogger(logger *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Path()
		if path == "/healthz" && err == nil {
			return nil
		}

		status := c.Response().StatusCode()
		fields := []interface{}{
			"method", c.Method(),
			"path", path,
			"ip", c.IP(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"bytes_out", len(c.Response().Body()),
		}

		if err != nil || status >= fiber.StatusInternalServerError {
			logger.Errorw("request failed", append(fields, "error", err)...)
		} else {
			logger.Infow("request", fields...)
		}
		return err
	}
}
