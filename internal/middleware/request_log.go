package middleware

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
)

// RequestLogWriter defines how request log records are persisted.
type RequestLogWriter interface {
	WriteRequestLog(method, path string, status int, details, ip, userAgent string) error
}

// RequestLog records every API request for traceability.
func RequestLog(writer RequestLogWriter) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		// Capture request data BEFORE handler execution (Fiber reuses context objects)
		method := c.Method()
		path := c.Path()
		ip := c.IP()
		userAgent := c.Get("User-Agent")

		err := c.Next()

		statusCode := c.Response().StatusCode()
		details := map[string]interface{}{
			"duration_ms": time.Since(start).Milliseconds(),
		}
		detailsJSON, _ := json.Marshal(details)

		// Write asynchronously; all values are captured, safe to use in goroutine
		go func() {
			if writeErr := writer.WriteRequestLog(method, path, statusCode, string(detailsJSON), ip, userAgent); writeErr != nil {
				slog.Error("failed to write request log", "error", writeErr)
			}
		}()

		return err
	}
}
