package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docmcp/internal/http/middleware"
)

// Error codes carried in the envelope of non-MCP responses. Tool failures never
// reach this envelope; they are answered inside the MCP result.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var statusErrors = map[int]errorEnvelope{
	fiber.StatusNotFound:              {Code: CodeNotFound, Message: "resource not found"},
	fiber.StatusMethodNotAllowed:      {Code: CodeMethodNotAllowed, Message: "method not allowed"},
	fiber.StatusRequestEntityTooLarge: {Code: CodePayloadTooLarge, Message: "request body too large"},
	fiber.StatusServiceUnavailable:    {Code: CodeServiceUnavailable, Message: "dependency unavailable"},
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes the JSON error envelope. message must be safe to show clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// ErrorHandler returns the fiber error handler. Statuses without a dedicated code are
// reported as INTERNAL_ERROR with status 500; the cause is logged, never returned.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")

	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			if env, ok := statusErrors[fe.Code]; ok {
				return writeError(c, fe.Code, env.Code, env.Message)
			}
		}

		log.Error("unhandled request error",
			zap.String("request_id", requestIDFromCtx(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return writeError(c, fiber.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
