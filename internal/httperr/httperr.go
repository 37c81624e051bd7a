package httperr

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Error is an API failure rendered as {"error":{"code","message","retryable"}}.
type Error struct {
	Status    int
	Code      string
	Message   string
	Retryable bool
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an API error.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message, Retryable: status >= http.StatusInternalServerError}
}

// BadRequest reports malformed or invalid input.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, "BAD_REQUEST", message)
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Body is the JSON envelope of an error response.
type Body struct {
	Error Detail `json:"error"`
}

// Detail carries the machine code, the message and whether a retry may help.
type Detail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Handler renders every error returned by a route in the common envelope.
func Handler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		apiErr := From(err)
		if apiErr.Status >= http.StatusInternalServerError && logger != nil {
			logger.Error("request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Int("status", apiErr.Status),
				slog.Any("error", err),
			)
		}
		return c.Status(apiErr.Status).JSON(Body{Error: Detail{
			Code:      apiErr.Code,
			Message:   apiErr.Message,
			Retryable: apiErr.Retryable,
		}})
	}
}

// From converts any error into an API error. Unknown errors become a 500
// without leaking their text.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return New(fe.Code, codeForStatus(fe.Code), fe.Message)
	}
	return New(http.StatusInternalServerError, "INTERNAL", "internal server error")
}

func codeForStatus(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
