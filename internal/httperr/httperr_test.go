package httperr

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/cerdowizard/node-wallet/internal/logging"
)

func decode(t *testing.T, app *fiber.App, path string) (int, Body) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	var body Body
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, body
}

func TestHandlerRendersEnvelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: Handler(logging.Discard())})
	app.Get("/api", func(c *fiber.Ctx) error {
		return New(fiber.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", "insufficient balance")
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTooManyRequests, "slow down")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("pq: connection reset")
	})

	status, body := decode(t, app, "/api")
	if status != fiber.StatusUnprocessableEntity || body.Error.Code != "INSUFFICIENT_BALANCE" || body.Error.Retryable {
		t.Fatalf("unexpected api error rendering: %d %+v", status, body)
	}

	status, body = decode(t, app, "/fiber")
	if status != fiber.StatusTooManyRequests || body.Error.Code != "TOO_MANY_REQUESTS" {
		t.Fatalf("unexpected fiber error rendering: %d %+v", status, body)
	}

	status, body = decode(t, app, "/boom")
	if status != fiber.StatusInternalServerError || body.Error.Message != "internal server error" || !body.Error.Retryable {
		t.Fatalf("unexpected internal error rendering: %d %+v", status, body)
	}

	status, body = decode(t, app, "/missing")
	if status != fiber.StatusNotFound || body.Error.Code != "NOT_FOUND" {
		t.Fatalf("unexpected not found rendering: %d %+v", status, body)
	}
}
