package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cerdowizard/node-wallet/internal/auth"
	"github.com/cerdowizard/node-wallet/internal/httperr"
	"github.com/cerdowizard/node-wallet/internal/logging"
)

func TestJWTAuthSetsUserID(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Minute)
	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler(logging.Discard())})
	app.Use(RequestID(), JWTAuth(issuer))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})

	token, _, err := issuer.Issue("user-42", "a@b.co", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK || string(body) != "user-42" {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestJWTAuthRejectsMissingAndBadTokens(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Minute)
	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler(logging.Discard())})
	app.Use(JWTAuth(issuer))
	app.Get("/me", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	refresh, _, err := issuer.IssueRefresh("user-42")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	for _, header := range []string{"", "Basic abc", "Bearer nope", "Bearer " + refresh} {
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, resp.StatusCode)
		}
	}
}
