package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cerdowizard/node-wallet/internal/httperr"
	"github.com/cerdowizard/node-wallet/internal/identity"
	"github.com/cerdowizard/node-wallet/internal/ledger"
	"github.com/cerdowizard/node-wallet/internal/logging"
)

func setupAuthApp(t *testing.T) (*fiber.App, *Issuer) {
	t.Helper()
	ids := identity.NewService(identity.NewMemoryRepository(ledger.NewMemoryStore()), "USD")
	issuer := NewIssuer("secret", time.Minute)
	h := NewHandler(ids, issuer, validator.New(), logging.Discard())

	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler(logging.Discard())})
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Post("/refresh", h.Refresh)
	app.Get("/me", func(c *fiber.Ctx) error {
		claims, err := issuer.Parse(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
		if err != nil {
			return httperr.Unauthorized("invalid token")
		}
		SetUserID(c, claims.Subject)
		return c.Next()
	}, h.Me)
	return app, issuer
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return do(t, app, req)
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, out
}

func TestRegisterThenLogin(t *testing.T) {
	app, issuer := setupAuthApp(t)

	status, body := postJSON(t, app, "/register", `{"email":"ada@example.com","password":"long-enough","currency":"EUR"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("register: %d %v", status, body)
	}
	if body["currency"] != "EUR" || !strings.HasPrefix(body["wallet_address"].(string), "wal_") {
		t.Fatalf("unexpected register response %v", body)
	}

	status, body = postJSON(t, app, "/login", `{"email":"ada@example.com","password":"long-enough"}`)
	if status != fiber.StatusOK {
		t.Fatalf("login: %d %v", status, body)
	}
	claims, err := issuer.Parse(body["access_token"].(string))
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Subject != body["user_id"] {
		t.Fatalf("token subject %s does not match user %v", claims.Subject, body["user_id"])
	}
}

func TestRegisterAndLoginFailures(t *testing.T) {
	app, _ := setupAuthApp(t)

	if status, _ := postJSON(t, app, "/register", `{"email":"ada@example.com","password":"long-enough"}`); status != fiber.StatusCreated {
		t.Fatalf("register: %d", status)
	}

	cases := []struct {
		path   string
		body   string
		status int
	}{
		{"/register", `{"email":"ada@example.com","password":"long-enough"}`, fiber.StatusConflict},
		{"/register", `{"email":"not-an-email","password":"long-enough"}`, fiber.StatusBadRequest},
		{"/register", `{"email":"b@example.com","password":"short"}`, fiber.StatusBadRequest},
		{"/register", `{"email":"b@example.com","password":"long-enough","currency":"XXXX"}`, fiber.StatusBadRequest},
		{"/login", `{"email":"ada@example.com","password":"wrong-password"}`, fiber.StatusUnauthorized},
		{"/login", `{"email":"ghost@example.com","password":"long-enough"}`, fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		status, body := postJSON(t, app, tc.path, tc.body)
		if status != tc.status {
			t.Fatalf("%s %s: expected %d got %d %v", tc.path, tc.body, tc.status, status, body)
		}
	}
}

func TestRefreshIssuesNewPair(t *testing.T) {
	app, issuer := setupAuthApp(t)
	if status, body := postJSON(t, app, "/register", `{"email":"ada@example.com","password":"long-enough"}`); status != fiber.StatusCreated {
		t.Fatalf("register: %d %v", status, body)
	}
	status, login := postJSON(t, app, "/login", `{"email":"ada@example.com","password":"long-enough"}`)
	if status != fiber.StatusOK {
		t.Fatalf("login: %d %v", status, login)
	}
	refresh, _ := login["refresh_token"].(string)
	if refresh == "" {
		t.Fatalf("expected a refresh token, got %v", login)
	}

	status, body := postJSON(t, app, "/refresh", `{"refresh_token":"`+refresh+`"}`)
	if status != fiber.StatusOK {
		t.Fatalf("refresh: %d %v", status, body)
	}
	claims, err := issuer.Parse(body["access_token"].(string))
	if err != nil {
		t.Fatalf("parse refreshed access token: %v", err)
	}
	if claims.Subject != login["user_id"] || claims.Email != "ada@example.com" {
		t.Fatalf("unexpected refreshed claims %+v", claims)
	}
	if _, err := issuer.ParseRefresh(body["refresh_token"].(string)); err != nil {
		t.Fatalf("parse rotated refresh token: %v", err)
	}
}

func TestRefreshFailures(t *testing.T) {
	app, issuer := setupAuthApp(t)

	access, _, err := issuer.Issue("user-1", "a@b.co", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	orphan, _, err := issuer.IssueRefresh("no-such-user")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"missing token", `{}`, fiber.StatusBadRequest},
		{"garbage", `{"refresh_token":"nope"}`, fiber.StatusUnauthorized},
		{"access token", `{"refresh_token":"` + access + `"}`, fiber.StatusUnauthorized},
		{"unknown user", `{"refresh_token":"` + orphan + `"}`, fiber.StatusNotFound},
	}
	for _, tc := range cases {
		status, body := postJSON(t, app, "/refresh", tc.body)
		if status != tc.status {
			t.Fatalf("%s: expected %d got %d %v", tc.name, tc.status, status, body)
		}
	}
}

func TestMeReturnsProfile(t *testing.T) {
	app, _ := setupAuthApp(t)
	if status, body := postJSON(t, app, "/register", `{"email":"Ada@Example.com","password":"long-enough"}`); status != fiber.StatusCreated {
		t.Fatalf("register: %d %v", status, body)
	}
	_, login := postJSON(t, app, "/login", `{"email":"ada@example.com","password":"long-enough"}`)

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+login["access_token"].(string))
	status, body := do(t, app, req)
	if status != fiber.StatusOK {
		t.Fatalf("me: %d %v", status, body)
	}
	if body["user_id"] != login["user_id"] || body["email"] != "ada@example.com" || body["role"] != "user" {
		t.Fatalf("unexpected profile %v", body)
	}
}
