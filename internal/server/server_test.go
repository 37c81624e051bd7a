package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cerdowizard/node-wallet/internal/config"
	"github.com/cerdowizard/node-wallet/internal/httperr"
	"github.com/cerdowizard/node-wallet/internal/logging"
	"github.com/cerdowizard/node-wallet/internal/routes"
)

func TestNewServesWithInMemoryStores(t *testing.T) {
	cfg := config.Config{
		AppName:         "wallet-test",
		AppEnv:          "development",
		Port:            "0",
		JWTSecret:       "secret",
		AccessTokenTTL:  time.Minute,
		DefaultCurrency: "USD",
		EventsBackend:   config.EventsLog,
	}
	srv, err := New(routes.Deps{Cfg: cfg, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ping", nil))
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}

	resp, err = srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/nope", nil))
	if err != nil {
		t.Fatalf("missing route: %v", err)
	}
	defer resp.Body.Close()
	var body httperr.Body
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound || body.Error.Code != "NOT_FOUND" {
		t.Fatalf("unexpected not found response %d %+v", resp.StatusCode, body)
	}
}

func TestNewRejectsProductionWithoutDatabase(t *testing.T) {
	cfg := config.Config{AppEnv: "production", EventsBackend: config.EventsLog}
	if _, err := New(routes.Deps{Cfg: cfg, Logger: logging.Discard()}); err == nil {
		t.Fatal("expected error")
	}
}
