package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cerdowizard/node-wallet/internal/auth"
)

// RegisterAuthRoutes wires registration, login, token refresh and the
// caller's profile. Only /me requires an access token.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter, jwt fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/refresh", h.Refresh)
	group.Get("/me", jwt, h.Me)
}
