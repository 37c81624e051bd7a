package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cerdowizard/node-wallet/internal/auth"
	"github.com/cerdowizard/node-wallet/internal/httperr"
)

// JWTAuth validates bearer access tokens and exposes the subject as the caller's user id.
func JWTAuth(issuer *auth.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return httperr.Unauthorized("missing bearer token")
		}
		claims, err := issuer.Parse(strings.TrimSpace(authz[len("Bearer "):]))
		if errors.Is(err, auth.ErrExpiredToken) {
			return httperr.Unauthorized("token expired")
		}
		if err != nil {
			return httperr.Unauthorized("invalid token")
		}

		auth.SetUserID(c, claims.Subject)
		return c.Next()
	}
}

// UserID returns the authenticated caller, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	return auth.UserID(c)
}
