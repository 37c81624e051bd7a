package auth

import "github.com/gofiber/fiber/v2"

const userIDKey = "user_id"

// SetUserID records the authenticated caller on the request.
func SetUserID(c *fiber.Ctx, id string) {
	c.Locals(userIDKey, id)
}

// UserID returns the authenticated caller, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
