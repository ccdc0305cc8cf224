package middleware

import (
	"github.com/courseloft/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// RequireAdmin middleware ensures the user has admin role. It must run after
// AuthMiddleware.Required, which loads the user into the request context.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return response.Unauthorized(c, "Authentication required")
		}

		if !user.IsAdmin() {
			return response.Forbidden(c, "Admin access required")
		}

		return c.Next()
	}
}
