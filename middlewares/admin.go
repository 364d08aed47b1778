package middlewares

import (
	"crypto/subtle"
	"os"

	"github.com/gofiber/fiber/v2"
)

// AdminAuth gates the lifecycle and settlement endpoints behind the shared
// admin key.
func AdminAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		expected := os.Getenv("ADMIN_API_KEY")
		provided := c.Get("X-Admin-Key")

		if expected == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "INVALID_ADMIN_KEY",
			})
		}
		return c.Next()
	}
}
