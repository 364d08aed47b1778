package middlewares

import (
	"os"

	"github.com/quickbid/quickbid/helpers"

	"github.com/gofiber/fiber/v2"
)

// GatewaySignature verifies the payment gateway's HMAC-SHA256 signature
// over the raw request body. Unverifiable payloads are rejected before any
// side effect.
func GatewaySignature() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := os.Getenv("GATEWAY_WEBHOOK_SECRET")
		signature := c.Get("X-Gateway-Signature")

		if secret == "" || signature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"reason":  "invalid_signature",
				"message": "Missing gateway signature",
			})
		}

		if !helpers.VerifySignature(c.Body(), signature, secret) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"reason":  "invalid_signature",
				"message": "Gateway signature mismatch",
			})
		}

		return c.Next()
	}
}
