package helpers

import (
	"github.com/gofiber/fiber/v2"
)

func JSONSuccess(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func JSONError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
		"data":    nil,
	})
}

// JSONReason is for bid/escrow rejections that carry a machine-readable
// reason code alongside the human message.
func JSONReason(c *fiber.Ctx, status int, reason, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"reason":  reason,
		"message": message,
	})
}

func JSONInternal(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"reason":  "internal_error",
		"message": "Something went wrong, please retry",
	})
}
