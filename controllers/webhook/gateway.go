package webhook

import (
	"errors"

	"github.com/quickbid/quickbid/database"
	"github.com/quickbid/quickbid/services"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// Gateway ingests one signed payment-gateway event. The signature was
// already checked by the middleware; this handler only dedups and
// dispatches. Duplicate deliveries are the normal case and answer ok.
func Gateway(c *fiber.Ctx) error {
	outcome, err := services.IngestGatewayEvent(database.DB, c.Body())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMalformedEvent):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"ok":      false,
				"reason":  "malformed_event",
				"message": "Event is missing id or type",
			})
		case errors.Is(err, services.ErrUnknownEventType):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"ok":      false,
				"reason":  "unknown_event_type",
				"message": "Unrecognized event type",
			})
		}
		// Handler failure: the event row stays unprocessed, the gateway
		// will redeliver.
		log.WithError(err).Error("Gateway event processing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":      false,
			"reason":  "internal_error",
			"message": "Event processing failed, retry later",
		})
	}

	resp := fiber.Map{"ok": true, "event_id": outcome.EventID}
	if outcome.Skipped {
		resp["skipped"] = true
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}
