package settlement

import (
	"os"
	"strconv"

	"github.com/quickbid/quickbid/database"
	"github.com/quickbid/quickbid/services"

	"github.com/gofiber/fiber/v2"
)

// Run triggers one settlement batch on demand; the cron job calls the same
// service on its schedule.
func Run(c *fiber.Ctx) error {
	batchSize, _ := strconv.Atoi(os.Getenv("SETTLEMENT_BATCH_SIZE"))
	result := services.RunSettlementBatch(database.DB, batchSize)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":        true,
		"processed": result.Processed,
		"skipped":   result.Skipped,
		"failures":  result.Failures,
	})
}
