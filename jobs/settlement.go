package jobs

import (
	"os"
	"strconv"

	"github.com/quickbid/quickbid/database"
	"github.com/quickbid/quickbid/services"
	"github.com/quickbid/quickbid/task"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// StartScheduler wires the recurring jobs: settlement batches on
// SETTLEMENT_CRON (default every two minutes) and a daily prune of old
// processed gateway events. Overlapping settlement runs are tolerated by
// the worker itself, so no locking happens here.
func StartScheduler() *cron.Cron {
	schedule := os.Getenv("SETTLEMENT_CRON")
	if schedule == "" {
		schedule = "*/2 * * * *"
	}
	batchSize, _ := strconv.Atoi(os.Getenv("SETTLEMENT_BATCH_SIZE"))

	c := cron.New()

	if _, err := c.AddFunc(schedule, func() {
		result := services.RunSettlementBatch(database.DB, batchSize)
		if result.Processed > 0 || len(result.Failures) > 0 {
			log.WithFields(log.Fields{
				"processed": result.Processed,
				"skipped":   result.Skipped,
				"failures":  len(result.Failures),
			}).Info("Settlement batch finished")
		}
	}); err != nil {
		log.WithError(err).Fatalf("Invalid SETTLEMENT_CRON: %s", schedule)
	}

	if _, err := c.AddFunc("30 3 * * *", func() {
		task.CleanupProcessedPaymentEvents(database.DB)
	}); err != nil {
		log.WithError(err).Fatal("Failed to schedule payment event cleanup")
	}

	c.Start()
	log.Info("Background scheduler started")
	return c
}
