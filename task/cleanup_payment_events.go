package task

import (
	"time"

	"github.com/quickbid/quickbid/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const paymentEventRetention = 30 * 24 * time.Hour

// CleanupProcessedPaymentEvents prunes processed gateway events past the
// retention window. Unprocessed events are never deleted; they stay
// eligible for redelivery.
func CleanupProcessedPaymentEvents(db *gorm.DB) {
	cutoff := time.Now().Add(-paymentEventRetention)
	result := db.
		Where("processed = true AND processed_at < ?", cutoff).
		Delete(&models.PaymentEvent{})

	if result.Error != nil {
		log.WithError(result.Error).Error("Failed to prune processed payment events")
		return
	}
	if result.RowsAffected > 0 {
		log.Infof("Pruned %d processed payment events older than %s", result.RowsAffected, paymentEventRetention)
	}
}
