package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentEvent is the audit record for one inbound gateway event. The
// unique EventID index is what makes ingestion idempotent: the row is
// claimed by insert before any handler runs, and Processed stays false if
// the handler failed so the next delivery retries it.
type PaymentEvent struct {
	gorm.Model

	EventID     string         `gorm:"uniqueIndex;size:64" json:"event_id"`
	EventType   string         `gorm:"size:32;index" json:"event_type"`
	UserID      string         `gorm:"size:64;index" json:"user_id"`
	Amount      int64          `json:"amount"`
	Payload     datatypes.JSON `json:"payload"`
	Processed   bool           `gorm:"default:false;index" json:"processed"`
	ProcessedAt *time.Time     `json:"processed_at"`
	LastError   string         `gorm:"size:255" json:"last_error"`
}
