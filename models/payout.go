package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PayoutStatusPending   = "pending"
	PayoutStatusCompleted = "completed"
	PayoutStatusFailed    = "failed"
)

// Payout is created when an auction ends with a winner and consumed by the
// settlement worker once the matching escrow is funded.
type Payout struct {
	gorm.Model

	SellerID         string     `gorm:"index;size:64" json:"seller_id"`
	AuctionID        uint       `gorm:"index" json:"auction_id"`
	SalePrice        int64      `json:"sale_price"`
	CommissionAmount int64      `json:"commission_amount"`
	NetPayout        int64      `json:"net_payout"`
	Status           string     `gorm:"size:16;index;default:pending" json:"status"`
	CompletedAt      *time.Time `json:"completed_at"`
	Note             string     `gorm:"size:255" json:"note"`
}

// Settlement records the agreed outcome of a sale as reported by the
// payment gateway. One row per gateway event; the unique index backstops
// redelivered and concurrently delivered events.
type Settlement struct {
	gorm.Model

	AuctionID        uint   `gorm:"index" json:"auction_id"`
	BuyerID          string `gorm:"size:64" json:"buyer_id"`
	SellerID         string `gorm:"size:64" json:"seller_id"`
	FinalPrice       int64  `json:"final_price"`
	BuyerCommission  int64  `json:"buyer_commission"`
	SellerCommission int64  `json:"seller_commission"`
	NetToSeller      int64  `json:"net_to_seller"`
	GatewayEventID   string `gorm:"size:64;uniqueIndex" json:"gateway_event_id"`
}
