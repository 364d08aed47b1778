package models

import "gorm.io/gorm"

const (
	EscrowStatusPendingFunding = "PENDING_FUNDING"
	EscrowStatusFunded         = "FUNDED"
	EscrowStatusReleased       = "RELEASED"
	EscrowStatusRefunded       = "REFUNDED"
)

// EscrowAccount tracks the hold placed on a buyer's funds for one auction.
// One row per (auction, buyer); re-funding an already FUNDED row is a no-op.
type EscrowAccount struct {
	gorm.Model

	AuctionID uint   `gorm:"index;uniqueIndex:idx_escrow_auction_buyer" json:"auction_id"`
	BuyerID   string `gorm:"size:64;uniqueIndex:idx_escrow_auction_buyer" json:"buyer_id"`
	SellerID  string `gorm:"size:64;index" json:"seller_id"`
	WalletID  uint   `json:"wallet_id"`
	Amount    int64  `json:"amount"`
	Status    string `gorm:"size:24;index;default:PENDING_FUNDING" json:"status"`
}
