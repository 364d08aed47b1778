package models

import "gorm.io/gorm"

// Wallet is the legacy per-user balance cache the UI reads. It mirrors the
// user's user_wallet ledger account and is written only inside the same DB
// transaction that posts the ledger entries; the ledger stays authoritative.
type Wallet struct {
	gorm.Model

	UserID   string `gorm:"uniqueIndex;size:64" json:"user_id"`
	Balance  int64  `json:"balance"`
	Currency string `gorm:"size:8;default:USD" json:"currency"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Seller aggregates bumped by the settlement worker.
	AuctionsSold    int   `json:"auctions_sold"`
	TotalSalesCents int64 `json:"total_sales_cents"`
}
