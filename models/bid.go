package models

import "gorm.io/gorm"

// Bid rows are append-only; nothing updates them after creation.
type Bid struct {
	gorm.Model

	AuctionID  uint   `gorm:"index" json:"auction_id"`
	BidderID   string `gorm:"index;size:64" json:"bidder_id"`
	BidderName string `gorm:"size:64" json:"bidder_name"`
	Amount     int64  `json:"amount"`
	IsBuyNow   bool   `gorm:"default:false" json:"is_buy_now"`
}
