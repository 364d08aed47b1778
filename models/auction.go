package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AuctionStatusDraft  = "draft"
	AuctionStatusActive = "active"
	AuctionStatusPaused = "paused"
	AuctionStatusEnded  = "ended"
)

const (
	AuctionTypeStandard = "standard"
	AuctionTypeLive     = "live"
	AuctionTypeTimed    = "timed"
	AuctionTypeFlash    = "flash"
	AuctionTypeTender   = "tender"
	AuctionTypeDutch    = "dutch"
	AuctionTypeReserve  = "reserve"
)

type Auction struct {
	gorm.Model

	SellerID  string `gorm:"index;size:64" json:"seller_id"`
	ProductID string `gorm:"size:64" json:"product_id"`
	Title     string `gorm:"size:255" json:"title"`

	AuctionType string `gorm:"size:16;default:standard" json:"auction_type"`
	Status      string `gorm:"size:16;index;default:draft" json:"status"`

	StartPrice   int64 `json:"start_price"`
	CurrentPrice int64 `json:"current_price"`
	BuyNowPrice  int64 `json:"buy_now_price"`
	ReservePrice int64 `json:"reserve_price"`

	// Dutch auctions only: price drops by DecrementPerMin each minute
	// until FloorPrice.
	DecrementPerMin int64 `json:"decrement_per_min"`
	FloorPrice      int64 `json:"floor_price"`

	// Tender auctions only: minimum distinct bidders before bids count.
	MinBidders int `json:"min_bidders"`

	DurationSeconds int64      `json:"duration_seconds"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `gorm:"index" json:"end_time"`
	IsExtended      bool       `gorm:"default:false" json:"is_extended"`

	TotalBids  int    `json:"total_bids"`
	WinnerID   string `gorm:"size:64" json:"winner_id"`
	FinalPrice int64  `json:"final_price"`
}
