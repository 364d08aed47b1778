package auction

import (
	"time"

	"github.com/quickbid/quickbid/models"
)

// LastBid is the snapshot of the most recent accepted bid.
type LastBid struct {
	BidderID   string    `json:"bidder_id"`
	BidderName string    `json:"bidder_name"`
	Amount     int64     `json:"amount"`
	At         time.Time `json:"at"`
}

// State is the runtime projection of one auction, hydrated lazily from the
// auctions table and written back after every mutation. CurrentPrice never
// decreases while active (tender and dutch follow their own comparison) and
// EndTime only ever moves forward.
type State struct {
	AuctionID   uint
	AuctionType string
	SellerID    string
	Status      string

	StartPrice      int64
	CurrentPrice    int64
	BuyNowPrice     int64
	ReservePrice    int64
	DecrementPerMin int64
	FloorPrice      int64
	MinBidders      int

	DurationSeconds int64
	StartTime       time.Time
	EndTime         time.Time
	IsExtended      bool

	TotalBids   int
	ActiveUsers int
	LastBid     *LastBid
}

func stateFromModel(a *models.Auction) *State {
	st := &State{
		AuctionID:       a.ID,
		AuctionType:     a.AuctionType,
		SellerID:        a.SellerID,
		Status:          a.Status,
		StartPrice:      a.StartPrice,
		CurrentPrice:    a.CurrentPrice,
		BuyNowPrice:     a.BuyNowPrice,
		ReservePrice:    a.ReservePrice,
		DecrementPerMin: a.DecrementPerMin,
		FloorPrice:      a.FloorPrice,
		MinBidders:      a.MinBidders,
		DurationSeconds: a.DurationSeconds,
		IsExtended:      a.IsExtended,
		TotalBids:       a.TotalBids,
	}
	if st.CurrentPrice == 0 {
		st.CurrentPrice = a.StartPrice
	}
	if a.StartTime != nil {
		st.StartTime = *a.StartTime
	}
	if a.EndTime != nil {
		st.EndTime = *a.EndTime
	}
	return st
}

func (s *State) TimeLeft(now time.Time) time.Duration {
	if s.Status != models.AuctionStatusActive || s.EndTime.IsZero() {
		return 0
	}
	left := s.EndTime.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Snapshot is the read view handed to API/broadcast consumers; time-left
// is recomputed at read time.
type Snapshot struct {
	AuctionID    uint     `json:"auction_id"`
	AuctionType  string   `json:"auction_type"`
	Status       string   `json:"status"`
	StartPrice   int64    `json:"start_price"`
	CurrentPrice int64    `json:"current_price"`
	BuyNowPrice  int64    `json:"buy_now_price,omitempty"`
	EndTime      string   `json:"end_time,omitempty"`
	TimeLeftSecs int64    `json:"time_left_secs"`
	TotalBids    int      `json:"total_bids"`
	ActiveUsers  int      `json:"active_users"`
	IsExtended   bool     `json:"is_extended"`
	LastBid      *LastBid `json:"last_bid,omitempty"`
}

func (s *State) snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		AuctionID:    s.AuctionID,
		AuctionType:  s.AuctionType,
		Status:       s.Status,
		StartPrice:   s.StartPrice,
		CurrentPrice: s.CurrentPrice,
		BuyNowPrice:  s.BuyNowPrice,
		TimeLeftSecs: int64(s.TimeLeft(now) / time.Second),
		TotalBids:    s.TotalBids,
		ActiveUsers:  s.ActiveUsers,
		IsExtended:   s.IsExtended,
		LastBid:      s.LastBid,
	}
	if !s.EndTime.IsZero() {
		snap.EndTime = s.EndTime.UTC().Format(time.RFC3339)
	}
	return snap
}
