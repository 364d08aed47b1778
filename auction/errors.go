package auction

import "errors"

var (
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrAlreadyActive        = errors.New("auction is already active")
	ErrNotActive            = errors.New("auction is not active")
	ErrAlreadyEnded         = errors.New("auction already ended")
	ErrAuctionNotActive     = errors.New("auction is not accepting bids")
	ErrAuctionEnded         = errors.New("auction has ended")
	ErrBidTooLow            = errors.New("bid does not beat the current price")
	ErrBidIncrementTooSmall = errors.New("bid increment is below the minimum")
	ErrMinimumBiddersNotMet = errors.New("minimum bidder count not met")
)

// ReasonCode maps an engine error to the machine-readable code the bid API
// returns next to the human message.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrAuctionNotActive), errors.Is(err, ErrNotActive):
		return "auction_not_active"
	case errors.Is(err, ErrAuctionEnded), errors.Is(err, ErrAlreadyEnded):
		return "auction_ended"
	case errors.Is(err, ErrBidTooLow):
		return "bid_too_low"
	case errors.Is(err, ErrBidIncrementTooSmall):
		return "bid_increment_too_small"
	case errors.Is(err, ErrMinimumBiddersNotMet):
		return "minimum_bidders_not_met"
	default:
		return "internal_error"
	}
}
