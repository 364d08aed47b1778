package auction

// Broadcast event types, in the order the underlying state changes commit.
const (
	EventAuctionStarted  = "auction_started"
	EventAuctionPaused   = "auction_paused"
	EventAuctionEnded    = "auction_ended"
	EventAuctionExtended = "auction_extended"
	EventBidPlaced       = "bid_placed"
	EventBidRejected     = "bid_rejected"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Broadcaster fans engine events out to connected clients. Delivery is
// best-effort; clients re-fetch authoritative state on reconnect.
type Broadcaster interface {
	Publish(auctionID uint, event Event)
}
