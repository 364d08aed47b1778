package realtime

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/quickbid/quickbid/auction"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

type clientMessage struct {
	Type       string `json:"type"`
	BidderID   string `json:"bidder_id"`
	BidderName string `json:"bidder_name"`
	Amount     int64  `json:"amount"`
}

type jsonWriter interface {
	WriteJSON(v any) error
}

// wsWriter serializes writes to one connection. The event pump and the
// read loop's bid replies share the socket, and the underlying websocket
// forbids concurrent writers.
type wsWriter struct {
	mu   sync.Mutex
	conn jsonWriter
}

func (w *wsWriter) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

// Upgrade gates the websocket route; non-upgrade requests get 426.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler serves one auction's live channel: it pushes a state snapshot on
// connect, relays engine events, and accepts place_bid messages inline.
func Handler(hub *Hub, engine *auction.Engine) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		out := &wsWriter{conn: conn}

		id64, err := strconv.ParseUint(conn.Params("id"), 10, 32)
		if err != nil {
			_ = out.WriteJSON(fiber.Map{"type": "error", "message": "invalid auction id"})
			return
		}
		auctionID := uint(id64)

		snap, err := engine.Snapshot(auctionID)
		if err != nil {
			_ = out.WriteJSON(fiber.Map{"type": "error", "message": "auction not found"})
			return
		}
		_ = out.WriteJSON(auction.Event{Type: "auction_state", Payload: snap})

		subID, events := hub.Subscribe(auctionID)
		engine.Join(auctionID)
		defer func() {
			hub.Unsubscribe(auctionID, subID)
			engine.Leave(auctionID)
		}()

		// The pump exits when Unsubscribe closes the channel on disconnect.
		go func() {
			for event := range events {
				if err := out.WriteJSON(event); err != nil {
					return
				}
			}
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var msg clientMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			if msg.Type != "place_bid" || msg.BidderID == "" {
				continue
			}

			result, err := engine.PlaceBid(auctionID, msg.BidderID, msg.BidderName, msg.Amount)
			if err != nil {
				_ = out.WriteJSON(fiber.Map{
					"type":    "bid_result",
					"success": false,
					"reason":  auction.ReasonCode(err),
					"message": err.Error(),
				})
				continue
			}
			reply := fiber.Map{
				"type":    "bid_result",
				"success": true,
				"bid":     result.Bid,
				"state":   result.State,
			}
			if result.ShouldExtend {
				reply["should_extend"] = true
				reply["new_end_time"] = result.NewEndTime
			}
			if result.IsBuyNow {
				reply["is_buy_now"] = true
			}
			_ = out.WriteJSON(reply)
		}

		log.WithField("auction_id", auctionID).Debug("Websocket client disconnected")
	})
}
