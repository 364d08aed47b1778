package bid

import (
	"errors"

	"github.com/quickbid/quickbid/auction"
	"github.com/quickbid/quickbid/helpers"

	"github.com/gofiber/fiber/v2"
)

// State is the authoritative re-fetch for clients that missed a broadcast.
func State(engine *auction.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auctionID, err := parseAuctionID(c)
		if err != nil {
			return helpers.JSONError(c, "INVALID_AUCTION_ID")
		}

		snap, err := engine.Snapshot(auctionID)
		if err != nil {
			if errors.Is(err, auction.ErrAuctionNotFound) {
				return helpers.JSONReason(c, fiber.StatusNotFound, "auction_not_active", "Auction not found")
			}
			return helpers.JSONInternal(c)
		}
		return helpers.JSONSuccess(c, "Auction state", snap)
	}
}
