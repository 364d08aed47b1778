package bid

import (
	"errors"
	"strconv"

	"github.com/quickbid/quickbid/auction"
	"github.com/quickbid/quickbid/helpers"

	"github.com/gofiber/fiber/v2"
)

type PlaceBidRequest struct {
	BidderID   string `json:"bidder_id"`
	BidderName string `json:"bidder_name"`
	Amount     int64  `json:"amount"`
}

func Place(engine *auction.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auctionID, err := parseAuctionID(c)
		if err != nil {
			return helpers.JSONError(c, "INVALID_AUCTION_ID")
		}

		var req PlaceBidRequest
		if err := c.BodyParser(&req); err != nil {
			return helpers.JSONError(c, "INVALID_JSON")
		}
		if req.BidderID == "" || req.Amount <= 0 {
			return helpers.JSONError(c, "BIDDER_ID_AND_AMOUNT_REQUIRED")
		}

		result, err := engine.PlaceBid(auctionID, req.BidderID, req.BidderName, req.Amount)
		if err != nil {
			if errors.Is(err, auction.ErrAuctionNotFound) {
				return helpers.JSONReason(c, fiber.StatusNotFound, "auction_not_active", "Auction not found")
			}
			reason := auction.ReasonCode(err)
			if reason == "internal_error" {
				return helpers.JSONInternal(c)
			}
			return helpers.JSONReason(c, fiber.StatusConflict, reason, err.Error())
		}

		data := fiber.Map{
			"bid":           result.Bid,
			"auction_state": result.State,
		}
		if result.ShouldExtend {
			data["should_extend"] = true
			data["new_end_time"] = result.NewEndTime
		}
		if result.IsBuyNow {
			data["is_buy_now"] = true
		}
		return helpers.JSONSuccess(c, "Bid accepted", data)
	}
}

func parseAuctionID(c *fiber.Ctx) (uint, error) {
	id64, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id64 == 0 {
		return 0, errors.New("invalid auction id")
	}
	return uint(id64), nil
}
