package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/quickbid/quickbid/auction"
	"github.com/quickbid/quickbid/helpers"

	"github.com/gofiber/fiber/v2"
)

type lifecycleRequest struct {
	ActorID string `json:"actor_id"`
}

func Start(engine *auction.Engine) fiber.Handler {
	return lifecycleHandler(engine, "start")
}

func Pause(engine *auction.Engine) fiber.Handler {
	return lifecycleHandler(engine, "pause")
}

func End(engine *auction.Engine) fiber.Handler {
	return lifecycleHandler(engine, "end")
}

func lifecycleHandler(engine *auction.Engine, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id64, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil || id64 == 0 {
			return helpers.JSONError(c, "INVALID_AUCTION_ID")
		}
		auctionID := uint(id64)

		var req lifecycleRequest
		if err := c.BodyParser(&req); err != nil || req.ActorID == "" {
			req.ActorID = "admin"
		}

		var snap *auction.Snapshot
		switch action {
		case "start":
			snap, err = engine.Start(auctionID, req.ActorID)
		case "pause":
			snap, err = engine.Pause(auctionID, req.ActorID)
		case "end":
			snap, err = engine.End(auctionID, req.ActorID, "")
		}

		if err != nil {
			if errors.Is(err, auction.ErrAuctionNotFound) {
				return helpers.JSONReason(c, fiber.StatusNotFound, "auction_not_active", "Auction not found")
			}
			switch {
			case errors.Is(err, auction.ErrAlreadyActive),
				errors.Is(err, auction.ErrNotActive),
				errors.Is(err, auction.ErrAlreadyEnded):
				return helpers.JSONReason(c, fiber.StatusConflict, auction.ReasonCode(err), err.Error())
			}
			return helpers.JSONInternal(c)
		}

		data := fiber.Map{"auction_state": snap}
		now := time.Now().UTC().Format(time.RFC3339)
		switch action {
		case "start":
			data["start_time"] = now
		case "pause":
			data["pause_time"] = now
		case "end":
			data["end_time"] = now
		}
		return helpers.JSONSuccess(c, "Auction "+action+" applied", data)
	}
}
