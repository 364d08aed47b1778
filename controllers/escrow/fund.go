package escrow

import (
	"errors"

	"github.com/quickbid/quickbid/database"
	"github.com/quickbid/quickbid/helpers"
	"github.com/quickbid/quickbid/services"

	"github.com/gofiber/fiber/v2"
)

type FundRequest struct {
	AuctionID   uint   `json:"auction_id"`
	BuyerID     string `json:"buyer_id"`
	SellerID    string `json:"seller_id"`
	AmountCents int64  `json:"amount_cents"`
}

func Fund(c *fiber.Ctx) error {
	var req FundRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.AuctionID == 0 || req.BuyerID == "" || req.SellerID == "" {
		return helpers.JSONError(c, "AUCTION_BUYER_AND_SELLER_REQUIRED")
	}

	result, err := services.FundEscrow(database.DB, req.AuctionID, req.BuyerID, req.SellerID, req.AmountCents)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			return helpers.JSONError(c, "AMOUNT_MUST_BE_POSITIVE")
		case errors.Is(err, services.ErrWalletNotFound):
			return helpers.JSONError(c, "BUYER_WALLET_NOT_FOUND")
		case errors.Is(err, services.ErrInsufficientBalance):
			return helpers.JSONReason(c, fiber.StatusConflict, "insufficient_balance", "Buyer wallet balance is too low")
		case errors.Is(err, services.ErrEscrowInvalidState):
			return helpers.JSONReason(c, fiber.StatusConflict, "escrow_invalid_state", "Escrow is not fundable")
		}
		return helpers.JSONInternal(c)
	}

	return helpers.JSONSuccess(c, "Escrow funded", fiber.Map{
		"escrow_id":         result.Escrow.ID,
		"status":            result.Escrow.Status,
		"new_balance_cents": result.NewBalance,
		"idempotent":        result.Idempotent,
	})
}
