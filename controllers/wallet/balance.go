package wallet

import (
	"errors"

	"github.com/quickbid/quickbid/database"
	"github.com/quickbid/quickbid/helpers"
	"github.com/quickbid/quickbid/services"

	"github.com/gofiber/fiber/v2"
)

type CheckBalanceRequest struct {
	UserID string `json:"user_id"`
}

// CheckBalance serves the legacy cached balance the UI displays. The
// ledger remains the authority; this cache is maintained in lockstep with
// every posting.
func CheckBalance(c *fiber.Ctx) error {
	var req CheckBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.UserID == "" {
		return helpers.JSONError(c, "USER_ID_REQUIRED")
	}

	wallet, err := services.GetWallet(database.DB, req.UserID)
	if err != nil {
		if errors.Is(err, services.ErrWalletNotFound) {
			return helpers.JSONError(c, "WALLET_NOT_FOUND")
		}
		return helpers.JSONInternal(c)
	}

	return helpers.JSONSuccess(c, "Balance retrieved successfully", fiber.Map{
		"user_id":           wallet.UserID,
		"balance_cents":     wallet.Balance,
		"currency":          wallet.Currency,
		"auctions_sold":     wallet.AuctionsSold,
		"total_sales_cents": wallet.TotalSalesCents,
	})
}
