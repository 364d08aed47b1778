package escrow

import (
	"errors"

	"github.com/quickbid/quickbid/database"
	"github.com/quickbid/quickbid/helpers"
	"github.com/quickbid/quickbid/services"

	"github.com/gofiber/fiber/v2"
)

type ReleaseRequest struct {
	EscrowID            uint   `json:"escrow_id"`
	NetToSellerCents    int64  `json:"net_to_seller_cents"`
	FeeToPlatformCents  int64  `json:"fee_to_platform_cents"`
	PlatformAccountUser string `json:"platform_account_user_id"`
}

func Release(c *fiber.Ctx) error {
	var req ReleaseRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.EscrowID == 0 {
		return helpers.JSONError(c, "ESCROW_ID_REQUIRED")
	}

	result, err := services.ReleaseEscrow(database.DB, req.EscrowID,
		req.NetToSellerCents, req.FeeToPlatformCents, req.PlatformAccountUser)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEscrowNotFound):
			return helpers.JSONReason(c, fiber.StatusNotFound, "escrow_not_found", "No such escrow")
		case errors.Is(err, services.ErrInvalidAmount):
			return helpers.JSONError(c, "AMOUNTS_MUST_BE_NON_NEGATIVE")
		case errors.Is(err, services.ErrEscrowInvalidState):
			return helpers.JSONReason(c, fiber.StatusConflict, "escrow_invalid_state", "Escrow is not funded")
		case errors.Is(err, services.ErrReleaseExceedsEscrow):
			return helpers.JSONReason(c, fiber.StatusConflict, "release_exceeds_escrow", "Release exceeds escrowed amount")
		}
		return helpers.JSONInternal(c)
	}

	return helpers.JSONSuccess(c, "Escrow released", fiber.Map{
		"escrow_id":  result.Escrow.ID,
		"status":     result.Escrow.Status,
		"idempotent": result.Idempotent,
	})
}

type RefundRequest struct {
	EscrowID uint `json:"escrow_id"`
}

func Refund(c *fiber.Ctx) error {
	var req RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.EscrowID == 0 {
		return helpers.JSONError(c, "ESCROW_ID_REQUIRED")
	}

	result, err := services.RefundEscrow(database.DB, req.EscrowID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEscrowNotFound):
			return helpers.JSONReason(c, fiber.StatusNotFound, "escrow_not_found", "No such escrow")
		case errors.Is(err, services.ErrEscrowInvalidState):
			return helpers.JSONReason(c, fiber.StatusConflict, "escrow_invalid_state", "Escrow is not funded")
		}
		return helpers.JSONInternal(c)
	}

	return helpers.JSONSuccess(c, "Escrow refunded", fiber.Map{
		"escrow_id":  result.Escrow.ID,
		"status":     result.Escrow.Status,
		"idempotent": result.Idempotent,
	})
}
