package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/quickbid/quickbid/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PayoutFailure struct {
	PayoutID uint   `json:"payout_id"`
	Reason   string `json:"reason"`
}

type SettlementBatchResult struct {
	Processed int             `json:"processed"`
	Skipped   int             `json:"skipped"`
	Failures  []PayoutFailure `json:"failures"`
}

// RunSettlementBatch releases escrow for up to batchSize pending payouts.
// Unresolvable payouts (no winner, escrow missing or unfunded) are skipped,
// and a failure on one payout never aborts the rest. Overlapping batch runs
// are safe: release is idempotent and only pending payouts are selected.
func RunSettlementBatch(db *gorm.DB, batchSize int) *SettlementBatchResult {
	if batchSize <= 0 {
		batchSize = 50
	}

	result := &SettlementBatchResult{Failures: []PayoutFailure{}}

	var payouts []models.Payout
	if err := db.Where("status = ?", models.PayoutStatusPending).
		Order("id").
		Limit(batchSize).
		Find(&payouts).Error; err != nil {
		log.WithError(err).Error("Settlement batch: failed to load pending payouts")
		result.Failures = append(result.Failures, PayoutFailure{Reason: err.Error()})
		return result
	}

	for _, payout := range payouts {
		processed, err := settleOnePayout(db, &payout)
		switch {
		case err != nil:
			log.WithError(err).WithField("payout_id", payout.ID).Error("Settlement failed for payout")
			result.Failures = append(result.Failures, PayoutFailure{PayoutID: payout.ID, Reason: err.Error()})
		case processed:
			result.Processed++
		default:
			result.Skipped++
		}
	}

	return result
}

func settleOnePayout(db *gorm.DB, payout *models.Payout) (bool, error) {
	var auction models.Auction
	if err := db.First(&auction, payout.AuctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithField("payout_id", payout.ID).Warn("Settlement skip: auction missing")
			return false, nil
		}
		return false, err
	}
	if auction.Status != models.AuctionStatusEnded || auction.WinnerID == "" {
		return false, nil
	}

	var escrow models.EscrowAccount
	err := db.Where("auction_id = ? AND buyer_id = ? AND status = ?",
		payout.AuctionID, auction.WinnerID, models.EscrowStatusFunded).
		First(&escrow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if payout.NetPayout <= 0 {
		log.WithFields(log.Fields{
			"payout_id":  payout.ID,
			"net_payout": payout.NetPayout,
		}).Warn("Settlement skip: non-positive net payout")
		return false, nil
	}

	if _, err := ReleaseEscrow(db, escrow.ID, payout.NetPayout, payout.CommissionAmount, ""); err != nil {
		return false, fmt.Errorf("release escrow %d: %w", escrow.ID, err)
	}

	now := time.Now().UTC()
	res := db.Model(&models.Payout{}).
		Where("id = ? AND status = ?", payout.ID, models.PayoutStatusPending).
		Updates(map[string]any{
			"status":       models.PayoutStatusCompleted,
			"completed_at": &now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// A concurrent batch got here first.
		return false, nil
	}

	if err := db.Model(&models.Wallet{}).
		Where("user_id = ?", payout.SellerID).
		Updates(map[string]any{
			"auctions_sold":     gorm.Expr("auctions_sold + 1"),
			"total_sales_cents": gorm.Expr("total_sales_cents + ?", payout.SalePrice),
		}).Error; err != nil {
		log.WithError(err).WithField("seller_id", payout.SellerID).Warn("Failed to bump seller aggregates")
	}

	return true, nil
}
