package services

import (
	"errors"
	"fmt"

	"github.com/quickbid/quickbid/models"

	"gorm.io/gorm"
)

var (
	ErrInvalidAmount        = errors.New("escrow: amount must be positive")
	ErrInsufficientBalance  = errors.New("escrow: insufficient wallet balance")
	ErrEscrowNotFound       = errors.New("escrow: not found")
	ErrEscrowInvalidState   = errors.New("escrow: not in a fundable/releasable state")
	ErrReleaseExceedsEscrow = errors.New("escrow: release exceeds escrowed amount")
)

type FundEscrowResult struct {
	Escrow     *models.EscrowAccount
	NewBalance int64
	Idempotent bool
}

// FundEscrow moves amount cents from the buyer's wallet into the buyer's
// escrow account for one auction. Idempotent on (auction, buyer): a second
// call against a FUNDED row returns it unchanged.
func FundEscrow(db *gorm.DB, auctionID uint, buyerID, sellerID string, amount int64) (*FundEscrowResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var result FundEscrowResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		if err := forUpdate(tx).
			Where("user_id = ? AND is_active = true", buyerID).
			First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return err
		}

		var escrow models.EscrowAccount
		err := forUpdate(tx).
			Where("auction_id = ? AND buyer_id = ?", auctionID, buyerID).
			First(&escrow).Error
		switch {
		case err == nil:
			if escrow.Status == models.EscrowStatusFunded {
				result = FundEscrowResult{Escrow: &escrow, NewBalance: wallet.Balance, Idempotent: true}
				return nil
			}
			if escrow.Status != models.EscrowStatusPendingFunding {
				return ErrEscrowInvalidState
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			escrow = models.EscrowAccount{
				AuctionID: auctionID,
				BuyerID:   buyerID,
				SellerID:  sellerID,
				WalletID:  wallet.ID,
				Amount:    amount,
				Status:    models.EscrowStatusPendingFunding,
			}
			if err := tx.Create(&escrow).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if wallet.Balance < amount {
			return ErrInsufficientBalance
		}

		_, _, err = ApplyBalancedTransaction(tx, BalancedTransactionInput{
			Type:    models.TxnTypeEscrowFunding,
			RefType: "escrow",
			RefID:   fmt.Sprintf("%d", escrow.ID),
			Metadata: map[string]any{
				"auction_id": auctionID,
				"buyer_id":   buyerID,
			},
			Lines: []LedgerLine{
				{UserID: buyerID, AccountType: models.AccountTypeUserWallet, Delta: -amount},
				{UserID: buyerID, AccountType: models.AccountTypeEscrow, Delta: amount},
			},
		})
		if err != nil {
			return err
		}

		cached, err := AdjustWalletCache(tx, buyerID, -amount)
		if err != nil {
			return err
		}

		escrow.Amount = amount
		escrow.Status = models.EscrowStatusFunded
		if err := tx.Model(&escrow).Updates(map[string]any{
			"amount": escrow.Amount,
			"status": escrow.Status,
		}).Error; err != nil {
			return err
		}

		result = FundEscrowResult{Escrow: &escrow, NewBalance: cached.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type ReleaseEscrowResult struct {
	Escrow     *models.EscrowAccount
	Idempotent bool
}

// ReleaseEscrow pays a funded escrow out to the seller, with an optional
// platform fee cut. Re-releasing a RELEASED escrow is a success no-op.
func ReleaseEscrow(db *gorm.DB, escrowID uint, netToSeller, feeToPlatform int64, platformOwner string) (*ReleaseEscrowResult, error) {
	if netToSeller < 0 || feeToPlatform < 0 {
		return nil, ErrInvalidAmount
	}

	var result ReleaseEscrowResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var escrow models.EscrowAccount
		if err := forUpdate(tx).
			First(&escrow, escrowID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEscrowNotFound
			}
			return err
		}

		if escrow.Status == models.EscrowStatusReleased {
			result = ReleaseEscrowResult{Escrow: &escrow, Idempotent: true}
			return nil
		}
		if escrow.Status != models.EscrowStatusFunded {
			return ErrEscrowInvalidState
		}

		total := netToSeller + feeToPlatform
		if total > escrow.Amount {
			return ErrReleaseExceedsEscrow
		}

		if _, err := EnsureWallet(tx, escrow.SellerID); err != nil {
			return err
		}

		lines := []LedgerLine{
			{UserID: escrow.BuyerID, AccountType: models.AccountTypeEscrow, Delta: -total},
			{UserID: escrow.SellerID, AccountType: models.AccountTypeUserWallet, Delta: netToSeller},
		}
		if feeToPlatform > 0 {
			lines = append(lines, LedgerLine{
				UserID:      platformOwner,
				AccountType: models.AccountTypePlatform,
				Delta:       feeToPlatform,
			})
		}

		_, _, err := ApplyBalancedTransaction(tx, BalancedTransactionInput{
			Type:    models.TxnTypeEscrowRelease,
			RefType: "escrow_release",
			RefID:   fmt.Sprintf("%d", escrow.ID),
			Metadata: map[string]any{
				"auction_id":    escrow.AuctionID,
				"net_to_seller": netToSeller,
				"platform_fee":  feeToPlatform,
			},
			Lines: lines,
		})
		if err != nil {
			return err
		}

		if _, err := AdjustWalletCache(tx, escrow.SellerID, netToSeller); err != nil {
			return err
		}

		escrow.Status = models.EscrowStatusReleased
		if err := tx.Model(&escrow).Update("status", escrow.Status).Error; err != nil {
			return err
		}

		result = ReleaseEscrowResult{Escrow: &escrow}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RefundEscrow returns a funded escrow to the buyer's wallet, for auctions
// that ended without a sale. Idempotent when already REFUNDED.
func RefundEscrow(db *gorm.DB, escrowID uint) (*ReleaseEscrowResult, error) {
	var result ReleaseEscrowResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var escrow models.EscrowAccount
		if err := forUpdate(tx).
			First(&escrow, escrowID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEscrowNotFound
			}
			return err
		}

		if escrow.Status == models.EscrowStatusRefunded {
			result = ReleaseEscrowResult{Escrow: &escrow, Idempotent: true}
			return nil
		}
		if escrow.Status != models.EscrowStatusFunded {
			return ErrEscrowInvalidState
		}

		_, _, err := ApplyBalancedTransaction(tx, BalancedTransactionInput{
			Type:    models.TxnTypeEscrowRefund,
			RefType: "escrow_refund",
			RefID:   fmt.Sprintf("%d", escrow.ID),
			Metadata: map[string]any{"auction_id": escrow.AuctionID},
			Lines: []LedgerLine{
				{UserID: escrow.BuyerID, AccountType: models.AccountTypeEscrow, Delta: -escrow.Amount},
				{UserID: escrow.BuyerID, AccountType: models.AccountTypeUserWallet, Delta: escrow.Amount},
			},
		})
		if err != nil {
			return err
		}

		if _, err := AdjustWalletCache(tx, escrow.BuyerID, escrow.Amount); err != nil {
			return err
		}

		escrow.Status = models.EscrowStatusRefunded
		if err := tx.Model(&escrow).Update("status", escrow.Status).Error; err != nil {
			return err
		}

		result = ReleaseEscrowResult{Escrow: &escrow}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
