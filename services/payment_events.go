package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quickbid/quickbid/helpers"
	"github.com/quickbid/quickbid/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrMalformedEvent   = errors.New("gateway: event is missing id or type")
	ErrUnknownEventType = errors.New("gateway: unknown event type")
)

// GatewayEvent is the envelope the payment gateway posts. Amounts are in
// cents; which fields matter depends on Type.
type GatewayEvent struct {
	EventID   string `json:"event_id"`
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Amount    int64  `json:"amount_cents"`
	AuctionID uint   `json:"auction_id"`
	BuyerID   string `json:"buyer_id"`
	SellerID  string `json:"seller_id"`
}

type IngestOutcome struct {
	EventID string
	Skipped bool
}

// IngestGatewayEvent deduplicates and dispatches one verified gateway
// payload. The event row is claimed before any handler runs; a previously
// processed id returns Skipped without side effects, and a handler failure
// leaves the row unprocessed so the gateway's redelivery retries it.
func IngestGatewayEvent(db *gorm.DB, raw []byte) (*IngestOutcome, error) {
	var event GatewayEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, ErrMalformedEvent
	}
	if event.EventID == "" || event.Type == "" {
		return nil, ErrMalformedEvent
	}

	var record models.PaymentEvent
	claimed := false
	err := db.Transaction(func(tx *gorm.DB) error {
		err := forUpdate(tx).
			Where("event_id = ?", event.EventID).
			First(&record).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		record = models.PaymentEvent{
			EventID:   event.EventID,
			EventType: event.Type,
			UserID:    event.UserID,
			Amount:    event.Amount,
			Payload:   datatypes.JSON(raw),
		}
		claimed = true
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}

	if !claimed && record.Processed {
		return &IngestOutcome{EventID: event.EventID, Skipped: true}, nil
	}

	if err := dispatchGatewayEvent(db, &event); err != nil {
		db.Model(&record).Update("last_error", err.Error())
		return nil, err
	}

	now := time.Now().UTC()
	if err := db.Model(&record).Updates(map[string]any{
		"processed":    true,
		"processed_at": &now,
		"last_error":   "",
	}).Error; err != nil {
		return nil, err
	}

	return &IngestOutcome{EventID: event.EventID}, nil
}

func dispatchGatewayEvent(db *gorm.DB, event *GatewayEvent) error {
	switch event.Type {
	case models.TxnTypeWalletTopup:
		return handleWalletTopup(db, event)
	case models.TxnTypeEscrowFunding:
		return handleEscrowFundingMarker(db, event)
	case models.TxnTypeAuctionSettlement:
		return handleAuctionSettlement(db, event)
	case models.TxnTypeListingFee, models.TxnTypeSubscription, models.TxnTypeBoost:
		// Status flips on out-of-scope records; nothing to move in the
		// ledger, the audit row is the whole effect.
		log.WithFields(log.Fields{
			"event_id": event.EventID,
			"type":     event.Type,
			"user_id":  event.UserID,
		}).Info("Recorded gateway side-effect event")
		return nil
	default:
		return ErrUnknownEventType
	}
}

// handleWalletTopup credits the user's wallet account against the platform
// gateway float, then mirrors the cache.
func handleWalletTopup(db *gorm.DB, event *GatewayEvent) error {
	if event.UserID == "" || event.Amount <= 0 {
		return ErrMalformedEvent
	}
	return db.Transaction(func(tx *gorm.DB) error {
		_, existing, err := ApplyBalancedTransaction(tx, BalancedTransactionInput{
			Type:    models.TxnTypeWalletTopup,
			RefType: "gateway_event",
			RefID:   event.EventID,
			Metadata: map[string]any{
				"gateway_event_id": event.EventID,
			},
			Lines: []LedgerLine{
				{AccountType: models.AccountTypePlatform, Delta: -event.Amount},
				{UserID: event.UserID, AccountType: models.AccountTypeUserWallet, Delta: event.Amount},
			},
		})
		if err != nil {
			return err
		}
		if existing {
			// Redelivery of an event that already posted; the cache was
			// mirrored with the original posting and must not move again.
			return nil
		}
		_, err = AdjustWalletCache(tx, event.UserID, event.Amount)
		return err
	})
}

// handleEscrowFundingMarker confirms an externally initiated escrow
// funding. FundEscrow is idempotent on (auction, buyer), so a marker for an
// already funded escrow is a no-op.
func handleEscrowFundingMarker(db *gorm.DB, event *GatewayEvent) error {
	if event.AuctionID == 0 || event.BuyerID == "" || event.Amount <= 0 {
		return ErrMalformedEvent
	}
	_, err := FundEscrow(db, event.AuctionID, event.BuyerID, event.SellerID, event.Amount)
	return err
}

func handleAuctionSettlement(db *gorm.DB, event *GatewayEvent) error {
	if event.AuctionID == 0 || event.Amount <= 0 {
		return ErrMalformedEvent
	}

	var prior models.Settlement
	err := db.Where("gateway_event_id = ?", event.EventID).First(&prior).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	buyerPct := helpers.PctFromEnv("BUYER_COMMISSION_PCT", "2.5")
	sellerPct := helpers.PctFromEnv("SELLER_COMMISSION_PCT", "5")

	buyerCommission := helpers.CommissionCents(event.Amount, buyerPct)
	sellerCommission := helpers.CommissionCents(event.Amount, sellerPct)

	settlement := models.Settlement{
		AuctionID:        event.AuctionID,
		BuyerID:          event.BuyerID,
		SellerID:         event.SellerID,
		FinalPrice:       event.Amount,
		BuyerCommission:  buyerCommission,
		SellerCommission: sellerCommission,
		NetToSeller:      event.Amount - sellerCommission,
		GatewayEventID:   event.EventID,
	}
	if err := db.Create(&settlement).Error; err != nil {
		// A concurrent delivery of the same event may have won the unique
		// index race between the check above and this insert.
		var dup int64
		db.Model(&models.Settlement{}).Where("gateway_event_id = ?", event.EventID).Count(&dup)
		if dup > 0 {
			return nil
		}
		return fmt.Errorf("record settlement: %w", err)
	}
	return nil
}
