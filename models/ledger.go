package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AccountTypePlatform   = "platform"
	AccountTypeSeller     = "seller"
	AccountTypeEscrow     = "escrow"
	AccountTypeUserWallet = "user_wallet"
)

const (
	TxnStatusPending   = "pending"
	TxnStatusCompleted = "completed"
)

const (
	TxnTypeWalletTopup       = "wallet_topup"
	TxnTypeEscrowFunding     = "escrow_funding"
	TxnTypeEscrowRelease     = "escrow_release"
	TxnTypeEscrowRefund      = "escrow_refund"
	TxnTypeListingFee        = "listing_fee"
	TxnTypeSubscription      = "subscription"
	TxnTypeBoost             = "boost"
	TxnTypeAuctionSettlement = "auction_settlement"
)

const DefaultCurrency = "USD"

// Account balances are in integer cents and must always equal the running
// sum of signed entry deltas posted against the account.
type Account struct {
	gorm.Model

	// Empty UserID means a platform-owned account.
	UserID   string `gorm:"size:64;uniqueIndex:idx_account_owner" json:"user_id"`
	Type     string `gorm:"size:16;uniqueIndex:idx_account_owner" json:"type"`
	Currency string `gorm:"size:8;uniqueIndex:idx_account_owner" json:"currency"`
	Balance  int64  `json:"balance"`
}

type Transaction struct {
	gorm.Model

	TxnID  string `gorm:"uniqueIndex;size:64" json:"txn_id"`
	Type   string `gorm:"size:32;index" json:"type"`
	Status string `gorm:"size:16;default:pending" json:"status"`

	// (Type, RefType, RefID) is the idempotency key for a business event.
	RefType string `gorm:"size:32;index:idx_txn_ref" json:"ref_type"`
	RefID   string `gorm:"size:64;index:idx_txn_ref" json:"ref_id"`

	Metadata datatypes.JSON `json:"metadata"`
}

// LedgerEntry is one leg of a balanced transaction. Exactly one of Debit
// and Credit is non-zero; the signed delta is Credit-Debit.
type LedgerEntry struct {
	gorm.Model

	TransactionID uint  `gorm:"index" json:"transaction_id"`
	AccountID     uint  `gorm:"index" json:"account_id"`
	Debit         int64 `json:"debit"`
	Credit        int64 `json:"credit"`
	BalanceAfter  int64 `json:"balance_after"`
}

func (e LedgerEntry) Delta() int64 {
	return e.Credit - e.Debit
}
