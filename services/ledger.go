package services

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/quickbid/quickbid/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrUnbalancedTransaction = errors.New("ledger: entry deltas do not sum to zero")
	ErrAccountNotFound       = errors.New("ledger: account not found")
	ErrInvalidDelta          = errors.New("ledger: entry delta must be a non-zero amount")
	ErrNoLines               = errors.New("ledger: transaction has no entries")
)

// LedgerLine names an account either by explicit id or by its
// (user, type, currency) owner triple, plus the signed delta in cents.
// Positive deltas credit the account, negative deltas debit it.
type LedgerLine struct {
	AccountID   uint
	UserID      string
	AccountType string
	Currency    string
	Delta       int64
}

type BalancedTransactionInput struct {
	Type     string
	RefType  string
	RefID    string
	Metadata map[string]any
	Lines    []LedgerLine
}

// CreateBalancedTransaction posts one balanced transaction in its own DB
// transaction. See ApplyBalancedTransaction for the contract.
func CreateBalancedTransaction(db *gorm.DB, in BalancedTransactionInput) (*models.Transaction, bool, error) {
	var txn *models.Transaction
	var existing bool
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		txn, existing, err = ApplyBalancedTransaction(tx, in)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return txn, existing, nil
}

// ApplyBalancedTransaction posts a balanced transaction inside an already
// open DB transaction. It is at-most-once per (type, ref_type, ref_id): if
// a transaction with the same key exists it is returned unchanged with the
// second result true and no entries are written. Accounts named by owner
// triple are created lazily; accounts named by id must exist. Every line's
// delta is validated non-zero and the deltas must sum to exactly zero
// before anything is written.
func ApplyBalancedTransaction(tx *gorm.DB, in BalancedTransactionInput) (*models.Transaction, bool, error) {
	if len(in.Lines) == 0 {
		return nil, false, ErrNoLines
	}

	var sum int64
	for _, line := range in.Lines {
		if line.Delta == 0 {
			return nil, false, ErrInvalidDelta
		}
		sum += line.Delta
	}
	if sum != 0 {
		return nil, false, ErrUnbalancedTransaction
	}

	if in.RefType != "" && in.RefID != "" {
		var prior models.Transaction
		err := tx.Where("type = ? AND ref_type = ? AND ref_id = ?", in.Type, in.RefType, in.RefID).
			First(&prior).Error
		if err == nil {
			return &prior, true, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	accounts, err := resolveAccounts(tx, in.Lines)
	if err != nil {
		return nil, false, err
	}

	txn := models.Transaction{
		TxnID:   uuid.New().String(),
		Type:    in.Type,
		Status:  models.TxnStatusPending,
		RefType: in.RefType,
		RefID:   in.RefID,
	}
	if in.Metadata != nil {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, false, err
		}
		txn.Metadata = datatypes.JSON(raw)
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, false, err
	}

	for i, line := range in.Lines {
		account := accounts[i]
		account.Balance += line.Delta

		entry := models.LedgerEntry{
			TransactionID: txn.ID,
			AccountID:     account.ID,
			BalanceAfter:  account.Balance,
		}
		if line.Delta > 0 {
			entry.Credit = line.Delta
		} else {
			entry.Debit = -line.Delta
		}

		if err := tx.Create(&entry).Error; err != nil {
			return nil, false, err
		}
		if err := tx.Model(account).Update("balance", account.Balance).Error; err != nil {
			return nil, false, err
		}
	}

	if err := tx.Model(&txn).Update("status", models.TxnStatusCompleted).Error; err != nil {
		return nil, false, err
	}
	txn.Status = models.TxnStatusCompleted

	return &txn, false, nil
}

// resolveAccounts locks every named account FOR UPDATE so the
// read-modify-write of its balance cannot race a concurrent posting.
// Accounts are locked in id order to keep lock acquisition deterministic.
func resolveAccounts(tx *gorm.DB, lines []LedgerLine) ([]*models.Account, error) {
	type slot struct {
		index   int
		account *models.Account
	}
	slots := make([]slot, 0, len(lines))

	for i, line := range lines {
		account, err := locateAccount(tx, line)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot{index: i, account: account})
	}

	sort.Slice(slots, func(a, b int) bool {
		return slots[a].account.ID < slots[b].account.ID
	})

	// Lines naming the same account share one struct so their deltas
	// accumulate instead of clobbering each other.
	locked := make(map[uint]*models.Account, len(slots))
	resolved := make([]*models.Account, len(lines))
	for _, s := range slots {
		if shared, ok := locked[s.account.ID]; ok {
			resolved[s.index] = shared
			continue
		}
		var fresh models.Account
		if err := forUpdate(tx).
			First(&fresh, s.account.ID).Error; err != nil {
			return nil, err
		}
		locked[s.account.ID] = &fresh
		resolved[s.index] = &fresh
	}
	return resolved, nil
}

func locateAccount(tx *gorm.DB, line LedgerLine) (*models.Account, error) {
	var account models.Account

	if line.AccountID != 0 {
		if err := tx.First(&account, line.AccountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}
		return &account, nil
	}

	if line.AccountType == "" {
		return nil, ErrAccountNotFound
	}
	currency := line.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}

	err := tx.Where(models.Account{
		UserID:   line.UserID,
		Type:     line.AccountType,
		Currency: currency,
	}).FirstOrCreate(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// EnsureAccount resolves or creates an account by owner triple without
// posting anything against it.
func EnsureAccount(db *gorm.DB, userID, accountType, currency string) (*models.Account, error) {
	return locateAccount(db, LedgerLine{UserID: userID, AccountType: accountType, Currency: currency})
}
