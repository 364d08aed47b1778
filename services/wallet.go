package services

import (
	"errors"

	"github.com/quickbid/quickbid/models"

	"gorm.io/gorm"
)

var ErrWalletNotFound = errors.New("wallet: not found")

// EnsureWallet resolves or creates the legacy balance-cache row for a user.
func EnsureWallet(db *gorm.DB, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := db.Where(models.Wallet{UserID: userID}).
		Attrs(models.Wallet{Currency: models.DefaultCurrency, IsActive: true}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func GetWallet(db *gorm.DB, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := db.Where("user_id = ? AND is_active = true", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// AdjustWalletCache mirrors a ledger movement into the cached balance. It
// must only be called inside the same DB transaction that posted the
// ledger entries, so cache and ledger move together or not at all.
func AdjustWalletCache(tx *gorm.DB, userID string, delta int64) (*models.Wallet, error) {
	var wallet models.Wallet
	err := forUpdate(tx).
		Where(models.Wallet{UserID: userID}).
		Attrs(models.Wallet{Currency: models.DefaultCurrency, IsActive: true}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return nil, err
	}

	wallet.Balance += delta
	if err := tx.Model(&wallet).Update("balance", wallet.Balance).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}
