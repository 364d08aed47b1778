package helpers

import (
	"os"

	"github.com/shopspring/decimal"
)

// CommissionCents applies a percentage to an amount in cents, rounding to
// the nearest cent.
func CommissionCents(amountCents int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(pct).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// PctFromEnv reads a percentage setting like BUYER_COMMISSION_PCT=2.5,
// falling back to the given default when unset or malformed.
func PctFromEnv(key string, fallback string) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		raw = fallback
	}
	pct, err := decimal.NewFromString(raw)
	if err != nil {
		pct, _ = decimal.NewFromString(fallback)
	}
	return pct
}
