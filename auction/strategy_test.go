package auction

import (
	"testing"
	"time"

	"github.com/quickbid/quickbid/models"

	"github.com/stretchr/testify/require"
)

func TestMinIncrementByType(t *testing.T) {
	cases := []struct {
		auctionType string
		price       int64
		want        int64
	}{
		{models.AuctionTypeFlash, 1000, 50},     // floor wins over 1%
		{models.AuctionTypeFlash, 100000, 1000}, // 1% wins over floor
		{models.AuctionTypeLive, 1000, 100},
		{models.AuctionTypeLive, 100000, 2000},
		{models.AuctionTypeTimed, 1000, 100},
		{models.AuctionTypeTimed, 100000, 5000},
		{models.AuctionTypeStandard, 1000, 100},
		{models.AuctionTypeReserve, 100000, 5000},
		{models.AuctionTypeTender, 100000, 500},
	}
	for _, tc := range cases {
		got := rulesFor(tc.auctionType).minIncrement(tc.price)
		require.Equal(t, tc.want, got, "%s at %d", tc.auctionType, tc.price)
	}
}

func TestDutchAskingPrice(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := &State{
		StartPrice:      10000,
		DecrementPerMin: 100,
		FloorPrice:      8000,
		StartTime:       start,
	}

	require.Equal(t, int64(10000), dutchAskingPrice(st, start))
	require.Equal(t, int64(10000), dutchAskingPrice(st, start.Add(59*time.Second)))
	require.Equal(t, int64(9900), dutchAskingPrice(st, start.Add(time.Minute)))
	require.Equal(t, int64(9500), dutchAskingPrice(st, start.Add(5*time.Minute)))
	// Clamped at the floor no matter how long it runs.
	require.Equal(t, int64(8000), dutchAskingPrice(st, start.Add(24*time.Hour)))
}

func TestDutchAskingPriceWithoutDecay(t *testing.T) {
	st := &State{StartPrice: 10000}
	require.Equal(t, int64(10000), dutchAskingPrice(st, time.Now()))
}

func TestTenderPrecondition(t *testing.T) {
	rules := rulesFor(models.AuctionTypeTender)

	st := &State{MinBidders: 3, ActiveUsers: 2}
	require.ErrorIs(t, rules.validatePrecondition(st), ErrMinimumBiddersNotMet)

	st.ActiveUsers = 3
	require.NoError(t, rules.validatePrecondition(st))

	// No minimum configured means bidding is always open.
	require.NoError(t, rules.validatePrecondition(&State{}))
}

func TestReasonCodes(t *testing.T) {
	cases := map[error]string{
		ErrAuctionNotActive:     "auction_not_active",
		ErrAuctionEnded:         "auction_ended",
		ErrBidTooLow:            "bid_too_low",
		ErrBidIncrementTooSmall: "bid_increment_too_small",
		ErrMinimumBiddersNotMet: "minimum_bidders_not_met",
		ErrAuctionNotFound:      "internal_error",
	}
	for err, want := range cases {
		require.Equal(t, want, ReasonCode(err))
	}
}
