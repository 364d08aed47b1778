package auction

import (
	"fmt"
	"time"

	"github.com/quickbid/quickbid/models"
)

const (
	snipeTriggerWindow = 5 * time.Minute
	snipeExtension     = 2 * time.Minute
	tenderIncrement    = 500
)

// typeRules is the per-auction-type strategy. The engine only ever talks to
// this interface; all switch-on-type behavior lives here.
type typeRules interface {
	// minIncrement is the least amount a bid must move the price by.
	minIncrement(price int64) int64
	// validatePrecondition runs before any amount checks.
	validatePrecondition(st *State) error
	// evaluate checks amount against the price as of now. The engine holds
	// the per-auction lock, so the price seen here always includes every
	// previously accepted bid.
	evaluate(st *State, amount int64, now time.Time) error
	// postBid applies the type's after-accept policy; it reports whether
	// the end time was extended.
	postBid(st *State, now time.Time) bool
}

func rulesFor(auctionType string) typeRules {
	switch auctionType {
	case models.AuctionTypeFlash:
		return percentRules{floor: 50, pct: 1}
	case models.AuctionTypeLive:
		return percentRules{floor: 100, pct: 2}
	case models.AuctionTypeTimed:
		return timedRules{percentRules{floor: 100, pct: 5}}
	case models.AuctionTypeTender:
		return tenderRules{}
	case models.AuctionTypeDutch:
		return dutchRules{}
	default: // standard, reserve
		return percentRules{floor: 100, pct: 5}
	}
}

// percentRules: increment is max(floor, pct% of the current price), bids
// must exceed the current price by at least that.
type percentRules struct {
	floor int64
	pct   int64
}

func (r percentRules) minIncrement(price int64) int64 {
	byPct := price * r.pct / 100
	if byPct < r.floor {
		return r.floor
	}
	return byPct
}

func (r percentRules) validatePrecondition(*State) error { return nil }

func (r percentRules) evaluate(st *State, amount int64, _ time.Time) error {
	if amount <= st.CurrentPrice {
		return fmt.Errorf("%w: current price is %d", ErrBidTooLow, st.CurrentPrice)
	}
	min := st.CurrentPrice + r.minIncrement(st.CurrentPrice)
	if amount < min {
		return fmt.Errorf("%w: minimum bid is %d", ErrBidIncrementTooSmall, min)
	}
	return nil
}

func (r percentRules) postBid(*State, time.Time) bool { return false }

// timedRules adds anti-sniping on top of the standard increments: a bid
// accepted inside the trigger window pushes the end time out.
type timedRules struct {
	percentRules
}

func (r timedRules) postBid(st *State, now time.Time) bool {
	if st.TimeLeft(now) > snipeTriggerWindow {
		return false
	}
	st.EndTime = st.EndTime.Add(snipeExtension)
	st.IsExtended = true
	return true
}

// tenderRules: lowest bid wins. A new bid must undercut the standing price
// by a flat increment, and bidding only opens once enough distinct users
// are in the room. Ties at the same price resolve by arrival order: the
// first is accepted, the second no longer undercuts.
type tenderRules struct{}

func (tenderRules) minIncrement(int64) int64 { return tenderIncrement }

func (tenderRules) validatePrecondition(st *State) error {
	if st.MinBidders > 0 && st.ActiveUsers < st.MinBidders {
		return fmt.Errorf("%w: need %d active bidders", ErrMinimumBiddersNotMet, st.MinBidders)
	}
	return nil
}

func (tenderRules) evaluate(st *State, amount int64, _ time.Time) error {
	if amount >= st.CurrentPrice {
		return fmt.Errorf("%w: current lowest offer is %d", ErrBidTooLow, st.CurrentPrice)
	}
	max := st.CurrentPrice - tenderIncrement
	if amount > max {
		return fmt.Errorf("%w: offer must be at most %d", ErrBidIncrementTooSmall, max)
	}
	return nil
}

func (tenderRules) postBid(*State, time.Time) bool { return false }

// dutchRules: the asking price decays by the wall clock and a bid at or
// above the decayed price wins. The price is recomputed here, at commit
// time under the auction lock, never trusted from what the client saw.
type dutchRules struct{}

func (dutchRules) minIncrement(int64) int64 { return 0 }

func (dutchRules) validatePrecondition(*State) error { return nil }

func (dutchRules) evaluate(st *State, amount int64, now time.Time) error {
	asking := dutchAskingPrice(st, now)
	if amount < asking {
		return fmt.Errorf("%w: asking price is %d", ErrBidTooLow, asking)
	}
	return nil
}

func (dutchRules) postBid(*State, time.Time) bool { return false }

func dutchAskingPrice(st *State, now time.Time) int64 {
	if st.StartTime.IsZero() || st.DecrementPerMin <= 0 {
		return st.StartPrice
	}
	elapsedMin := int64(now.Sub(st.StartTime) / time.Minute)
	if elapsedMin < 0 {
		elapsedMin = 0
	}
	price := st.StartPrice - elapsedMin*st.DecrementPerMin
	if price < st.FloorPrice {
		price = st.FloorPrice
	}
	return price
}
