package auction

import (
	"errors"
	"sync"
	"time"

	"github.com/quickbid/quickbid/helpers"
	"github.com/quickbid/quickbid/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultDuration = 30 * time.Minute

// Engine owns the runtime state of every auction this process serves. All
// mutations for one auction id are serialized behind that auction's entry
// lock; different auctions proceed in parallel. Each mutation is written
// back to the auctions table so state survives a restart.
type Engine struct {
	db          *gorm.DB
	broadcaster Broadcaster
	now         func() time.Time

	mu      sync.Mutex
	entries map[uint]*entry
}

type entry struct {
	mu    sync.Mutex
	state *State
	timer *time.Timer

	// timerGen identifies the live deadline. A fired timer that lost the
	// lock race to Pause or a re-schedule sees a stale generation and
	// does nothing.
	timerGen uint64
}

func NewEngine(db *gorm.DB, broadcaster Broadcaster) *Engine {
	return &Engine{
		db:          db,
		broadcaster: broadcaster,
		now:         func() time.Time { return time.Now().UTC() },
		entries:     make(map[uint]*entry),
	}
}

// SetClock replaces the engine's time source; tests only.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

func (e *Engine) entryFor(auctionID uint) (*entry, error) {
	e.mu.Lock()
	ent, ok := e.entries[auctionID]
	if !ok {
		ent = &entry{}
		e.entries[auctionID] = ent
	}
	e.mu.Unlock()

	ent.mu.Lock()
	if ent.state == nil {
		var model models.Auction
		if err := e.db.First(&model, auctionID).Error; err != nil {
			ent.mu.Unlock()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAuctionNotFound
			}
			return nil, err
		}
		ent.state = stateFromModel(&model)

		// Resume the auto-end timer for an auction that was active when
		// the process went down.
		if ent.state.Status == models.AuctionStatusActive && !ent.state.EndTime.IsZero() {
			e.scheduleEnd(ent, ent.state.EndTime.Sub(e.now()))
		}
	}
	return ent, nil
}

// caller must hold ent.mu
func (e *Engine) scheduleEnd(ent *entry, d time.Duration) {
	if ent.timer != nil {
		ent.timer.Stop()
	}
	if d < 0 {
		d = 0
	}
	ent.timerGen++
	gen := ent.timerGen
	auctionID := ent.state.AuctionID
	ent.timer = time.AfterFunc(d, func() {
		e.expire(auctionID, gen)
	})
}

// caller must hold ent.mu
func (e *Engine) cancelTimer(ent *entry) {
	if ent.timer != nil {
		ent.timer.Stop()
		ent.timer = nil
	}
	ent.timerGen++
}

// expire is the deadline-timer callback. Stop on a fired timer is a no-op,
// so the generation is re-checked under the lock: a pause or re-schedule
// that beat this callback to the lock already invalidated it.
func (e *Engine) expire(auctionID uint, gen uint64) {
	ent, err := e.entryFor(auctionID)
	if err != nil {
		log.WithError(err).WithField("auction_id", auctionID).Error("Automatic auction end failed")
		return
	}
	defer ent.mu.Unlock()

	if ent.timerGen != gen || ent.state.Status != models.AuctionStatusActive {
		return
	}
	if _, err := e.endLocked(ent, "system", ""); err != nil && !errors.Is(err, ErrAlreadyEnded) {
		log.WithError(err).WithField("auction_id", auctionID).Error("Automatic auction end failed")
	}
}

// caller must hold ent.mu
func (e *Engine) persist(ent *entry) error {
	st := ent.state
	updates := map[string]any{
		"status":        st.Status,
		"current_price": st.CurrentPrice,
		"is_extended":   st.IsExtended,
		"total_bids":    st.TotalBids,
	}
	if !st.StartTime.IsZero() {
		updates["start_time"] = st.StartTime
	}
	if !st.EndTime.IsZero() {
		updates["end_time"] = st.EndTime
	}
	return e.db.Model(&models.Auction{}).Where("id = ?", st.AuctionID).Updates(updates).Error
}

func (e *Engine) publish(auctionID uint, eventType string, payload any) {
	if e.broadcaster != nil {
		e.broadcaster.Publish(auctionID, Event{Type: eventType, Payload: payload})
	}
}

// Start activates a waiting auction and schedules its automatic end.
func (e *Engine) Start(auctionID uint, actorID string) (*Snapshot, error) {
	ent, err := e.entryFor(auctionID)
	if err != nil {
		return nil, err
	}
	defer ent.mu.Unlock()

	st := ent.state
	switch st.Status {
	case models.AuctionStatusActive:
		return nil, ErrAlreadyActive
	case models.AuctionStatusEnded:
		return nil, ErrAlreadyEnded
	}

	now := e.now()
	duration := defaultDuration
	if st.DurationSeconds > 0 {
		duration = time.Duration(st.DurationSeconds) * time.Second
	}

	st.Status = models.AuctionStatusActive
	st.StartTime = now
	st.EndTime = now.Add(duration)
	st.IsExtended = false
	if st.CurrentPrice == 0 {
		st.CurrentPrice = st.StartPrice
	}

	if err := e.persist(ent); err != nil {
		return nil, err
	}
	e.scheduleEnd(ent, duration)

	snap := st.snapshot(now)
	log.WithFields(log.Fields{"auction_id": auctionID, "actor": actorID}).Info("Auction started")
	e.publish(auctionID, EventAuctionStarted, snap)
	return &snap, nil
}

// Pause suspends an active auction and cancels its auto-end timer.
func (e *Engine) Pause(auctionID uint, actorID string) (*Snapshot, error) {
	ent, err := e.entryFor(auctionID)
	if err != nil {
		return nil, err
	}
	defer ent.mu.Unlock()

	st := ent.state
	if st.Status != models.AuctionStatusActive {
		return nil, ErrNotActive
	}

	e.cancelTimer(ent)
	st.Status = models.AuctionStatusPaused
	if err := e.persist(ent); err != nil {
		return nil, err
	}

	snap := st.snapshot(e.now())
	log.WithFields(log.Fields{"auction_id": auctionID, "actor": actorID}).Info("Auction paused")
	e.publish(auctionID, EventAuctionPaused, snap)
	return &snap, nil
}

// End terminates an auction from any non-ended state. The winner is the
// last accepted bid unless winnerOverride names one (buy-now, forced
// resolution). Ending an ended auction fails with ErrAlreadyEnded and
// changes nothing.
func (e *Engine) End(auctionID uint, actorID, winnerOverride string) (*Snapshot, error) {
	ent, err := e.entryFor(auctionID)
	if err != nil {
		return nil, err
	}
	defer ent.mu.Unlock()
	return e.endLocked(ent, actorID, winnerOverride)
}

// caller must hold ent.mu
func (e *Engine) endLocked(ent *entry, actorID, winnerOverride string) (*Snapshot, error) {
	st := ent.state
	if st.Status == models.AuctionStatusEnded {
		return nil, ErrAlreadyEnded
	}

	e.cancelTimer(ent)
	now := e.now()
	st.Status = models.AuctionStatusEnded
	if st.EndTime.IsZero() || st.EndTime.After(now) {
		st.EndTime = now
	}

	winnerID, finalPrice := e.resolveWinner(st, winnerOverride)

	if err := e.persist(ent); err != nil {
		return nil, err
	}
	if err := e.db.Model(&models.Auction{}).
		Where("id = ?", st.AuctionID).
		Updates(map[string]any{"winner_id": winnerID, "final_price": finalPrice}).Error; err != nil {
		return nil, err
	}
	if winnerID != "" {
		if err := e.createPayout(st, winnerID, finalPrice); err != nil {
			log.WithError(err).WithField("auction_id", st.AuctionID).Error("Failed to create payout")
		}
	}

	snap := st.snapshot(now)
	log.WithFields(log.Fields{
		"auction_id":  st.AuctionID,
		"actor":       actorID,
		"winner_id":   winnerID,
		"final_price": finalPrice,
	}).Info("Auction ended")
	e.publish(st.AuctionID, EventAuctionEnded, map[string]any{
		"auction_id":  st.AuctionID,
		"winner_id":   winnerID,
		"final_price": finalPrice,
		"ended_at":    now.UTC().Format(time.RFC3339),
	})
	return &snap, nil
}

func (e *Engine) resolveWinner(st *State, winnerOverride string) (string, int64) {
	if winnerOverride != "" {
		price := st.CurrentPrice
		if st.LastBid != nil && st.LastBid.BidderID == winnerOverride {
			price = st.LastBid.Amount
		}
		return winnerOverride, price
	}
	if st.LastBid == nil {
		return "", 0
	}
	// Reserve auctions only sell once the reserve was met.
	if st.AuctionType == models.AuctionTypeReserve && st.LastBid.Amount < st.ReservePrice {
		return "", 0
	}
	return st.LastBid.BidderID, st.LastBid.Amount
}

func (e *Engine) createPayout(st *State, winnerID string, finalPrice int64) error {
	commission := helpers.CommissionCents(finalPrice, helpers.PctFromEnv("SELLER_COMMISSION_PCT", "5"))
	payout := models.Payout{
		SellerID:         st.SellerID,
		AuctionID:        st.AuctionID,
		SalePrice:        finalPrice,
		CommissionAmount: commission,
		NetPayout:        finalPrice - commission,
		Status:           models.PayoutStatusPending,
		Note:             "winner " + winnerID,
	}
	return e.db.Create(&payout).Error
}

// Join/Leave track the active-user count used for presence and the tender
// minimum-bidder precondition.
func (e *Engine) Join(auctionID uint) {
	if ent, err := e.entryFor(auctionID); err == nil {
		ent.state.ActiveUsers++
		ent.mu.Unlock()
	}
}

func (e *Engine) Leave(auctionID uint) {
	if ent, err := e.entryFor(auctionID); err == nil {
		if ent.state.ActiveUsers > 0 {
			ent.state.ActiveUsers--
		}
		ent.mu.Unlock()
	}
}

// Snapshot returns the current read view without mutating anything.
func (e *Engine) Snapshot(auctionID uint) (*Snapshot, error) {
	ent, err := e.entryFor(auctionID)
	if err != nil {
		return nil, err
	}
	defer ent.mu.Unlock()
	snap := ent.state.snapshot(e.now())
	return &snap, nil
}

type BidResult struct {
	Bid          *models.Bid
	State        Snapshot
	IsBuyNow     bool
	ShouldExtend bool
	NewEndTime   time.Time
}

// PlaceBid validates and applies one bid. Everything from the status check
// to the state write happens under the auction's entry lock, so two
// concurrent bids can never both be evaluated against the same prior price.
func (e *Engine) PlaceBid(auctionID uint, bidderID, bidderName string, amount int64) (*BidResult, error) {
	ent, err := e.entryFor(auctionID)
	if err != nil {
		return nil, err
	}
	defer ent.mu.Unlock()

	st := ent.state
	rules := rulesFor(st.AuctionType)
	now := e.now()

	if err := rules.validatePrecondition(st); err != nil {
		return nil, err
	}
	if st.Status != models.AuctionStatusActive {
		if st.Status == models.AuctionStatusEnded {
			return nil, ErrAuctionEnded
		}
		return nil, ErrAuctionNotActive
	}
	if st.TimeLeft(now) <= 0 {
		return nil, ErrAuctionEnded
	}

	// Amount validation runs before the buy-now check; a bid only reaches
	// buy-now once it is a valid bid on its own.
	if err := rules.evaluate(st, amount, now); err != nil {
		e.publish(auctionID, EventBidRejected, map[string]any{
			"bidder_id": bidderID,
			"amount":    amount,
			"reason":    ReasonCode(err),
		})
		return nil, err
	}
	isBuyNow := st.BuyNowPrice > 0 && amount >= st.BuyNowPrice

	bid := models.Bid{
		AuctionID:  auctionID,
		BidderID:   bidderID,
		BidderName: bidderName,
		Amount:     amount,
		IsBuyNow:   isBuyNow,
	}
	if err := e.db.Create(&bid).Error; err != nil {
		return nil, err
	}

	st.CurrentPrice = amount
	st.TotalBids++
	st.LastBid = &LastBid{BidderID: bidderID, BidderName: bidderName, Amount: amount, At: now}

	if isBuyNow || st.AuctionType == models.AuctionTypeDutch {
		// Buy-now and a winning dutch bid both conclude the auction on the
		// spot with this bidder as winner.
		snap, err := e.endLocked(ent, bidderID, bidderID)
		if err != nil {
			return nil, err
		}
		return &BidResult{Bid: &bid, State: *snap, IsBuyNow: isBuyNow}, nil
	}

	extended := rules.postBid(st, now)
	if extended {
		e.scheduleEnd(ent, st.EndTime.Sub(now))
	}

	if err := e.persist(ent); err != nil {
		return nil, err
	}

	snap := st.snapshot(now)
	result := &BidResult{Bid: &bid, State: snap, ShouldExtend: extended}
	if extended {
		result.NewEndTime = st.EndTime
		e.publish(auctionID, EventAuctionExtended, map[string]any{
			"auction_id":   auctionID,
			"new_end_time": st.EndTime.UTC().Format(time.RFC3339),
		})
	}
	e.publish(auctionID, EventBidPlaced, map[string]any{
		"bid":   bid,
		"state": snap,
	})
	return result, nil
}
