package engine

import (
	"errors"
	"fmt"

	"spice-market/internal/auctionerrors"
	"spice-market/internal/clock"
	model "spice-market/internal/models"
	"spice-market/internal/notify"
	"spice-market/internal/store"

	"github.com/shopspring/decimal"
)

// LifecycleManager decides when an auction leaves the open state and
// computes its settlement. Closure is idempotent: whoever closes first
// wins, every later caller gets the identical settled auction back.
type LifecycleManager struct {
	store    store.AuctionStore
	clock    clock.Clock
	notifier notify.Notifier
}

// NewLifecycleManager creates a new LifecycleManager instance
func NewLifecycleManager(st store.AuctionStore, clk clock.Clock, notifier notify.Notifier) *LifecycleManager {
	return &LifecycleManager{
		store:    st,
		clock:    clk,
		notifier: notifier,
	}
}

// CloseIfDue closes the auction if its deadline has passed and returns
// the current auction state either way. Safe to call from a periodic
// sweep or lazily on every read and write.
func (m *LifecycleManager) CloseIfDue(auctionID string) (model.Auction, error) {
	auction, err := m.store.GetAuction(auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("lifecycle: failed to load auction: %w", err)
	}

	if auction.Status == model.AuctionClosed {
		return auction, nil
	}
	if m.clock.Now().Before(auction.EndsAt) {
		return auction, nil
	}

	return m.settle(auction)
}

// RequestEarlyClose closes an open auction before its deadline on the
// seller's request
func (m *LifecycleManager) RequestEarlyClose(auctionID, requestedBy string) (model.Auction, error) {
	auction, err := m.store.GetAuction(auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("lifecycle: failed to load auction: %w", err)
	}

	if requestedBy != auction.SellerID {
		return model.Auction{}, fmt.Errorf("lifecycle: close of auction %s requested by %s: %w",
			auctionID, requestedBy, auctionerrors.ErrForbidden)
	}
	if auction.Status == model.AuctionClosed {
		return model.Auction{}, fmt.Errorf("lifecycle: auction %s: %w", auctionID, auctionerrors.ErrAlreadyClosed)
	}

	return m.settle(auction)
}

// settle computes the outcome from the bid history and commits the
// open -> closed transition. A concurrent close is accepted as
// authoritative: the settlement is deterministic given the same bids.
func (m *LifecycleManager) settle(auction model.Auction) (model.Auction, error) {
	winnerID := ""
	var finalPrice *decimal.Decimal

	highest, err := m.store.GetHighestBid(auction.AuctionID)
	switch {
	case err == nil:
		winnerID = highest.BidderID
		amount := highest.Amount
		finalPrice = &amount
	case errors.Is(err, auctionerrors.ErrNoBids):
		// unsold, no winner
	default:
		return model.Auction{}, fmt.Errorf("lifecycle: failed to load highest bid: %w", err)
	}

	closed, err := m.store.CloseAuction(auction.AuctionID, winnerID, finalPrice)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrAlreadyClosed) {
			return closed, nil
		}
		return model.Auction{}, fmt.Errorf("lifecycle: failed to close auction %s: %w", auction.AuctionID, err)
	}

	m.notifier.AuctionClosed(closed)
	return closed, nil
}
