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

// maxBidAttempts bounds the optimistic retry loop when concurrent bids
// race on the same auction
const maxBidAttempts = 3

// BiddingEngine validates bid proposals and commits them through the
// store's compare-and-set append
type BiddingEngine struct {
	store    store.AuctionStore
	clock    clock.Clock
	notifier notify.Notifier
}

// NewBiddingEngine creates a new BiddingEngine instance
func NewBiddingEngine(st store.AuctionStore, clk clock.Clock, notifier notify.Notifier) *BiddingEngine {
	return &BiddingEngine{
		store:    st,
		clock:    clk,
		notifier: notifier,
	}
}

// PlaceBid validates and commits a buyer's bid on an auction. Validation
// runs against a snapshot of the auction; the store's compare-and-set
// rejects the commit if another bid landed in between, in which case
// validation is retried against the fresh state up to maxBidAttempts.
func (e *BiddingEngine) PlaceBid(auctionID, bidderID string, amount decimal.Decimal) (model.Bid, error) {
	if auctionID == "" || bidderID == "" {
		return model.Bid{}, fmt.Errorf("engine: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidParameters)
	}
	if !amount.IsPositive() {
		return model.Bid{}, fmt.Errorf("engine: %w - non-positive bid amount", auctionerrors.ErrInvalidParameters)
	}

	for attempt := 0; attempt < maxBidAttempts; attempt++ {
		auction, err := e.store.GetAuction(auctionID)
		if err != nil {
			return model.Bid{}, fmt.Errorf("engine: failed to load auction: %w", err)
		}

		// An expired auction the lazy close sweep has not reached yet is
		// closed for bidding all the same.
		if auction.Status == model.AuctionClosed || !e.clock.Now().Before(auction.EndsAt) {
			return model.Bid{}, fmt.Errorf("engine: auction %s: %w", auctionID, auctionerrors.ErrAuctionClosed)
		}

		if bidderID == auction.SellerID {
			return model.Bid{}, fmt.Errorf("engine: auction %s: %w", auctionID, auctionerrors.ErrSelfBid)
		}

		currentPrice := auction.StartPrice
		previousBidder := ""
		if auction.HighestBidID != "" {
			highest, err := e.store.GetHighestBid(auctionID)
			if err != nil {
				return model.Bid{}, fmt.Errorf("engine: failed to load highest bid: %w", err)
			}
			currentPrice = highest.Amount
			previousBidder = highest.BidderID
		}

		minimum := currentPrice.Add(auction.MinIncrement)
		if amount.LessThan(minimum) {
			return model.Bid{}, fmt.Errorf("engine: auction %s: %w",
				auctionID, &auctionerrors.BidTooLowError{Offered: amount, Minimum: minimum})
		}

		bid, err := e.store.AppendBid(auctionID, bidderID, amount, auction.HighestBidID)
		if err != nil {
			if errors.Is(err, auctionerrors.ErrConcurrentModification) {
				continue // another bid committed first, revalidate
			}
			if errors.Is(err, auctionerrors.ErrAlreadyClosed) {
				return model.Bid{}, fmt.Errorf("engine: auction %s: %w", auctionID, auctionerrors.ErrAuctionClosed)
			}
			return model.Bid{}, fmt.Errorf("engine: failed to commit bid on auction %s: %w", auctionID, err)
		}

		if previousBidder != "" && previousBidder != bidderID {
			e.notifier.Outbid(previousBidder, auctionID, amount)
		}
		return bid, nil
	}

	return model.Bid{}, fmt.Errorf("engine: auction %s: %w", auctionID, auctionerrors.ErrTooManyConflicts)
}
