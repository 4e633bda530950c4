package auction

import (
	"fmt"
	"time"

	"spice-market/internal/auctionerrors"
	"spice-market/internal/catalog"
	"spice-market/internal/clock"
	"spice-market/internal/engine"
	model "spice-market/internal/models"
	"spice-market/internal/notify"
	"spice-market/internal/store"

	"github.com/shopspring/decimal"
)

// AuctionView is the read model for one auction: current price, bid
// count and time remaining alongside the auction record itself
type AuctionView struct {
	Auction      model.Auction
	CurrentPrice decimal.Decimal
	BidCount     int
	TimeLeft     time.Duration
}

// AnnotatedBid is a bid marked with whether it is the current high bid
type AnnotatedBid struct {
	model.Bid
	IsHighest bool
}

// AuctionService is the single entry point for auction operations.
// Every read and write runs the lazy close first, so no bid is ever
// accepted past the deadline and no consumer observes a stale open
// auction, without needing a background scheduler.
type AuctionService struct {
	store     store.AuctionStore
	catalog   catalog.ProductCatalog
	clock     clock.Clock
	bidding   *engine.BiddingEngine
	lifecycle *engine.LifecycleManager
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(st store.AuctionStore, cat catalog.ProductCatalog, clk clock.Clock, notifier notify.Notifier) *AuctionService {
	return &AuctionService{
		store:     st,
		catalog:   cat,
		clock:     clk,
		bidding:   engine.NewBiddingEngine(st, clk, notifier),
		lifecycle: engine.NewLifecycleManager(st, clk, notifier),
	}
}

// CreateAuction opens a timed auction for a seller's product
func (s *AuctionService) CreateAuction(productID, sellerID string, startPrice, minIncrement decimal.Decimal, duration time.Duration) (model.Auction, error) {
	if productID == "" || sellerID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - missing productID or sellerID", auctionerrors.ErrInvalidParameters)
	}

	product, err := s.catalog.GetProduct(productID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to look up product %s: %w", productID, err)
	}
	if product.SellerID != sellerID {
		return model.Auction{}, fmt.Errorf("service: product %s: %w", productID, auctionerrors.ErrProductNotOwned)
	}

	created, err := s.store.CreateAuction(store.CreateAuctionParams{
		ProductID:    productID,
		SellerID:     sellerID,
		StartPrice:   startPrice,
		MinIncrement: minIncrement,
		Duration:     duration,
	})
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to create auction for product %s: %w", productID, err)
	}
	return created, nil
}

// PlaceBid records a buyer's bid. The lazy close runs first so an
// expired auction rejects the bid even before engine validation.
func (s *AuctionService) PlaceBid(auctionID, bidderID string, amount decimal.Decimal) (model.Bid, error) {
	if _, err := s.lifecycle.CloseIfDue(auctionID); err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to settle auction %s before bid: %w", auctionID, err)
	}

	bid, err := s.bidding.PlaceBid(auctionID, bidderID, amount)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to place bid on auction %s by %s: %w", auctionID, bidderID, err)
	}
	return bid, nil
}

// GetAuctionView returns the current state of an auction. Reads never
// show an open auction past its deadline.
func (s *AuctionService) GetAuctionView(auctionID string) (AuctionView, error) {
	if auctionID == "" {
		return AuctionView{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidParameters)
	}

	auction, err := s.lifecycle.CloseIfDue(auctionID)
	if err != nil {
		return AuctionView{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}

	bids, err := s.store.GetBids(auctionID)
	if err != nil {
		return AuctionView{}, fmt.Errorf("service: failed to load bids for auction %s: %w", auctionID, err)
	}

	currentPrice := auction.StartPrice
	if len(bids) > 0 {
		highest, err := s.store.GetHighestBid(auctionID)
		if err != nil {
			return AuctionView{}, fmt.Errorf("service: failed to load highest bid for auction %s: %w", auctionID, err)
		}
		currentPrice = highest.Amount
	}

	timeLeft := time.Duration(0)
	if auction.Status == model.AuctionOpen {
		if remaining := auction.EndsAt.Sub(s.clock.Now()); remaining > 0 {
			timeLeft = remaining
		}
	}

	return AuctionView{
		Auction:      auction,
		CurrentPrice: currentPrice,
		BidCount:     len(bids),
		TimeLeft:     timeLeft,
	}, nil
}

// GetBidHistory returns an auction's bids, most recent first, each
// annotated with whether it is the current high bid
func (s *AuctionService) GetBidHistory(auctionID string) ([]AnnotatedBid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidParameters)
	}

	auction, err := s.lifecycle.CloseIfDue(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}

	bids, err := s.store.GetBids(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load bids for auction %s: %w", auctionID, err)
	}

	annotated := make([]AnnotatedBid, 0, len(bids))
	for _, b := range bids {
		annotated = append(annotated, AnnotatedBid{
			Bid:       b,
			IsHighest: b.BidID == auction.HighestBidID,
		})
	}
	return annotated, nil
}

// CloseAuction closes an auction early on the seller's request
func (s *AuctionService) CloseAuction(auctionID, requestedBy string) (model.Auction, error) {
	if auctionID == "" || requestedBy == "" {
		return model.Auction{}, fmt.Errorf("service: %w - missing auctionID or requestedBy", auctionerrors.ErrInvalidParameters)
	}

	closed, err := s.lifecycle.RequestEarlyClose(auctionID, requestedBy)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to close auction %s: %w", auctionID, err)
	}
	return closed, nil
}

// SweepExpired runs the lazy close across every open auction. Called by
// the background sweeper so closed-auction notifications go out promptly
// even when nobody is reading.
func (s *AuctionService) SweepExpired() (int, error) {
	open, err := s.store.ListOpenAuctions()
	if err != nil {
		return 0, fmt.Errorf("service: failed to list open auctions: %w", err)
	}

	closed := 0
	for _, a := range open {
		settled, err := s.lifecycle.CloseIfDue(a.AuctionID)
		if err != nil {
			return closed, fmt.Errorf("service: sweep failed on auction %s: %w", a.AuctionID, err)
		}
		if settled.Status == model.AuctionClosed {
			closed++
		}
	}
	return closed, nil
}
