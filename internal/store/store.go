package store

import (
	"fmt"
	"sync"
	"time"

	"spice-market/internal/auctionerrors"
	"spice-market/internal/clock"
	model "spice-market/internal/models"
	"spice-market/utils"

	"github.com/shopspring/decimal"
)

// CreateAuctionParams carries the immutable fields of a new auction
type CreateAuctionParams struct {
	ProductID    string
	SellerID     string
	StartPrice   decimal.Decimal
	MinIncrement decimal.Decimal
	Duration     time.Duration
}

// AuctionStore defines auction and bid storage for the marketplace.
// AppendBid and CloseAuction are the only operations that mutate an
// auction, and both are atomic: AppendBid commits only if the caller's
// observed highest bid is still current, CloseAuction transitions
// open -> closed exactly once.
type AuctionStore interface {
	CreateAuction(p CreateAuctionParams) (model.Auction, error)
	GetAuction(auctionID string) (model.Auction, error)
	ListOpenAuctions() ([]model.Auction, error)
	AppendBid(auctionID, bidderID string, amount decimal.Decimal, expectedHighestBidID string) (model.Bid, error)
	CloseAuction(auctionID, winnerID string, finalPrice *decimal.Decimal) (model.Auction, error)
	GetHighestBid(auctionID string) (model.Bid, error)
	GetBids(auctionID string) ([]model.Bid, error)
}

// MemoryStore is a concurrency-safe in-memory implementation of AuctionStore
type MemoryStore struct {
	mu              sync.RWMutex
	clock           clock.Clock
	auctions        map[string]model.Auction // key: auctionID
	bids            map[string][]model.Bid   // key: auctionID -> bids in placement order
	bidByID         map[string]model.Bid     // key: bidID
	activeByProduct map[string]string        // key: productID -> open auctionID
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	return &MemoryStore{
		clock:           clk,
		auctions:        make(map[string]model.Auction),
		bids:            make(map[string][]model.Bid),
		bidByID:         make(map[string]model.Bid),
		activeByProduct: make(map[string]string),
	}
}

// CreateAuction opens a new auction for a product
func (s *MemoryStore) CreateAuction(p CreateAuctionParams) (model.Auction, error) {
	if !p.StartPrice.IsPositive() || !p.MinIncrement.IsPositive() || p.Duration <= 0 {
		return model.Auction{}, fmt.Errorf("create auction for product %s: %w", p.ProductID, auctionerrors.ErrInvalidParameters)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if openID, ok := s.activeByProduct[p.ProductID]; ok {
		return model.Auction{}, fmt.Errorf("create auction for product %s: open auction %s exists: %w",
			p.ProductID, openID, auctionerrors.ErrDuplicateActiveAuction)
	}

	now := s.clock.Now()
	auction := model.Auction{
		AuctionID:    utils.GenerateID(),
		ProductID:    p.ProductID,
		SellerID:     p.SellerID,
		StartPrice:   p.StartPrice,
		MinIncrement: p.MinIncrement,
		CreatedAt:    now,
		EndsAt:       now.Add(p.Duration),
		Status:       model.AuctionOpen,
	}

	s.auctions[auction.AuctionID] = auction
	s.activeByProduct[p.ProductID] = auction.AuctionID

	return auction, nil
}

// GetAuction returns a snapshot of one auction
func (s *MemoryStore) GetAuction(auctionID string) (model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// ListOpenAuctions returns snapshots of all auctions still marked open
func (s *MemoryStore) ListOpenAuctions() ([]model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	open := make([]model.Auction, 0)
	for _, auction := range s.auctions {
		if auction.Status == model.AuctionOpen {
			open = append(open, auction)
		}
	}
	return open, nil
}

// AppendBid inserts a bid and updates the highest-bid pointer in one
// atomic step. The caller passes the highest bid ID it validated
// against; if another bid committed in between, the append is rejected
// with ErrConcurrentModification and no state changes.
func (s *MemoryStore) AppendBid(auctionID, bidderID string, amount decimal.Decimal, expectedHighestBidID string) (model.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return model.Bid{}, fmt.Errorf("append bid to auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if auction.Status == model.AuctionClosed {
		return model.Bid{}, fmt.Errorf("append bid to auction %s: %w", auctionID, auctionerrors.ErrAlreadyClosed)
	}
	if auction.HighestBidID != expectedHighestBidID {
		return model.Bid{}, fmt.Errorf("append bid to auction %s: %w", auctionID, auctionerrors.ErrConcurrentModification)
	}

	// PlacedAt must be strictly increasing within one auction even when
	// two commits land on the same clock tick.
	placedAt := s.clock.Now()
	if existing := s.bids[auctionID]; len(existing) > 0 {
		if last := existing[len(existing)-1].PlacedAt; !placedAt.After(last) {
			placedAt = last.Add(time.Nanosecond)
		}
	}

	bid := model.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		PlacedAt:  placedAt,
	}

	s.bids[auctionID] = append(s.bids[auctionID], bid)
	s.bidByID[bid.BidID] = bid
	auction.HighestBidID = bid.BidID
	s.auctions[auctionID] = auction

	return bid, nil
}

// CloseAuction transitions an auction to its terminal state exactly once
func (s *MemoryStore) CloseAuction(auctionID, winnerID string, finalPrice *decimal.Decimal) (model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("close auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if auction.Status == model.AuctionClosed {
		return auction, fmt.Errorf("close auction %s: %w", auctionID, auctionerrors.ErrAlreadyClosed)
	}

	auction.Status = model.AuctionClosed
	auction.WinnerID = winnerID
	if finalPrice != nil {
		price := *finalPrice
		auction.FinalPrice = &price
	}

	s.auctions[auctionID] = auction
	delete(s.activeByProduct, auction.ProductID)

	return auction, nil
}

// GetHighestBid returns the bid the auction's highest-bid pointer
// currently designates
func (s *MemoryStore) GetHighestBid(auctionID string) (model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if auction.HighestBidID == "" {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return s.bidByID[auction.HighestBidID], nil
}

// GetBids returns all bids for an auction, most recent first
func (s *MemoryStore) GetBids(auctionID string) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	bids := s.bids[auctionID]
	out := make([]model.Bid, len(bids))
	for i, b := range bids {
		out[len(bids)-1-i] = b
	}
	return out, nil
}
