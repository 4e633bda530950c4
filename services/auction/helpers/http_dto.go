package helpers

import (
	"github.com/shopspring/decimal"
)

// Request DTOs. Identity fields (seller_id, bidder_id) are trusted as
// supplied; authentication is an external boundary.
type CreateProductRequest struct {
	SellerID   string          `json:"seller_id" binding:"required"`
	Spice      string          `json:"spice" binding:"required"`
	Grade      string          `json:"grade" binding:"required"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
}

type CreateAuctionRequest struct {
	ProductID    string          `json:"product_id" binding:"required"`
	SellerID     string          `json:"seller_id" binding:"required"`
	StartPrice   decimal.Decimal `json:"start_price"`
	MinIncrement decimal.Decimal `json:"min_increment"`
	DurationMs   int64           `json:"duration_ms"`
}

type PlaceBidRequest struct {
	BidderID string          `json:"bidder_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

type CloseAuctionRequest struct {
	RequestedBy string `json:"requested_by" binding:"required"`
}

type UpdatePriceRequest struct {
	Spice string          `json:"spice" binding:"required"`
	Price decimal.Decimal `json:"price"`
}

type BulkUpdatePricesRequest struct {
	Prices map[string]decimal.Decimal `json:"prices" binding:"required"`
}

// Response DTOs
type AuctionResponse struct {
	AuctionID    string  `json:"auction_id"`
	ProductID    string  `json:"product_id"`
	SellerID     string  `json:"seller_id"`
	StartPrice   string  `json:"start_price"`
	MinIncrement string  `json:"min_increment"`
	CreatedAt    string  `json:"created_at"`
	EndsAt       string  `json:"ends_at"`
	Status       string  `json:"status"`
	WinnerID     string  `json:"winner_id,omitempty"`
	FinalPrice   *string `json:"final_price,omitempty"`
}

type AuctionViewResponse struct {
	Auction      AuctionResponse `json:"auction"`
	CurrentPrice string          `json:"current_price"`
	MinimumNext  string          `json:"minimum_next_bid"`
	BidCount     int             `json:"bid_count"`
	TimeLeftMs   int64           `json:"time_left_ms"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	BidderID  string `json:"bidder_id"`
	Amount    string `json:"amount"`
	PlacedAt  string `json:"placed_at"`
}

type HistoryBidResponse struct {
	BidResponse
	IsHighest bool `json:"is_highest"`
}
