package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Spice identifies a commodity from the fixed catalog
type Spice string

const (
	SpicePepper   Spice = "pepper"
	SpiceCardamom Spice = "cardamom"
	SpiceClove    Spice = "clove"
	SpiceNutmeg   Spice = "nutmeg"
	SpiceCinnamon Spice = "cinnamon"
	SpiceVanilla  Spice = "vanilla"
)

// Spices lists every commodity the marketplace trades in
var Spices = []Spice{SpicePepper, SpiceCardamom, SpiceClove, SpiceNutmeg, SpiceCinnamon, SpiceVanilla}

// Valid reports whether s is part of the fixed catalog
func (s Spice) Valid() bool {
	for _, known := range Spices {
		if s == known {
			return true
		}
	}
	return false
}

// Grade is the quality grade assigned to a product
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// Valid reports whether g is a recognized quality grade
func (g Grade) Valid() bool {
	return g == GradeA || g == GradeB || g == GradeC
}

// Product represents a quantity of a commodity offered by a seller.
// Immutable once an auction has been created against it.
type Product struct {
	ProductID  string          `json:"product_id"`
	Spice      Spice           `json:"spice"`
	Grade      Grade           `json:"grade"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
	SellerID   string          `json:"seller_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuctionStatus is the lifecycle state of an auction
type AuctionStatus string

const (
	AuctionOpen   AuctionStatus = "open"
	AuctionClosed AuctionStatus = "closed" // terminal, never reopened
)

// Auction is the timed sale of exactly one product. Only HighestBidID,
// Status, WinnerID and FinalPrice ever change after creation, and only
// through the store's atomic operations.
type Auction struct {
	AuctionID    string           `json:"auction_id"`
	ProductID    string           `json:"product_id"`
	SellerID     string           `json:"seller_id"`
	StartPrice   decimal.Decimal  `json:"start_price"`
	MinIncrement decimal.Decimal  `json:"min_increment"`
	CreatedAt    time.Time        `json:"created_at"`
	EndsAt       time.Time        `json:"ends_at"`
	Status       AuctionStatus    `json:"status"`
	HighestBidID string           `json:"highest_bid_id,omitempty"`
	WinnerID     string           `json:"winner_id,omitempty"`
	FinalPrice   *decimal.Decimal `json:"final_price,omitempty"`
}

// Bid is an immutable record of one buyer's offer on an auction.
// PlacedAt is server-assigned and strictly increasing within an auction.
type Bid struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	PlacedAt  time.Time       `json:"placed_at"`
}

// OHLC is one reference-price candle for a spice
type OHLC struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
}

// SpiceSummary is the latest reference price for a spice with its
// percent change against the previous close
type SpiceSummary struct {
	Name       Spice           `json:"name"`
	Current    OHLC            `json:"current"`
	ChangePct  decimal.Decimal `json:"change_pct"`
	DataPoints int             `json:"data_points"`
}
