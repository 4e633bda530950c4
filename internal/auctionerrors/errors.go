package auctionerrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Store-level errors
var (
	ErrAuctionNotFound        = errors.New("auction not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrNoBids                 = errors.New("no bids placed on auction")
	ErrDuplicateActiveAuction = errors.New("product already has an open auction")
	ErrConcurrentModification = errors.New("auction modified concurrently")
	ErrAlreadyClosed          = errors.New("auction already closed")
)

// Business logic errors
var (
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrAuctionClosed     = errors.New("auction is closed for bidding")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrSelfBid           = errors.New("sellers may not bid on their own auction")
	ErrTooManyConflicts  = errors.New("bid rejected after repeated conflicts")
	ErrForbidden         = errors.New("operation not permitted")
	ErrProductNotOwned   = errors.New("product does not belong to seller")
	ErrSpiceNotFound     = errors.New("spice not found")
)

// BidTooLowError reports the minimum acceptable amount alongside
// ErrBidTooLow so the client can immediately retry with a corrected bid.
type BidTooLowError struct {
	Offered decimal.Decimal
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid amount too low: offered %s, minimum acceptable %s", e.Offered, e.Minimum)
}

// Unwrap lets errors.Is match against ErrBidTooLow
func (e *BidTooLowError) Unwrap() error {
	return ErrBidTooLow
}
