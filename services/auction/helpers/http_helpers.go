package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"spice-market/internal/auctionerrors"
	auction "spice-market/internal/auctionService"
	model "spice-market/internal/models"
	"spice-market/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, auctionerrors.ErrSpiceNotFound):
		return http.StatusNotFound, "spice not found"
	case errors.Is(err, auctionerrors.ErrInvalidParameters):
		return http.StatusBadRequest, "invalid parameters"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrDuplicateActiveAuction):
		return http.StatusConflict, "product already has an open auction"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return http.StatusConflict, "auction is closed for bidding"
	case errors.Is(err, auctionerrors.ErrAlreadyClosed):
		return http.StatusConflict, "auction already closed"
	case errors.Is(err, auctionerrors.ErrTooManyConflicts):
		return http.StatusConflict, "too many concurrent bids, retry"
	case errors.Is(err, auctionerrors.ErrSelfBid):
		return http.StatusForbidden, "sellers may not bid on their own auction"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return http.StatusForbidden, "operation not permitted"
	case errors.Is(err, auctionerrors.ErrProductNotOwned):
		return http.StatusForbidden, "product does not belong to seller"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusOK, "no bids placed on auction"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HandleBidError maps a failed bid to JSON. A too-low bid additionally
// reports the minimum acceptable amount so the client can retry with a
// corrected value.
func HandleBidError(c *gin.Context, err error) {
	status, message := MapErrorToHTTP(err)

	var tooLow *auctionerrors.BidTooLowError
	if errors.As(err, &tooLow) {
		c.JSON(status, gin.H{
			"status":           status,
			"message":          message,
			"error":            err.Error(),
			"minimum_next_bid": tooLow.Minimum.String(),
		})
		return
	}

	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// ToAuctionResponse shapes an auction record for the wire
func ToAuctionResponse(a model.Auction) AuctionResponse {
	resp := AuctionResponse{
		AuctionID:    a.AuctionID,
		ProductID:    a.ProductID,
		SellerID:     a.SellerID,
		StartPrice:   a.StartPrice.String(),
		MinIncrement: a.MinIncrement.String(),
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
		EndsAt:       a.EndsAt.UTC().Format(time.RFC3339),
		Status:       string(a.Status),
		WinnerID:     a.WinnerID,
	}
	if a.FinalPrice != nil {
		price := a.FinalPrice.String()
		resp.FinalPrice = &price
	}
	return resp
}

// ToAuctionViewResponse shapes the auction read model for the wire
func ToAuctionViewResponse(v auction.AuctionView) AuctionViewResponse {
	return AuctionViewResponse{
		Auction:      ToAuctionResponse(v.Auction),
		CurrentPrice: v.CurrentPrice.String(),
		MinimumNext:  v.CurrentPrice.Add(v.Auction.MinIncrement).String(),
		BidCount:     v.BidCount,
		TimeLeftMs:   v.TimeLeft.Milliseconds(),
	}
}

// ToBidResponse shapes a bid record for the wire
func ToBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount.String(),
		PlacedAt:  b.PlacedAt.UTC().Format(time.RFC3339Nano),
	}
}
