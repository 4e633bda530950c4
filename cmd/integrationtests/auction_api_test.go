package integrationtests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"spice-market/services/auction/helpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// createAuction drives POST /auctions and returns the new auction ID
func createAuction(t *testing.T, env *testEnv, productID, sellerID string) string {
	t.Helper()

	resp, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", helpers.CreateAuctionRequest{
		ProductID:    productID,
		SellerID:     sellerID,
		StartPrice:   decimal.NewFromInt(1000),
		MinIncrement: decimal.NewFromInt(50),
		DurationMs:   time.Hour.Milliseconds(),
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	data := resp.(map[string]any)
	require.NotEmpty(t, data["auction_id"])
	require.Equal(t, "open", data["status"])
	return data["auction_id"].(string)
}

func TestCreateAuctionEndpoint(t *testing.T) {
	env := SetupTestEnv()
	product := env.NewProduct(t, "seller1")

	auctionID := createAuction(t, env, product.ProductID, "seller1")
	require.NotEmpty(t, auctionID)

	t.Run("duplicate_active_auction", func(t *testing.T) {
		_, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", helpers.CreateAuctionRequest{
			ProductID:    product.ProductID,
			SellerID:     "seller1",
			StartPrice:   decimal.NewFromInt(1000),
			MinIncrement: decimal.NewFromInt(50),
		})
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown_product", func(t *testing.T) {
		_, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", helpers.CreateAuctionRequest{
			ProductID:    "missing",
			SellerID:     "seller1",
			StartPrice:   decimal.NewFromInt(1000),
			MinIncrement: decimal.NewFromInt(50),
		})
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("foreign_product", func(t *testing.T) {
		other := env.NewProduct(t, "seller2")
		_, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", helpers.CreateAuctionRequest{
			ProductID:    other.ProductID,
			SellerID:     "seller1",
			StartPrice:   decimal.NewFromInt(1000),
			MinIncrement: decimal.NewFromInt(50),
		})
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid_json", func(t *testing.T) {
		_, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", []byte("{product_id: 'missing quotes'}"))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// The full auction walkthrough: low bid rejected with corrected minimum,
// valid bids ratchet the price, expiry settles to the highest bidder
func TestAuctionBiddingFlow(t *testing.T) {
	env := SetupTestEnv()
	product := env.NewProduct(t, "seller1")
	auctionID := createAuction(t, env, product.ProductID, "seller1")
	bidURL := fmt.Sprintf("/auctions/%s/bid", auctionID)

	// 1020 under minimum, response reports 1050
	resp, w := env.ExecuteRequestAndParse(t, http.MethodPost, bidURL, helpers.PlaceBidRequest{
		BidderID: "buyer1", Amount: decimal.NewFromInt(1020),
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "1050", resp.(map[string]any)["minimum_next_bid"])

	// 1050 accepted
	resp, w = env.ExecuteRequestAndParse(t, http.MethodPost, bidURL, helpers.PlaceBidRequest{
		BidderID: "buyer1", Amount: decimal.NewFromInt(1050),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "1050", resp.(map[string]any)["amount"])

	// a second 1050 rejected
	_, w = env.ExecuteRequestAndParse(t, http.MethodPost, bidURL, helpers.PlaceBidRequest{
		BidderID: "buyer2", Amount: decimal.NewFromInt(1050),
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// seller may not bid on own auction
	_, w = env.ExecuteRequestAndParse(t, http.MethodPost, bidURL, helpers.PlaceBidRequest{
		BidderID: "seller1", Amount: decimal.NewFromInt(1100),
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	// 1100 becomes the high bid
	_, w = env.ExecuteRequestAndParse(t, http.MethodPost, bidURL, helpers.PlaceBidRequest{
		BidderID: "buyer2", Amount: decimal.NewFromInt(1100),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// the view reflects the current price and next minimum
	resp, w = env.ExecuteRequestAndParse(t, http.MethodGet, "/auctions/"+auctionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := resp.(map[string]any)
	require.Equal(t, "1100", view["current_price"])
	require.Equal(t, "1150", view["minimum_next_bid"])
	require.Equal(t, float64(2), view["bid_count"])

	// bid history most recent first, only the top marked highest
	resp, w = env.ExecuteRequestAndParse(t, http.MethodGet, "/auctions/"+auctionID+"/bids", nil)
	require.Equal(t, http.StatusOK, w.Code)
	bids := resp.([]any)
	require.Len(t, bids, 2)
	require.Equal(t, "1100", bids[0].(map[string]any)["amount"])
	require.Equal(t, true, bids[0].(map[string]any)["is_highest"])
	require.Equal(t, false, bids[1].(map[string]any)["is_highest"])

	// past the deadline the read settles the auction
	env.clock.Advance(2 * time.Hour)

	resp, w = env.ExecuteRequestAndParse(t, http.MethodGet, "/auctions/"+auctionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = resp.(map[string]any)
	auctionData := view["auction"].(map[string]any)
	require.Equal(t, "closed", auctionData["status"])
	require.Equal(t, "buyer2", auctionData["winner_id"])
	require.Equal(t, "1100", auctionData["final_price"])
	require.Equal(t, float64(0), view["time_left_ms"])

	// no bids accepted after expiry
	_, w = env.ExecuteRequestAndParse(t, http.MethodPost, bidURL, helpers.PlaceBidRequest{
		BidderID: "buyer3", Amount: decimal.NewFromInt(5000),
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestEarlyCloseEndpoint(t *testing.T) {
	env := SetupTestEnv()
	product := env.NewProduct(t, "seller1")
	auctionID := createAuction(t, env, product.ProductID, "seller1")
	closeURL := fmt.Sprintf("/auctions/%s/close", auctionID)

	_, w := env.ExecuteRequestAndParse(t, http.MethodPost, fmt.Sprintf("/auctions/%s/bid", auctionID), helpers.PlaceBidRequest{
		BidderID: "buyer1", Amount: decimal.NewFromInt(1050),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("non_seller_forbidden", func(t *testing.T) {
		_, w := env.ExecuteRequestAndParse(t, http.MethodPost, closeURL, helpers.CloseAuctionRequest{RequestedBy: "buyer1"})
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("seller_closes_with_settlement", func(t *testing.T) {
		resp, w := env.ExecuteRequestAndParse(t, http.MethodPost, closeURL, helpers.CloseAuctionRequest{RequestedBy: "seller1"})
		require.Equal(t, http.StatusOK, w.Code)

		data := resp.(map[string]any)
		require.Equal(t, "closed", data["status"])
		require.Equal(t, "buyer1", data["winner_id"])
		require.Equal(t, "1050", data["final_price"])
	})

	t.Run("second_close_conflicts", func(t *testing.T) {
		_, w := env.ExecuteRequestAndParse(t, http.MethodPost, closeURL, helpers.CloseAuctionRequest{RequestedBy: "seller1"})
		require.Equal(t, http.StatusConflict, w.Code)
	})
}

// An auction with no bids settles unsold
func TestUnsoldAuction(t *testing.T) {
	env := SetupTestEnv()
	product := env.NewProduct(t, "seller1")
	auctionID := createAuction(t, env, product.ProductID, "seller1")

	env.clock.Advance(2 * time.Hour)

	resp, w := env.ExecuteRequestAndParse(t, http.MethodGet, "/auctions/"+auctionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	auctionData := resp.(map[string]any)["auction"].(map[string]any)
	require.Equal(t, "closed", auctionData["status"])
	require.Nil(t, auctionData["winner_id"])
	require.Nil(t, auctionData["final_price"])
}

func TestGetAuctionNotFound(t *testing.T) {
	env := SetupTestEnv()

	_, w := env.ExecuteRequestAndParse(t, http.MethodGet, "/auctions/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
