package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"spice-market/internal/auctionerrors"
	"spice-market/internal/clock"
	model "spice-market/internal/models"
	"spice-market/internal/notify"
	"spice-market/internal/store"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures outbid events for assertions
type recordingNotifier struct {
	mu      sync.Mutex
	outbids []string
	closed  []string
}

func (r *recordingNotifier) Outbid(userID, auctionID string, newAmount decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outbids = append(r.outbids, userID)
}

func (r *recordingNotifier) AuctionClosed(auction model.Auction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, auction.AuctionID)
}

// newTestAuction seeds a store with one open auction at 1000/50
func newTestAuction(t *testing.T, st *store.MemoryStore) model.Auction {
	t.Helper()
	auction, err := st.CreateAuction(store.CreateAuctionParams{
		ProductID:    "prod1",
		SellerID:     "seller1",
		StartPrice:   decimal.NewFromInt(1000),
		MinIncrement: decimal.NewFromInt(50),
		Duration:     time.Hour,
	})
	require.NoError(t, err)
	return auction
}

// Tests the full bid acceptance scenario against a real store
func TestBiddingEngine_PlaceBid_Scenario(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	st := store.NewMemoryStore(clk)
	engine := NewBiddingEngine(st, clk, notify.Noop{})
	auction := newTestAuction(t, st)

	// 1020 is under start price + increment
	_, err := engine.PlaceBid(auction.AuctionID, "buyer1", decimal.NewFromInt(1020))
	require.True(t, errors.Is(err, auctionerrors.ErrBidTooLow))

	var tooLow *auctionerrors.BidTooLowError
	require.True(t, errors.As(err, &tooLow))
	require.True(t, tooLow.Minimum.Equal(decimal.NewFromInt(1050)), "minimum acceptable should be 1050, got %s", tooLow.Minimum)

	// 1050 meets the minimum exactly
	first, err := engine.PlaceBid(auction.AuctionID, "buyer1", decimal.NewFromInt(1050))
	require.NoError(t, err)
	require.True(t, first.Amount.Equal(decimal.NewFromInt(1050)))

	// a second 1050 no longer clears the new minimum
	_, err = engine.PlaceBid(auction.AuctionID, "buyer2", decimal.NewFromInt(1050))
	require.True(t, errors.Is(err, auctionerrors.ErrBidTooLow))
	require.True(t, errors.As(err, &tooLow))
	require.True(t, tooLow.Minimum.Equal(decimal.NewFromInt(1100)))

	// 1100 becomes the new highest
	second, err := engine.PlaceBid(auction.AuctionID, "buyer2", decimal.NewFromInt(1100))
	require.NoError(t, err)

	highest, err := st.GetHighestBid(auction.AuctionID)
	require.NoError(t, err)
	require.Equal(t, second.BidID, highest.BidID)
	require.True(t, highest.Amount.Equal(decimal.NewFromInt(1100)))
}

func TestBiddingEngine_PlaceBid_Validation(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	st := store.NewMemoryStore(clk)
	engine := NewBiddingEngine(st, clk, notify.Noop{})
	auction := newTestAuction(t, st)

	tests := []struct {
		name      string
		auctionID string
		bidderID  string
		amount    decimal.Decimal
		wantError error
	}{
		{name: "empty_auctionID", auctionID: "", bidderID: "buyer1", amount: decimal.NewFromInt(1050), wantError: auctionerrors.ErrInvalidParameters},
		{name: "empty_bidderID", auctionID: auction.AuctionID, bidderID: "", amount: decimal.NewFromInt(1050), wantError: auctionerrors.ErrInvalidParameters},
		{name: "zero_amount", auctionID: auction.AuctionID, bidderID: "buyer1", amount: decimal.Zero, wantError: auctionerrors.ErrInvalidParameters},
		{name: "negative_amount", auctionID: auction.AuctionID, bidderID: "buyer1", amount: decimal.NewFromInt(-10), wantError: auctionerrors.ErrInvalidParameters},
		{name: "unknown_auction", auctionID: "missing", bidderID: "buyer1", amount: decimal.NewFromInt(1050), wantError: auctionerrors.ErrAuctionNotFound},
		{name: "seller_self_bid", auctionID: auction.AuctionID, bidderID: "seller1", amount: decimal.NewFromInt(1050), wantError: auctionerrors.ErrSelfBid},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.PlaceBid(tc.auctionID, tc.bidderID, tc.amount)
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.wantError), "expected %v, got %v", tc.wantError, err)
		})
	}
}

// Bids after the deadline are rejected even before the close sweep runs
func TestBiddingEngine_PlaceBid_ExpiredAuction(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	st := store.NewMemoryStore(clk)
	engine := NewBiddingEngine(st, clk, notify.Noop{})
	auction := newTestAuction(t, st)

	clk.Advance(time.Hour) // exactly at endsAt counts as expired

	_, err := engine.PlaceBid(auction.AuctionID, "buyer1", decimal.NewFromInt(1050))
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionClosed))

	// auction is still marked open in the store, only bidding treats it
	// as closed
	stored, err := st.GetAuction(auction.AuctionID)
	require.NoError(t, err)
	require.Equal(t, model.AuctionOpen, stored.Status)
}

// The displaced high bidder gets an outbid notification; first bidders
// and self-replacing bidders do not
func TestBiddingEngine_PlaceBid_OutbidNotification(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	st := store.NewMemoryStore(clk)
	rec := &recordingNotifier{}
	engine := NewBiddingEngine(st, clk, rec)
	auction := newTestAuction(t, st)

	_, err := engine.PlaceBid(auction.AuctionID, "buyer1", decimal.NewFromInt(1050))
	require.NoError(t, err)
	require.Empty(t, rec.outbids)

	_, err = engine.PlaceBid(auction.AuctionID, "buyer1", decimal.NewFromInt(1100))
	require.NoError(t, err)
	require.Empty(t, rec.outbids, "raising your own bid is not an outbid")

	_, err = engine.PlaceBid(auction.AuctionID, "buyer2", decimal.NewFromInt(1200))
	require.NoError(t, err)
	require.Equal(t, []string{"buyer1"}, rec.outbids)
}

// A concurrent commit between validation and append triggers a
// revalidation against the fresh state
func TestBiddingEngine_PlaceBid_RetryOnConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clk := clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	mockStore := store.NewMockAuctionStore(ctrl)
	engine := NewBiddingEngine(mockStore, clk, notify.Noop{})

	open := model.Auction{
		AuctionID:    "a1",
		SellerID:     "seller1",
		StartPrice:   decimal.NewFromInt(1000),
		MinIncrement: decimal.NewFromInt(50),
		EndsAt:       clk.Now().Add(time.Hour),
		Status:       model.AuctionOpen,
		HighestBidID: "bidA",
	}
	raced := open
	raced.HighestBidID = "bidB"

	amount := decimal.NewFromInt(1300)

	gomock.InOrder(
		mockStore.EXPECT().GetAuction("a1").Return(open, nil),
		mockStore.EXPECT().GetHighestBid("a1").Return(model.Bid{BidID: "bidA", BidderID: "buyer1", Amount: decimal.NewFromInt(1050)}, nil),
		mockStore.EXPECT().AppendBid("a1", "buyer2", amount, "bidA").Return(model.Bid{}, auctionerrors.ErrConcurrentModification),
		mockStore.EXPECT().GetAuction("a1").Return(raced, nil),
		mockStore.EXPECT().GetHighestBid("a1").Return(model.Bid{BidID: "bidB", BidderID: "buyer3", Amount: decimal.NewFromInt(1100)}, nil),
		mockStore.EXPECT().AppendBid("a1", "buyer2", amount, "bidB").Return(model.Bid{BidID: "bidC", AuctionID: "a1", BidderID: "buyer2", Amount: amount}, nil),
	)

	bid, err := engine.PlaceBid("a1", "buyer2", amount)
	require.NoError(t, err)
	require.Equal(t, "bidC", bid.BidID)
}

// The retry loop gives up after the bound and surfaces a conflict error
func TestBiddingEngine_PlaceBid_TooManyConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clk := clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	mockStore := store.NewMockAuctionStore(ctrl)
	engine := NewBiddingEngine(mockStore, clk, notify.Noop{})

	open := model.Auction{
		AuctionID:    "a1",
		SellerID:     "seller1",
		StartPrice:   decimal.NewFromInt(1000),
		MinIncrement: decimal.NewFromInt(50),
		EndsAt:       clk.Now().Add(time.Hour),
		Status:       model.AuctionOpen,
	}

	amount := decimal.NewFromInt(5000)

	mockStore.EXPECT().GetAuction("a1").Return(open, nil).Times(3)
	mockStore.EXPECT().AppendBid("a1", "buyer1", amount, "").
		Return(model.Bid{}, auctionerrors.ErrConcurrentModification).Times(3)

	_, err := engine.PlaceBid("a1", "buyer1", amount)
	require.True(t, errors.Is(err, auctionerrors.ErrTooManyConflicts))
}

// A close that lands between validation and append surfaces as a closed
// auction, not a conflict
func TestBiddingEngine_PlaceBid_ClosedDuringAppend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clk := clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	mockStore := store.NewMockAuctionStore(ctrl)
	engine := NewBiddingEngine(mockStore, clk, notify.Noop{})

	open := model.Auction{
		AuctionID:    "a1",
		SellerID:     "seller1",
		StartPrice:   decimal.NewFromInt(1000),
		MinIncrement: decimal.NewFromInt(50),
		EndsAt:       clk.Now().Add(time.Hour),
		Status:       model.AuctionOpen,
	}

	amount := decimal.NewFromInt(1100)

	mockStore.EXPECT().GetAuction("a1").Return(open, nil)
	mockStore.EXPECT().AppendBid("a1", "buyer1", amount, "").
		Return(model.Bid{}, auctionerrors.ErrAlreadyClosed)

	_, err := engine.PlaceBid("a1", "buyer1", amount)
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionClosed))
}

// N bidders hammering one auction all eventually commit and the final
// highest bid is the maximum committed amount
func TestBiddingEngine_PlaceBid_ConcurrentBidders(t *testing.T) {
	t.Parallel()

	const bidders = 16

	clk := clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	st := store.NewMemoryStore(clk)
	engine := NewBiddingEngine(st, clk, notify.Noop{})
	auction := newTestAuction(t, st)

	var wg sync.WaitGroup
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			bidderID := "buyer" + string(rune('A'+n))
			for {
				current, err := st.GetAuction(auction.AuctionID)
				if err != nil {
					t.Error(err)
					return
				}
				amount := auction.StartPrice
				if current.HighestBidID != "" {
					highest, err := st.GetHighestBid(auction.AuctionID)
					if err != nil {
						t.Error(err)
						return
					}
					amount = highest.Amount
				}
				amount = amount.Add(auction.MinIncrement)

				_, err = engine.PlaceBid(auction.AuctionID, bidderID, amount)
				if err == nil {
					return
				}
				// losing the race surfaces as one of these, retry with
				// a fresh amount
				if errors.Is(err, auctionerrors.ErrBidTooLow) || errors.Is(err, auctionerrors.ErrTooManyConflicts) {
					continue
				}
				t.Error(err)
				return
			}
		}(i)
	}
	wg.Wait()

	bids, err := st.GetBids(auction.AuctionID)
	require.NoError(t, err)
	require.Len(t, bids, bidders)

	// amounts ratchet up by at least the increment, newest first
	for i := 0; i < len(bids)-1; i++ {
		step := bids[i].Amount.Sub(bids[i+1].Amount)
		require.True(t, step.GreaterThanOrEqual(auction.MinIncrement),
			"bid %s does not exceed %s by the increment", bids[i].Amount, bids[i+1].Amount)
	}

	highest, err := st.GetHighestBid(auction.AuctionID)
	require.NoError(t, err)
	require.Equal(t, bids[0].BidID, highest.BidID)
	expected := auction.StartPrice.Add(auction.MinIncrement.Mul(decimal.NewFromInt(bidders)))
	require.True(t, highest.Amount.Equal(expected), "expected final price %s, got %s", expected, highest.Amount)
}
