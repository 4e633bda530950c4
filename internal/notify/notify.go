package notify

import (
	"github.com/shopspring/decimal"

	model "spice-market/internal/models"
	"spice-market/utils"

	evbus "github.com/asaskevich/EventBus"
)

// Topics published on the event bus
const (
	TopicOutbid        = "auction.outbid"
	TopicAuctionClosed = "auction.closed"
)

// OutbidEvent tells a bidder their high bid has been displaced
type OutbidEvent struct {
	UserID    string          `json:"user_id"`
	AuctionID string          `json:"auction_id"`
	NewAmount decimal.Decimal `json:"new_amount"`
}

// ClosedEvent announces an auction's settlement to seller and winner
type ClosedEvent struct {
	Auction model.Auction `json:"auction"`
}

// Notifier is the fire-and-forget notification sink. Implementations
// must never fail in a way that rolls back the state change that
// triggered the event.
type Notifier interface {
	Outbid(userID, auctionID string, newAmount decimal.Decimal)
	AuctionClosed(auction model.Auction)
}

// Bus publishes notification events on an in-process EventBus.
// Subscribers run asynchronously so publishing never blocks bidding.
type Bus struct {
	bus evbus.Bus
}

// NewBus creates a Bus with a logging subscriber attached to each topic
func NewBus() *Bus {
	bus := evbus.New()

	_ = bus.SubscribeAsync(TopicOutbid, func(ev OutbidEvent) {
		utils.Info("bidder outbid", map[string]any{
			"user_id":    ev.UserID,
			"auction_id": ev.AuctionID,
			"new_amount": ev.NewAmount.String(),
		})
	}, false)

	_ = bus.SubscribeAsync(TopicAuctionClosed, func(ev ClosedEvent) {
		fields := map[string]any{
			"auction_id": ev.Auction.AuctionID,
			"seller_id":  ev.Auction.SellerID,
			"winner_id":  ev.Auction.WinnerID,
		}
		if ev.Auction.FinalPrice != nil {
			fields["final_price"] = ev.Auction.FinalPrice.String()
		}
		utils.Info("auction closed", fields)
	}, false)

	return &Bus{bus: bus}
}

// Subscribe attaches an additional asynchronous handler to a topic
func (b *Bus) Subscribe(topic string, handler interface{}) error {
	return b.bus.SubscribeAsync(topic, handler, false)
}

// WaitAsync blocks until all queued asynchronous handlers have run
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}

// Outbid publishes an outbid event for the displaced bidder
func (b *Bus) Outbid(userID, auctionID string, newAmount decimal.Decimal) {
	b.bus.Publish(TopicOutbid, OutbidEvent{UserID: userID, AuctionID: auctionID, NewAmount: newAmount})
}

// AuctionClosed publishes the settlement of a closed auction
func (b *Bus) AuctionClosed(auction model.Auction) {
	b.bus.Publish(TopicAuctionClosed, ClosedEvent{Auction: auction})
}

// Noop discards all events. This type is intended for tests only.
type Noop struct{}

func (Noop) Outbid(string, string, decimal.Decimal) {}

func (Noop) AuctionClosed(model.Auction) {}
