package main

import (
	"context"
	"fmt"
	"os"

	auction "spice-market/internal/auctionService"
	"spice-market/internal/catalog"
	"spice-market/internal/clock"
	"spice-market/internal/config"
	model "spice-market/internal/models"
	"spice-market/internal/notify"
	"spice-market/internal/priceboard"
	"spice-market/internal/server"
	"spice-market/internal/store"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()

	clk := clock.System{}
	auctionStore := store.NewMemoryStore(clk)
	productCatalog := catalog.NewMemoryCatalog(clk)
	board := priceboard.NewBoard(clk)
	bus := notify.NewBus()

	if cfg.SeedPriceBoard {
		board.Seed(referencePrices(), 7)
	}

	svc := auction.NewAuctionService(auctionStore, productCatalog, clk, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server.StartExpirySweeper(ctx, svc, cfg.SweepInterval)

	router := server.SetupRouter(svc, productCatalog, board, cfg.DefaultDuration)

	fmt.Printf("Starting spice market server on %s...\n", cfg.HTTPAddr)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// referencePrices returns the seed market prices per kg in INR
func referencePrices() map[model.Spice]decimal.Decimal {
	return map[model.Spice]decimal.Decimal{
		model.SpicePepper:   decimal.NewFromInt(8500),
		model.SpiceCardamom: decimal.NewFromInt(24000),
		model.SpiceClove:    decimal.NewFromInt(90000),
		model.SpiceNutmeg:   decimal.NewFromInt(60000),
		model.SpiceCinnamon: decimal.NewFromInt(50000),
		model.SpiceVanilla:  decimal.NewFromInt(350000),
	}
}
