package server

import (
	"time"

	"spice-market/internal/catalog"
	handler "spice-market/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService handler.AuctionServiceInterface, cat catalog.ProductCatalog, board handler.PriceBoardInterface, defaultDuration time.Duration) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionService, defaultDuration)
	marketHandler := handler.NewMarketHandler(cat, board)

	auctions := router.Group("/auctions")
	{
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.POST("/:auction_id/bid", auctionHandler.PlaceBidHandler)
		auctions.POST("/:auction_id/close", auctionHandler.CloseAuctionHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.GetBidHistoryHandler)
	}

	products := router.Group("/products")
	{
		products.POST("", marketHandler.CreateProductHandler)
		products.GET("", marketHandler.ListProductsHandler)
		products.GET("/:product_id", marketHandler.GetProductHandler)
	}

	spices := router.Group("/spices")
	{
		spices.GET("", marketHandler.GetSpiceSummaryHandler)
		spices.GET("/:name/ohlc", marketHandler.GetSpiceOHLCHandler)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/prices", marketHandler.UpdatePriceHandler)
		admin.POST("/prices/bulk", marketHandler.BulkUpdatePricesHandler)
	}

	return router
}
