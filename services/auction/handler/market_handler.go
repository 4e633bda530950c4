package handler

import (
	"fmt"
	"net/http"
	"strings"

	"spice-market/internal/catalog"
	model "spice-market/internal/models"
	"spice-market/services/auction/helpers"
	"spice-market/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PriceBoardInterface interface {
	UpdatePrice(spice model.Spice, price decimal.Decimal) (model.OHLC, error)
	BulkUpdate(prices map[model.Spice]decimal.Decimal) (map[model.Spice]model.OHLC, error)
	History(spice model.Spice) ([]model.OHLC, error)
	Summary() []model.SpiceSummary
}

// MarketHandler serves the product catalog and the reference price board
type MarketHandler struct {
	catalog catalog.ProductCatalog
	board   PriceBoardInterface
}

func NewMarketHandler(cat catalog.ProductCatalog, board PriceBoardInterface) *MarketHandler {
	return &MarketHandler{catalog: cat, board: board}
}

// CreateProductHandler handles POST /products
func (h *MarketHandler) CreateProductHandler(c *gin.Context) {
	var req helpers.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateProductHandler", err)
		return
	}

	product, err := h.catalog.CreateProduct(model.Spice(strings.ToLower(req.Spice)), model.Grade(req.Grade), req.QuantityKg, req.SellerID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CreateProductHandler: failed to create product", map[string]any{
			"seller_id": req.SellerID,
			"spice":     req.Spice,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, product, "product created successfully")
	helpers.LogSuccess("CreateProductHandler", "product created successfully", map[string]any{
		"product_id": product.ProductID,
		"seller_id":  product.SellerID,
		"spice":      product.Spice,
	})
}

// GetProductHandler handles GET /products/:product_id
func (h *MarketHandler) GetProductHandler(c *gin.Context) {
	productID := c.Param("product_id")

	product, err := h.catalog.GetProduct(productID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	utils.JSONResponse(c, http.StatusOK, product, "product retrieved successfully")
}

// ListProductsHandler handles GET /products
func (h *MarketHandler) ListProductsHandler(c *gin.Context) {
	products, err := h.catalog.ListProducts()
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	utils.JSONResponse(c, http.StatusOK, products, "products retrieved successfully")
}

// GetSpiceSummaryHandler handles GET /spices
func (h *MarketHandler) GetSpiceSummaryHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, h.board.Summary(), "spice prices retrieved successfully")
}

// GetSpiceOHLCHandler handles GET /spices/:name/ohlc
func (h *MarketHandler) GetSpiceOHLCHandler(c *gin.Context) {
	name := strings.ToLower(c.Param("name"))

	history, err := h.board.History(model.Spice(name))
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	utils.JSONResponse(c, http.StatusOK, history, "price history retrieved successfully")
}

// UpdatePriceHandler handles POST /admin/prices
func (h *MarketHandler) UpdatePriceHandler(c *gin.Context) {
	var req helpers.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdatePriceHandler", err)
		return
	}

	candle, err := h.board.UpdatePrice(model.Spice(strings.ToLower(req.Spice)), req.Price)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("UpdatePriceHandler: failed to update price", map[string]any{
			"spice": req.Spice,
			"error": err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, candle, fmt.Sprintf("%s price updated", req.Spice))
	helpers.LogSuccess("UpdatePriceHandler", "price updated", map[string]any{
		"spice": req.Spice,
		"close": candle.Close.String(),
	})
}

// BulkUpdatePricesHandler handles POST /admin/prices/bulk
func (h *MarketHandler) BulkUpdatePricesHandler(c *gin.Context) {
	var req helpers.BulkUpdatePricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "BulkUpdatePricesHandler", err)
		return
	}

	prices := make(map[model.Spice]decimal.Decimal, len(req.Prices))
	for name, price := range req.Prices {
		prices[model.Spice(strings.ToLower(name))] = price
	}

	results, err := h.board.BulkUpdate(prices)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	utils.JSONResponse(c, http.StatusOK, results, "bulk price update completed")
	helpers.LogSuccess("BulkUpdatePricesHandler", "bulk price update completed", map[string]any{
		"updated": len(results),
	})
}
