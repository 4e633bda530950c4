package catalog

import (
	"fmt"
	"sync"

	"spice-market/internal/auctionerrors"
	"spice-market/internal/clock"
	model "spice-market/internal/models"
	"spice-market/utils"

	"github.com/shopspring/decimal"
)

// ProductCatalog defines product storage for the marketplace. Products
// are immutable once created, so reads need no further coordination.
type ProductCatalog interface {
	CreateProduct(spice model.Spice, grade model.Grade, quantityKg decimal.Decimal, sellerID string) (model.Product, error)
	GetProduct(productID string) (model.Product, error)
	ListProducts() ([]model.Product, error)
}

// MemoryCatalog is a concurrency-safe in-memory implementation of ProductCatalog
type MemoryCatalog struct {
	mu       sync.RWMutex
	clock    clock.Clock
	products map[string]model.Product // key: productID
}

// NewMemoryCatalog creates a new in-memory catalog instance
func NewMemoryCatalog(clk clock.Clock) *MemoryCatalog {
	return &MemoryCatalog{
		clock:    clk,
		products: make(map[string]model.Product),
	}
}

// CreateProduct registers a seller's commodity lot
func (c *MemoryCatalog) CreateProduct(spice model.Spice, grade model.Grade, quantityKg decimal.Decimal, sellerID string) (model.Product, error) {
	if !spice.Valid() {
		return model.Product{}, fmt.Errorf("create product: spice %q: %w", spice, auctionerrors.ErrInvalidParameters)
	}
	if !grade.Valid() {
		return model.Product{}, fmt.Errorf("create product: grade %q: %w", grade, auctionerrors.ErrInvalidParameters)
	}
	if !quantityKg.IsPositive() {
		return model.Product{}, fmt.Errorf("create product: non-positive quantity: %w", auctionerrors.ErrInvalidParameters)
	}
	if sellerID == "" {
		return model.Product{}, fmt.Errorf("create product: missing sellerID: %w", auctionerrors.ErrInvalidParameters)
	}

	product := model.Product{
		ProductID:  utils.GenerateID(),
		Spice:      spice,
		Grade:      grade,
		QuantityKg: quantityKg,
		SellerID:   sellerID,
		CreatedAt:  c.clock.Now(),
	}

	c.mu.Lock()
	c.products[product.ProductID] = product
	c.mu.Unlock()

	return product, nil
}

// GetProduct returns one product by ID
func (c *MemoryCatalog) GetProduct(productID string) (model.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.products[productID]
	if !ok {
		return model.Product{}, fmt.Errorf("get product %s: %w", productID, auctionerrors.ErrProductNotFound)
	}
	return product, nil
}

// ListProducts returns all registered products
func (c *MemoryCatalog) ListProducts() ([]model.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]model.Product, 0, len(c.products))
	for _, p := range c.products {
		products = append(products, p)
	}
	return products, nil
}
