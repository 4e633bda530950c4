package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	auction "spice-market/internal/auctionService"
	"spice-market/internal/catalog"
	"spice-market/internal/clock"
	model "spice-market/internal/models"
	"spice-market/internal/notify"
	"spice-market/internal/priceboard"
	"spice-market/internal/server"
	"spice-market/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testEnv bundles the router with the fake clock and collaborators so
// tests can steer time and seed data directly
type testEnv struct {
	router  *gin.Engine
	clock   *clock.Fake
	catalog *catalog.MemoryCatalog
	board   *priceboard.Board
}

// SetupTestEnv initializes the router with in-memory collaborators and a
// fake clock for integration testing.
func SetupTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	clk := clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	st := store.NewMemoryStore(clk)
	cat := catalog.NewMemoryCatalog(clk)
	board := priceboard.NewBoard(clk)
	svc := auction.NewAuctionService(st, cat, clk, notify.Noop{})

	return &testEnv{
		router:  server.SetupRouter(svc, cat, board, 24*time.Hour),
		clock:   clk,
		catalog: cat,
		board:   board,
	}
}

// NewProduct seeds the catalog with one product for a seller
func (e *testEnv) NewProduct(t *testing.T, sellerID string) model.Product {
	t.Helper()
	product, err := e.catalog.CreateProduct(model.SpicePepper, model.GradeA, decimal.NewFromInt(100), sellerID)
	require.NoError(t, err)
	return product
}

// ExecuteRequestAndParse executes an HTTP request on the router and
// parses the JSON envelope, returning the data portion for 2xx responses
func (e *testEnv) ExecuteRequestAndParse(t *testing.T, method, url string, body any) (any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(w, req)

	var envelope map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	if w.Code >= 200 && w.Code < 300 {
		return envelope["data"], w
	}
	return envelope, w
}
