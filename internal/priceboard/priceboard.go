package priceboard

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"spice-market/internal/auctionerrors"
	"spice-market/internal/clock"
	model "spice-market/internal/models"

	"github.com/shopspring/decimal"
)

// pricePrecision is the number of decimal places kept on reference prices
const pricePrecision int32 = 2

// maxHistory caps the OHLC history retained per spice
const maxHistory = 30

// Board holds the admin-maintained reference price history per spice.
// Prices move only on explicit admin updates, never from auction results.
type Board struct {
	mu      sync.RWMutex
	clock   clock.Clock
	history map[model.Spice][]model.OHLC
}

// NewBoard creates a price board with an empty history for every
// catalog spice
func NewBoard(clk clock.Clock) *Board {
	history := make(map[model.Spice][]model.OHLC, len(model.Spices))
	for _, spice := range model.Spices {
		history[spice] = nil
	}
	return &Board{
		clock:   clk,
		history: history,
	}
}

// UpdatePrice records a new reference price for a spice and returns the
// resulting candle. Open carries over from the previous close; high and
// low get a small random spread around the move.
func (b *Board) UpdatePrice(spice model.Spice, price decimal.Decimal) (model.OHLC, error) {
	if !price.IsPositive() {
		return model.OHLC{}, fmt.Errorf("update price for %s: non-positive price: %w", spice, auctionerrors.ErrInvalidParameters)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	series, ok := b.history[spice]
	if !ok {
		return model.OHLC{}, fmt.Errorf("update price for %s: %w", spice, auctionerrors.ErrSpiceNotFound)
	}

	prevClose := price
	if len(series) > 0 {
		prevClose = series[len(series)-1].Close
	}

	candle := makeCandle(b.clock.Now(), prevClose, price)
	series = append(series, candle)
	if len(series) > maxHistory {
		series = series[len(series)-maxHistory:]
	}
	b.history[spice] = series

	return candle, nil
}

// BulkUpdate applies price updates for several spices at once. Unknown
// spices are skipped; the returned map holds one candle per applied
// update.
func (b *Board) BulkUpdate(prices map[model.Spice]decimal.Decimal) (map[model.Spice]model.OHLC, error) {
	if len(prices) == 0 {
		return nil, fmt.Errorf("bulk update: empty prices: %w", auctionerrors.ErrInvalidParameters)
	}

	results := make(map[model.Spice]model.OHLC, len(prices))
	for spice, price := range prices {
		candle, err := b.UpdatePrice(spice, price)
		if err != nil {
			continue
		}
		results[spice] = candle
	}
	return results, nil
}

// History returns the OHLC series for one spice, oldest first
func (b *Board) History(spice model.Spice) ([]model.OHLC, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	series, ok := b.history[spice]
	if !ok {
		return nil, fmt.Errorf("history for %s: %w", spice, auctionerrors.ErrSpiceNotFound)
	}
	return append([]model.OHLC(nil), series...), nil
}

// Summary returns the latest candle per spice with percent change
// against the previous close. Spices with no history yet are omitted.
func (b *Board) Summary() []model.SpiceSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()

	summaries := make([]model.SpiceSummary, 0, len(model.Spices))
	for _, spice := range model.Spices {
		series := b.history[spice]
		if len(series) == 0 {
			continue
		}

		latest := series[len(series)-1]
		change := decimal.Zero
		if len(series) > 1 {
			previous := series[len(series)-2]
			change = latest.Close.Sub(previous.Close).
				Div(previous.Close).
				Mul(decimal.NewFromInt(100)).
				Round(pricePrecision)
		}

		summaries = append(summaries, model.SpiceSummary{
			Name:       spice,
			Current:    latest,
			ChangePct:  change,
			DataPoints: len(series),
		})
	}
	return summaries
}

// Seed fills each spice's history with days of synthetic candles
// random-walking around the given base prices
func (b *Board) Seed(basePrices map[model.Spice]decimal.Decimal, days int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock.Now()
	for spice, base := range basePrices {
		if _, ok := b.history[spice]; !ok {
			continue
		}

		series := make([]model.OHLC, 0, days)
		for i := days - 1; i >= 0; i-- {
			variation := decimal.NewFromFloat((rand.Float64() - 0.5) * 0.1)
			closePrice := base.Mul(decimal.NewFromInt(1).Add(variation)).Round(pricePrecision)
			candle := makeCandle(now.AddDate(0, 0, -i), closePrice, closePrice)
			series = append(series, candle)
		}
		b.history[spice] = series
	}
}

// makeCandle builds one OHLC entry from the previous close to the new
// price, with up to 1% random spread on high and low
func makeCandle(ts time.Time, open, close decimal.Decimal) model.OHLC {
	const volatility = 0.01

	high := decimal.Max(open, close).
		Mul(decimal.NewFromFloat(1 + rand.Float64()*volatility)).
		Round(pricePrecision)
	low := decimal.Min(open, close).
		Mul(decimal.NewFromFloat(1 - rand.Float64()*volatility)).
		Round(pricePrecision)

	return model.OHLC{
		Timestamp: ts,
		Open:      open.Round(pricePrecision),
		High:      high,
		Low:       low,
		Close:     close.Round(pricePrecision),
	}
}
