package marketdata

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kayung-developer/NovaTrade/lib/errs"
)

type Tick struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Change24h decimal.Decimal `json:"change_24h"`
	Timestamp time.Time       `json:"timestamp"`
}

// Feed simulates a market data source over a static asset catalog. Each
// tick draws the price within ±1% of the asset's base price and the 24h
// change within ±5% of its base change. The random source is injected so
// the simulator can be swapped for a real feed without touching callers.
type Feed struct {
	assets  map[string]Asset
	symbols []string

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewFeed(catalog []Asset, src rand.Source) *Feed {
	assets := make(map[string]Asset, len(catalog))
	symbols := make([]string, 0, len(catalog))
	for _, a := range catalog {
		assets[a.Symbol] = a
		symbols = append(symbols, a.Symbol)
	}

	return &Feed{
		assets:  assets,
		symbols: symbols,
		rnd:     rand.New(src),
	}
}

func (f *Feed) Asset(symbol string) (Asset, bool) {
	a, ok := f.assets[symbol]
	return a, ok
}

// ReferencePrice is the unjittered base price. Trade execution and
// portfolio valuation run against it so that both sides of a round trip
// see the same number.
func (f *Feed) ReferencePrice(symbol string) (decimal.Decimal, error) {
	a, ok := f.assets[symbol]
	if !ok {
		return decimal.Decimal{}, errs.ErrAssetNotFound
	}
	return a.BasePrice, nil
}

func (f *Feed) CurrentTick(symbol string) (Tick, error) {
	a, ok := f.assets[symbol]
	if !ok {
		return Tick{}, errs.ErrAssetNotFound
	}
	return f.jitter(a), nil
}

// AllTicks generates one fresh tick per catalog asset, in catalog order.
func (f *Feed) AllTicks() []Tick {
	ticks := make([]Tick, 0, len(f.symbols))
	for _, symbol := range f.symbols {
		ticks = append(ticks, f.jitter(f.assets[symbol]))
	}
	return ticks
}

// Snapshot returns base prices and changes without jitter, for the
// initial message a fresh subscriber receives.
func (f *Feed) Snapshot() []Tick {
	now := time.Now().UTC()
	ticks := make([]Tick, 0, len(f.symbols))
	for _, symbol := range f.symbols {
		a := f.assets[symbol]
		ticks = append(ticks, Tick{
			Symbol:    a.Symbol,
			Price:     a.BasePrice.Round(DecimalPlaces(a.Class)),
			Change24h: a.BaseChange24h,
			Timestamp: now,
		})
	}
	return ticks
}

func (f *Feed) jitter(a Asset) Tick {
	f.mu.Lock()
	priceFactor := 1 + (f.rnd.Float64()-0.5)*0.02
	changeFactor := 1 + (f.rnd.Float64()-0.5)*0.1
	f.mu.Unlock()

	return Tick{
		Symbol:    a.Symbol,
		Price:     a.BasePrice.Mul(decimal.NewFromFloat(priceFactor)).Round(DecimalPlaces(a.Class)),
		Change24h: a.BaseChange24h.Mul(decimal.NewFromFloat(changeFactor)).Round(2),
		Timestamp: time.Now().UTC(),
	}
}
