package market

import (
	"context"
	"errors"
)

// ErrSymbolUnavailable is returned when a provider cannot quote a symbol.
var ErrSymbolUnavailable = errors.New("market: symbol unavailable")

// Ticker is the provider-neutral quote for one trading pair.
type Ticker struct {
	Last          float64
	PercentChange float64
}

// SymbolInfo describes one tradable market for the symbol picker.
type SymbolInfo struct {
	Symbol string  `json:"symbol"`
	Last   float64 `json:"last"`
	Volume float64 `json:"volume"`
}

// Provider supplies current market prices. Implementations key results by the
// canonical dash symbol form (BTC-USDT). Results may be partial: symbols the
// provider could not quote are simply absent from the returned map.
type Provider interface {
	// FetchTickers returns quotes for the requested symbols.
	FetchTickers(ctx context.Context, symbols []string) (map[string]Ticker, error)

	// FetchTicker returns the quote for a single symbol.
	FetchTicker(ctx context.Context, symbol string) (Ticker, error)

	// FetchMarkets lists USDT-quoted markets for the symbol picker.
	FetchMarkets(ctx context.Context) ([]SymbolInfo, error)
}
