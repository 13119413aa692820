package market

import (
	"context"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2"

	"github.com/onursal82-hash/Vortexbot/internal/model"
)

// BinanceProvider serves quotes from the Binance spot API. Binance uses
// compact symbols (BTCUSDT), so canonical ids are translated both ways.
type BinanceProvider struct {
	client *binance.Client
}

func NewBinanceProvider() *BinanceProvider {
	// Public market-data endpoints need no credentials.
	return &BinanceProvider{client: binance.NewClient("", "")}
}

// FetchTickers returns quotes for the requested symbols.
func (p *BinanceProvider) FetchTickers(ctx context.Context, symbols []string) (map[string]Ticker, error) {
	compact := make([]string, 0, len(symbols))
	canonical := make(map[string]string, len(symbols))
	for _, s := range symbols {
		canon := model.NormalizeSymbol(s)
		c := strings.ReplaceAll(canon, "-", "")
		compact = append(compact, c)
		canonical[c] = canon
	}

	stats, err := p.client.NewListPriceChangeStatsService().Symbols(compact).Do(ctx)
	if err != nil {
		return nil, err
	}

	quotes := make(map[string]Ticker, len(stats))
	for _, s := range stats {
		canon, ok := canonical[s.Symbol]
		if !ok {
			continue
		}
		last, _ := strconv.ParseFloat(s.LastPrice, 64)
		change, _ := strconv.ParseFloat(s.PriceChangePercent, 64)
		if last > 0 {
			quotes[canon] = Ticker{Last: last, PercentChange: change}
		}
	}
	return quotes, nil
}

// FetchTicker returns the quote for a single symbol.
func (p *BinanceProvider) FetchTicker(ctx context.Context, symbol string) (Ticker, error) {
	compact := strings.ReplaceAll(model.NormalizeSymbol(symbol), "-", "")
	stats, err := p.client.NewListPriceChangeStatsService().Symbol(compact).Do(ctx)
	if err != nil {
		return Ticker{}, err
	}
	if len(stats) == 0 {
		return Ticker{}, ErrSymbolUnavailable
	}
	last, _ := strconv.ParseFloat(stats[0].LastPrice, 64)
	change, _ := strconv.ParseFloat(stats[0].PriceChangePercent, 64)
	return Ticker{Last: last, PercentChange: change}, nil
}

// FetchMarkets lists USDT-quoted spot markets.
func (p *BinanceProvider) FetchMarkets(ctx context.Context) ([]SymbolInfo, error) {
	stats, err := p.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, err
	}

	markets := make([]SymbolInfo, 0, len(stats))
	for _, s := range stats {
		if !strings.HasSuffix(s.Symbol, "USDT") {
			continue
		}
		last, _ := strconv.ParseFloat(s.LastPrice, 64)
		volume, _ := strconv.ParseFloat(s.QuoteVolume, 64)
		base := strings.TrimSuffix(s.Symbol, "USDT")
		markets = append(markets, SymbolInfo{
			Symbol: base + "-USDT",
			Last:   last,
			Volume: volume,
		})
	}
	return markets, nil
}
