package market

import (
	"context"
	"strings"

	"github.com/onursal82-hash/Vortexbot/internal/model"
	"github.com/onursal82-hash/Vortexbot/pkg/okx"
)

// OKXProvider serves quotes from the OKX public spot API. OKX instrument ids
// already use the canonical dash form, so no symbol translation is needed.
type OKXProvider struct {
	client *okx.Client
}

func NewOKXProvider(client *okx.Client) *OKXProvider {
	return &OKXProvider{client: client}
}

// FetchTickers returns quotes for the requested symbols. Symbols OKX does not
// list are left out of the result.
func (p *OKXProvider) FetchTickers(ctx context.Context, symbols []string) (map[string]Ticker, error) {
	tickers, err := p.client.GetTickers(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[model.NormalizeSymbol(s)] = true
	}

	quotes := make(map[string]Ticker)
	for _, t := range tickers {
		if !wanted[t.InstID] {
			continue
		}
		if last := t.LastPrice(); last > 0 {
			quotes[t.InstID] = Ticker{Last: last, PercentChange: t.ChangePercent()}
		}
	}
	return quotes, nil
}

// FetchTicker returns the quote for a single symbol.
func (p *OKXProvider) FetchTicker(ctx context.Context, symbol string) (Ticker, error) {
	t, err := p.client.GetTicker(ctx, model.NormalizeSymbol(symbol))
	if err != nil {
		// 51001 is OKX for "instrument does not exist"
		if strings.Contains(err.Error(), "51001") {
			return Ticker{}, ErrSymbolUnavailable
		}
		return Ticker{}, err
	}
	return Ticker{Last: t.LastPrice(), PercentChange: t.ChangePercent()}, nil
}

// FetchMarkets lists USDT-quoted spot markets.
func (p *OKXProvider) FetchMarkets(ctx context.Context) ([]SymbolInfo, error) {
	tickers, err := p.client.GetTickers(ctx)
	if err != nil {
		return nil, err
	}

	markets := make([]SymbolInfo, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(t.InstID, "-USDT") {
			continue
		}
		markets = append(markets, SymbolInfo{
			Symbol: t.InstID,
			Last:   t.LastPrice(),
			Volume: t.QuoteVolume(),
		})
	}
	return markets, nil
}
