package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onursal82-hash/Vortexbot/internal/config"
	"github.com/onursal82-hash/Vortexbot/internal/ledger"
	"github.com/onursal82-hash/Vortexbot/internal/market"
	"github.com/onursal82-hash/Vortexbot/internal/model"
	"github.com/onursal82-hash/Vortexbot/internal/storage"
)

type stubProvider struct {
	quotes map[string]market.Ticker
	err    error
}

func (p *stubProvider) FetchTickers(ctx context.Context, symbols []string) (map[string]market.Ticker, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.quotes, nil
}

func (p *stubProvider) FetchTicker(ctx context.Context, symbol string) (market.Ticker, error) {
	if p.err != nil {
		return market.Ticker{}, p.err
	}
	t, ok := p.quotes[model.NormalizeSymbol(symbol)]
	if !ok {
		return market.Ticker{}, market.ErrSymbolUnavailable
	}
	return t, nil
}

func (p *stubProvider) FetchMarkets(ctx context.Context) ([]market.SymbolInfo, error) {
	return nil, p.err
}

func newTestSync(t *testing.T, provider market.Provider) (*SyncService, *ledger.Ledger, *storage.Store, *storage.HistoryLog) {
	t.Helper()
	dir := t.TempDir()

	led := ledger.New(10000, "")
	store := storage.NewStore(filepath.Join(dir, "data.json"), filepath.Join(dir, "backup.json"))
	history := storage.NewHistoryLog(filepath.Join(dir, "history.json"))
	hub := NewStreamHub()
	go hub.Run()

	cfg := config.EngineConfig{
		TickInterval:   time.Hour,
		SaveInterval:   time.Hour,
		BackupInterval: time.Hour,
	}
	svc := NewSyncService(led, provider, store, history, hub, cfg, []string{"BTC-USDT"})
	return svc, led, store, history
}

func addRunningBot(t *testing.T, led *ledger.Ledger, symbol string, entry float64) {
	t.Helper()
	cfg := model.DCAConfig{}
	cfg.ApplyDefaults(20)
	require.NoError(t, led.AddBot("alice", &model.Bot{
		Symbol:     symbol,
		Status:     model.BotStatusRunning,
		EntryPrice: entry,
		Investment: cfg.BaseOrder,
		DCAConfig:  cfg,
		StartTime:  time.Now(),
	}))
}

func TestSyncTickEvaluatesAndPersists(t *testing.T) {
	provider := &stubProvider{quotes: map[string]market.Ticker{
		"BTC-USDT": {Last: 102, PercentChange: 2},
	}}
	svc, led, store, history := newTestSync(t, provider)
	addRunningBot(t, led, "BTC-USDT", 100)

	svc.syncTick()

	// Take profit realized and written to the durable log
	entries, err := history.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EventTakeProfit, entries[0].Event)

	// Ledger state reached disk
	doc, err := store.Load("GLOBAL")
	require.NoError(t, err)
	assert.InDelta(t, 10000.4, doc.Workspaces["alice"].Financials.TotalBalance, 1e-9)
}

func TestSyncTickSurvivesProviderOutage(t *testing.T) {
	provider := &stubProvider{quotes: map[string]market.Ticker{
		"BTC-USDT": {Last: 102, PercentChange: 2},
	}}
	svc, led, _, history := newTestSync(t, provider)

	// Prime the cache, then open a position and cut the provider
	svc.syncTick()
	addRunningBot(t, led, "BTC-USDT", 100)
	provider.err = errors.New("connection refused")

	svc.syncTick()

	entries, err := history.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EventTakeProfit, entries[0].Event)
}

func TestSyncTickNoBotsNoHistory(t *testing.T) {
	provider := &stubProvider{quotes: map[string]market.Ticker{
		"BTC-USDT": {Last: 102, PercentChange: 2},
	}}
	svc, _, _, history := newTestSync(t, provider)

	svc.syncTick()

	entries, err := history.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// blockingProvider parks FetchTickers until released, holding the tick lock
// from inside a tick.
type blockingProvider struct {
	stubProvider
	entered chan struct{}
	release chan struct{}
}

func (p *blockingProvider) FetchTickers(ctx context.Context, symbols []string) (map[string]market.Ticker, error) {
	p.entered <- struct{}{}
	<-p.release
	return p.quotes, nil
}

func TestSyncTickSkipsWhilePreviousTickInFlight(t *testing.T) {
	provider := &blockingProvider{
		stubProvider: stubProvider{quotes: map[string]market.Ticker{
			"BTC-USDT": {Last: 102, PercentChange: 2},
		}},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc, led, store, history := newTestSync(t, provider)
	addRunningBot(t, led, "BTC-USDT", 100)

	done := make(chan struct{})
	go func() {
		svc.syncTick()
		close(done)
	}()
	<-provider.entered // first tick now blocked mid-fetch, lock held

	// Overlapping tick must return immediately without touching anything
	svc.syncTick()

	entries, err := history.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	doc, err := store.Load("GLOBAL")
	require.NoError(t, err)
	assert.Empty(t, doc.Workspaces)

	bot, _, err := led.BotDetails("alice", "BTC-USDT")
	require.NoError(t, err)
	assert.Equal(t, 0.0, bot.PnL)

	// Released, the first tick completes exactly once
	close(provider.release)
	<-done

	entries, err = history.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EventTakeProfit, entries[0].Event)
}

func TestSymbolsToFetchMergesWatchlistAndActiveBots(t *testing.T) {
	provider := &stubProvider{}
	svc, led, _, _ := newTestSync(t, provider)
	addRunningBot(t, led, "DOGE-USDT", 100)
	addRunningBot(t, led, "BTC-USDT", 100) // already on the watchlist

	symbols := svc.symbolsToFetch()
	assert.ElementsMatch(t, []string{"BTC-USDT", "DOGE-USDT"}, symbols)
}
