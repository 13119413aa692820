package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onursal82-hash/Vortexbot/internal/ledger"
	"github.com/onursal82-hash/Vortexbot/internal/market"
	"github.com/onursal82-hash/Vortexbot/internal/model"
	"github.com/onursal82-hash/Vortexbot/internal/storage"
	"github.com/onursal82-hash/Vortexbot/internal/util"
)

// wrappingProvider fails single-symbol lookups with a wrapped sentinel, the
// way a provider adds call context around the underlying cause.
type wrappingProvider struct {
	stubProvider
}

func (p *wrappingProvider) FetchTicker(ctx context.Context, symbol string) (market.Ticker, error) {
	return market.Ticker{}, fmt.Errorf("quote %s: %w", symbol, market.ErrSymbolUnavailable)
}

func newTestStrategy(t *testing.T, provider market.Provider) (*StrategyService, *ledger.Ledger) {
	t.Helper()
	dir := t.TempDir()

	led := ledger.New(10000, "")
	store := storage.NewStore(filepath.Join(dir, "data.json"), filepath.Join(dir, "backup.json"))
	history := storage.NewHistoryLog(filepath.Join(dir, "history.json"))
	return NewStrategyService(led, provider, store, history), led
}

func TestCreateBotMapsWrappedSymbolError(t *testing.T) {
	svc, _ := newTestStrategy(t, &wrappingProvider{})

	_, err := svc.CreateBot(context.Background(), "alice", &model.CreateBotRequest{
		Symbol:    "NOPE-USDT",
		BaseOrder: 20,
	})

	require.Error(t, err)
	appErr := util.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, util.ErrCodeSymbolNotFound, appErr.Code)
}

func TestCreateBotUsesLiveQuote(t *testing.T) {
	provider := &stubProvider{quotes: map[string]market.Ticker{
		"BTC-USDT": {Last: 64000},
	}}
	svc, led := newTestStrategy(t, provider)

	bot, err := svc.CreateBot(context.Background(), "alice", &model.CreateBotRequest{
		Symbol:    "btc/usdt",
		BaseOrder: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, "BTC-USDT", bot.Symbol)
	assert.Equal(t, 64000.0, bot.EntryPrice)
	assert.Equal(t, 1, led.ActiveBotCount())
}

func TestOpenStrategyFallsBackWithoutQuote(t *testing.T) {
	svc, _ := newTestStrategy(t, &wrappingProvider{})

	bot, err := svc.OpenStrategy(context.Background(), "alice", &model.OpenStrategyRequest{
		Symbol:    "BTC-USDT",
		BaseOrder: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, fallbackEntryPrice, bot.EntryPrice)
	assert.True(t, bot.DCAConfig.LoopEnabled)
}
