package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onursal82-hash/Vortexbot/internal/market"
	"github.com/onursal82-hash/Vortexbot/internal/model"
	"github.com/onursal82-hash/Vortexbot/internal/util"
)

func runningBot(symbol string, entry, investment float64, cfg model.DCAConfig) *model.Bot {
	return &model.Bot{
		Symbol:       symbol,
		Status:       model.BotStatusRunning,
		EntryPrice:   entry,
		CurrentPrice: entry,
		Investment:   investment,
		DCAConfig:    cfg,
		StartTime:    time.Now(),
	}
}

func testConfig() model.DCAConfig {
	cfg := model.DCAConfig{}
	cfg.ApplyDefaults(20)
	return cfg
}

func TestAddBotReservesCapital(t *testing.T) {
	led := New(10000, "")

	err := led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig()))
	require.NoError(t, err)

	dash := led.Dashboard("alice", 20)
	assert.Equal(t, 10000.0, dash.Financials.TotalBalance)
	assert.Equal(t, 20.0, dash.Financials.Reserved)
	require.Len(t, dash.Bots, 1)
}

func TestAddBotRejectsDuplicateRunning(t *testing.T) {
	led := New(10000, "")
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig())))

	err := led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig()))
	require.Error(t, err)
	appErr := util.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, util.ErrCodeDuplicateActiveBot, appErr.Code)

	// Reservation untouched by the rejected attempt
	dash := led.Dashboard("alice", 20)
	assert.Equal(t, 20.0, dash.Financials.Reserved)
}

func TestAddBotReplacesClosedBot(t *testing.T) {
	led := New(10000, "")
	closed := runningBot("BTC-USDT", 100, 20, testConfig())
	closed.Status = model.BotStatusCompleted
	require.NoError(t, led.AddBot("alice", closed))

	err := led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig()))
	assert.NoError(t, err)
}

func TestStopBotReleasesCapitalWithoutPnL(t *testing.T) {
	led := New(10000, "")
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig())))

	require.NoError(t, led.StopBot("alice", "BTC-USDT"))

	dash := led.Dashboard("alice", 20)
	assert.Equal(t, 10000.0, dash.Financials.TotalBalance)
	assert.Equal(t, 0.0, dash.Financials.Reserved)
	assert.Equal(t, 0.0, dash.Financials.NetPnL)
	assert.Empty(t, dash.Bots)
	assert.Empty(t, dash.History)
}

func TestStopBotUnknownSymbol(t *testing.T) {
	led := New(10000, "")
	err := led.StopBot("alice", "DOGE-USDT")
	require.Error(t, err)
	assert.Equal(t, util.ErrCodeBotNotFound, util.GetAppError(err).Code)
}

func TestPanicSellRealizesLastPnL(t *testing.T) {
	led := New(10000, "")
	cfg := testConfig()
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 100, cfg)))

	// One tick at +1% marks the position without closing it
	led.ApplyTick(map[string]market.Ticker{"BTC-USDT": {Last: 101}}, time.Now())

	entry, err := led.PanicSell("alice", "BTC-USDT", time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.EventPanicSell, entry.Event)
	assert.InDelta(t, 1.0, entry.PnLUSD, 1e-9)

	dash := led.Dashboard("alice", 20)
	assert.InDelta(t, 10001.0, dash.Financials.TotalBalance, 1e-9)
	assert.InDelta(t, 0.0, dash.Financials.Reserved, 1e-9)
	assert.Empty(t, dash.Bots)
}

func TestApplyTickTakeProfitFlow(t *testing.T) {
	led := New(10000, "")
	cfg := testConfig()
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 20, cfg)))

	changed, durable := led.ApplyTick(map[string]market.Ticker{"BTC-USDT": {Last: 102}}, time.Now())

	assert.True(t, changed)
	require.Len(t, durable, 1)
	assert.Equal(t, model.EventTakeProfit, durable[0].Event)
	assert.InDelta(t, 0.4, durable[0].PnLUSD, 1e-9)

	dash := led.Dashboard("alice", 20)
	assert.InDelta(t, 10000.4, dash.Financials.TotalBalance, 1e-9)
	require.Len(t, dash.History, 1)
	assert.Equal(t, model.EventTakeProfit, dash.History[0].Type)
	assert.Equal(t, "+2.00%", dash.History[0].PnL)
}

func TestApplyTickIsIdempotentForClosedBots(t *testing.T) {
	led := New(10000, "")
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig())))

	quotes := map[string]market.Ticker{"BTC-USDT": {Last: 102}}
	led.ApplyTick(quotes, time.Now())

	// Same price again: the completed bot must not close twice
	changed, durable := led.ApplyTick(quotes, time.Now())
	assert.False(t, changed)
	assert.Empty(t, durable)

	dash := led.Dashboard("alice", 20)
	assert.InDelta(t, 10000.4, dash.Financials.TotalBalance, 1e-9)
}

func TestApplyTickSkipsSymbolsWithoutQuotes(t *testing.T) {
	led := New(10000, "")
	require.NoError(t, led.AddBot("alice", runningBot("XYZ-USDT", 100, 20, testConfig())))

	changed, durable := led.ApplyTick(map[string]market.Ticker{"BTC-USDT": {Last: 102}}, time.Now())

	assert.False(t, changed)
	assert.Empty(t, durable)
}

func TestApplyTickReusesCachedPricesDuringOutage(t *testing.T) {
	led := New(10000, "")
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig())))

	led.ApplyTick(map[string]market.Ticker{"BTC-USDT": {Last: 102}}, time.Now())

	// Provider down: nil quotes, but the cached price still drives evaluation
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig())))
	changed, durable := led.ApplyTick(nil, time.Now())

	assert.True(t, changed)
	require.Len(t, durable, 1)
	assert.Equal(t, model.EventTakeProfit, durable[0].Event)
}

func TestDashboardFoldsUnrealizedIntoNet(t *testing.T) {
	led := New(10000, "")
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 100, testConfig())))

	led.ApplyTick(map[string]market.Ticker{"BTC-USDT": {Last: 101}}, time.Now())

	dash := led.Dashboard("alice", 20)
	assert.InDelta(t, 1.0, dash.Financials.NetPnL, 1e-9)

	// The stored financials stay realized-only across snapshots
	doc := led.Snapshot()
	assert.Equal(t, 0.0, doc.Workspaces["alice"].Financials.NetPnL)
}

func TestDashboardReturnsCopies(t *testing.T) {
	led := New(10000, "")
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig())))

	dash := led.Dashboard("alice", 20)
	dash.Bots[0].Investment = 9999

	fresh := led.Dashboard("alice", 20)
	assert.Equal(t, 20.0, fresh.Bots[0].Investment)
}

func TestSharedModeRoutesAllUsersToOneWorkspace(t *testing.T) {
	led := New(10000, "GLOBAL")
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig())))

	dash := led.Dashboard("bob", 20)
	require.Len(t, dash.Bots, 1)
	assert.Equal(t, "BTC-USDT", dash.Bots[0].Symbol)
}

func TestIsolatedModeKeepsWorkspacesApart(t *testing.T) {
	led := New(10000, "")
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig())))

	dash := led.Dashboard("bob", 20)
	assert.Empty(t, dash.Bots)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	led := New(10000, "")
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig())))
	led.ApplyTick(map[string]market.Ticker{"BTC-USDT": {Last: 101}}, time.Now())

	restored := New(10000, "")
	restored.Restore(led.Snapshot())

	bot, _, err := restored.BotDetails("alice", "BTC-USDT")
	require.NoError(t, err)
	assert.Equal(t, 1.0, bot.PnL)
	assert.Equal(t, 1, restored.ActiveBotCount())
}

func TestActiveSymbolsDeduplicatesAcrossWorkspaces(t *testing.T) {
	led := New(10000, "")
	require.NoError(t, led.AddBot("alice", runningBot("BTC-USDT", 100, 20, testConfig())))
	require.NoError(t, led.AddBot("bob", runningBot("BTC-USDT", 100, 20, testConfig())))
	require.NoError(t, led.AddBot("bob", runningBot("ETH-USDT", 100, 20, testConfig())))

	symbols := led.ActiveSymbols()
	assert.ElementsMatch(t, []string{"BTC-USDT", "ETH-USDT"}, symbols)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	led := New(10000, "")
	require.NoError(t, led.Register("alice", "hash1"))

	err := led.Register("alice", "hash2")
	require.Error(t, err)
	assert.Equal(t, util.ErrCodeWorkspaceExists, util.GetAppError(err).Code)

	hash, ok := led.Credentials("alice")
	require.True(t, ok)
	assert.Equal(t, "hash1", hash)
}
