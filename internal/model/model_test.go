package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTC-USDT", NormalizeSymbol("btc/usdt"))
	assert.Equal(t, "BTC-USDT", NormalizeSymbol(" BTC-USDT "))
	assert.Equal(t, "ETH-USDT", NormalizeSymbol("eth-usdt"))
	assert.Equal(t, "BTC/USDT", SlashSymbol("BTC-USDT"))
}

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	cfg := DCAConfig{}
	cfg.ApplyDefaults(25)

	assert.Equal(t, 25.0, cfg.BaseOrder)
	assert.Equal(t, 40.0, cfg.SafetyOrder)
	assert.Equal(t, 15, cfg.MaxSafetyOrders)
	assert.Equal(t, 1.05, cfg.VolumeScale)
	assert.Equal(t, 1.0, cfg.StepScale)
	assert.Equal(t, 2.0, cfg.PriceDeviation)
	assert.Equal(t, 1.5, cfg.TakeProfit)
	assert.False(t, cfg.StopLossEnabled)
	assert.False(t, cfg.LoopEnabled)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := DCAConfig{
		SafetyOrder:     75,
		TakeProfit:      3,
		StopLossEnabled: true,
	}
	cfg.ApplyDefaults(25)

	assert.Equal(t, 75.0, cfg.SafetyOrder)
	assert.Equal(t, 3.0, cfg.TakeProfit)
	assert.Equal(t, 5.0, cfg.StopLoss) // default kicks in once enabled
}

func TestPushHistoryCapsNewestFirst(t *testing.T) {
	ws := NewWorkspace(10000)
	for i := 0; i < WorkspaceHistoryLimit+5; i++ {
		ws.PushHistory(TradeLogEntry{Symbol: fmt.Sprintf("S%d", i)})
	}

	require.Len(t, ws.History, WorkspaceHistoryLimit)
	assert.Equal(t, fmt.Sprintf("S%d", WorkspaceHistoryLimit+4), ws.History[0].Symbol)
}

func TestUnrealizedPnLCountsOnlyRunningBots(t *testing.T) {
	ws := NewWorkspace(10000)
	ws.Bots["BTC-USDT"] = &Bot{Status: BotStatusRunning, Investment: 100, PnL: 2}
	ws.Bots["ETH-USDT"] = &Bot{Status: BotStatusCompleted, Investment: 100, PnL: 5}

	assert.InDelta(t, 2.0, ws.UnrealizedPnL(), 1e-9)
}

func TestWorkspaceCloneIsDeep(t *testing.T) {
	ws := NewWorkspace(10000)
	ws.Bots["BTC-USDT"] = &Bot{Symbol: "BTC-USDT", Investment: 20}
	ws.PushHistory(TradeLogEntry{Symbol: "BTC-USDT"})

	cp := ws.Clone()
	cp.Bots["BTC-USDT"].Investment = 999
	cp.History[0].Symbol = "ETH-USDT"

	assert.Equal(t, 20.0, ws.Bots["BTC-USDT"].Investment)
	assert.Equal(t, "BTC-USDT", ws.History[0].Symbol)
}
