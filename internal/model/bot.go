package model

import (
	"strings"
	"time"
)

// Bot status constants
const (
	BotStatusRunning     = "running"
	BotStatusCompleted   = "completed"
	BotStatusStoppedLoss = "stopped_loss"
)

// Trade event kinds, as recorded in workspace history and the durable trade log
const (
	EventDCABuy      = "DCA Buy"
	EventTakeProfit  = "Take Profit"
	EventLoopRestart = "Loop Restart"
	EventStopLoss    = "Stop Loss"
	EventPanicSell   = "Panic Sell"
)

// DCAConfig holds the strategy parameters for one bot cycle. Fields are fixed
// for the lifetime of a cycle; BaseOrder doubles as the reset investment when
// a loop restart opens the next cycle.
type DCAConfig struct {
	BaseOrder       float64 `json:"base_order"`
	SafetyOrder     float64 `json:"safety_order"`
	MaxSafetyOrders int     `json:"max_safety_orders"`
	VolumeScale     float64 `json:"volume_scale"`
	StepScale       float64 `json:"step_scale"`
	PriceDeviation  float64 `json:"price_deviation"`
	TakeProfit      float64 `json:"take_profit"`
	StopLossEnabled bool    `json:"stop_loss_enabled"`
	StopLoss        float64 `json:"stop_loss"`
	LoopEnabled     bool    `json:"loop_enabled"`
}

// ApplyDefaults fills zero-valued parameters with the platform defaults.
// Defaulting happens here, once, at construction time; the engine reads the
// struct as-is afterwards.
func (c *DCAConfig) ApplyDefaults(baseOrder float64) {
	if c.BaseOrder <= 0 {
		c.BaseOrder = baseOrder
	}
	if c.BaseOrder <= 0 {
		c.BaseOrder = 20.0
	}
	if c.SafetyOrder <= 0 {
		c.SafetyOrder = 40.0
	}
	if c.MaxSafetyOrders <= 0 {
		c.MaxSafetyOrders = 15
	}
	if c.VolumeScale <= 0 {
		c.VolumeScale = 1.05
	}
	if c.StepScale <= 0 {
		c.StepScale = 1.0
	}
	if c.PriceDeviation <= 0 {
		c.PriceDeviation = 2.0
	}
	if c.TakeProfit <= 0 {
		c.TakeProfit = 1.5
	}
	if c.StopLossEnabled && c.StopLoss <= 0 {
		c.StopLoss = 5.0
	}
}

// Bot is one simulated DCA position on a single trading pair.
type Bot struct {
	Symbol             string    `json:"symbol"`
	Status             string    `json:"status"`
	EntryPrice         float64   `json:"entry_price"`
	CurrentPrice       float64   `json:"current_price"`
	Investment         float64   `json:"investment"`
	PnL                float64   `json:"pnl"`
	DCAConfig          DCAConfig `json:"dca_config"`
	SafetyOrdersFilled int       `json:"safety_orders_filled"`
	StartTime          time.Time `json:"start_time"`
}

// Clone returns a copy of the bot safe to hand out to callers.
func (b *Bot) Clone() *Bot {
	cp := *b
	return &cp
}

// NormalizeSymbol converts a pair identifier to its canonical dash form,
// e.g. "btc/usdt" -> "BTC-USDT".
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.ReplaceAll(s, "/", "-")
}

// SlashSymbol returns the slash-separated form of a canonical symbol,
// e.g. "BTC-USDT" -> "BTC/USDT". Some providers key their tickers this way.
func SlashSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "-", "/")
}
