package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/onursal82-hash/Vortexbot/internal/model"
)

// Event is one trade event produced by a strategy evaluation. The ledger fans
// events out to the workspace activity log and the durable history file.
type Event struct {
	Kind       string
	Symbol     string
	Price      float64
	PnLPercent float64
	PnLAmount  float64
	Time       time.Time
}

// Apply runs one DCA evaluation of a bot against the current market price.
// It mutates only the bot and the workspace financials passed in and performs
// no I/O. Steps run in fixed order: P&L refresh, safety order, take profit,
// stop loss; a single call may both fill a safety order and close the
// position if the price swung enough between ticks.
//
// Precondition: bot.EntryPrice > 0 (always a previously observed market price).
func Apply(fin *model.Financials, bot *model.Bot, currentPrice float64, now time.Time) []Event {
	cfg := bot.DCAConfig
	entryPrice := bot.EntryPrice

	// 1. Refresh real-time P&L
	pnlPercent := (currentPrice - entryPrice) / entryPrice * 100
	bot.PnL = round2(pnlPercent)
	bot.CurrentPrice = currentPrice

	var events []Event

	// 2. Safety order: fires when the drawdown exceeds the scaled deviation
	// threshold and there are safety orders left to fill.
	if bot.Status == model.BotStatusRunning {
		requiredDrop := cfg.PriceDeviation * math.Pow(cfg.StepScale, float64(bot.SafetyOrdersFilled))
		if bot.SafetyOrdersFilled < cfg.MaxSafetyOrders && pnlPercent < -requiredDrop {
			soVolume := cfg.SafetyOrder * math.Pow(cfg.VolumeScale, float64(bot.SafetyOrdersFilled))
			bot.SafetyOrdersFilled++
			bot.Investment += soVolume
			fin.ReservedCapital += soVolume

			// Re-average the entry: total invested capital over total coins held
			coinsBefore := (bot.Investment - soVolume) / entryPrice
			newCoins := soVolume / currentPrice
			bot.EntryPrice = bot.Investment / (coinsBefore + newCoins)

			events = append(events, Event{
				Kind:       fmt.Sprintf("%s #%d", model.EventDCABuy, bot.SafetyOrdersFilled),
				Symbol:     bot.Symbol,
				Price:      currentPrice,
				PnLPercent: pnlPercent,
				PnLAmount:  0, // position still open
				Time:       now,
			})
		}
	}

	// 3. Take profit: realize against the post-safety-order investment.
	if pnlPercent >= cfg.TakeProfit {
		profit := bot.Investment * (pnlPercent / 100)
		fin.TotalBalance += profit
		fin.NetPnL += profit
		fin.ReservedCapital -= bot.Investment

		events = append(events, Event{
			Kind:       model.EventTakeProfit,
			Symbol:     bot.Symbol,
			Price:      currentPrice,
			PnLPercent: pnlPercent,
			PnLAmount:  profit,
			Time:       now,
		})

		if cfg.LoopEnabled {
			// Restart the cycle at the current market price
			bot.Status = model.BotStatusRunning
			bot.Investment = cfg.BaseOrder
			bot.EntryPrice = currentPrice
			bot.SafetyOrdersFilled = 0
			bot.StartTime = now
			fin.ReservedCapital += bot.Investment

			events = append(events, Event{
				Kind:   model.EventLoopRestart,
				Symbol: bot.Symbol,
				Price:  currentPrice,
				Time:   now,
			})
		} else {
			bot.Status = model.BotStatusCompleted
		}
	}

	// 4. Stop loss: only for bots still running after the take-profit step.
	if cfg.StopLossEnabled && bot.Status == model.BotStatusRunning {
		if pnlPercent <= -cfg.StopLoss {
			loss := bot.Investment * (pnlPercent / 100)
			fin.TotalBalance += loss
			fin.NetPnL += loss
			fin.ReservedCapital -= bot.Investment
			bot.Status = model.BotStatusStoppedLoss

			events = append(events, Event{
				Kind:       model.EventStopLoss,
				Symbol:     bot.Symbol,
				Price:      currentPrice,
				PnLPercent: pnlPercent,
				PnLAmount:  loss,
				Time:       now,
			})
		}
	}

	return events
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
