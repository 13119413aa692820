package model

import "time"

// WorkspaceHistoryLimit caps the in-memory recent-activity ring per workspace.
const WorkspaceHistoryLimit = 50

// Financials tracks realized capital for one workspace. TotalBalance and
// NetPnL move only on close events; unrealized P&L is derived on read and is
// never folded back into these fields.
type Financials struct {
	TotalBalance    float64 `json:"total_balance"`
	ReservedCapital float64 `json:"reserved_capital"`
	NetPnL          float64 `json:"net_pnl"`
}

// TradeLogEntry is one row of the workspace's bounded recent-activity log.
type TradeLogEntry struct {
	Time   string  `json:"time"`
	Symbol string  `json:"symbol"`
	Type   string  `json:"type"`
	Price  float64 `json:"price"`
	PnL    string  `json:"pnl"`
}

// HistoryEntry is one row of the durable, append-only trade history file.
type HistoryEntry struct {
	Symbol     string  `json:"symbol"`
	Timestamp  string  `json:"timestamp"`
	Event      string  `json:"event"`
	PnLPercent float64 `json:"pnl_percent"`
	PnLUSD     float64 `json:"pnl_usd"`
}

// Workspace is one trading workspace: its bots keyed by canonical symbol, its
// realized financials and a bounded recent-activity log, newest first.
type Workspace struct {
	PasswordHash string          `json:"password_hash,omitempty"`
	Bots         map[string]*Bot `json:"bots"`
	Financials   Financials      `json:"financials"`
	History      []TradeLogEntry `json:"history"`
}

// NewWorkspace creates an empty workspace funded with the given balance.
func NewWorkspace(initialBalance float64) *Workspace {
	return &Workspace{
		Bots: make(map[string]*Bot),
		Financials: Financials{
			TotalBalance: initialBalance,
		},
		History: make([]TradeLogEntry, 0),
	}
}

// PushHistory prepends an entry to the recent-activity log, dropping the
// oldest entry beyond the cap.
func (w *Workspace) PushHistory(entry TradeLogEntry) {
	w.History = append([]TradeLogEntry{entry}, w.History...)
	if len(w.History) > WorkspaceHistoryLimit {
		w.History = w.History[:WorkspaceHistoryLimit]
	}
}

// UnrealizedPnL sums the open profit/loss across all running bots.
func (w *Workspace) UnrealizedPnL() float64 {
	var total float64
	for _, bot := range w.Bots {
		if bot.Status == BotStatusRunning {
			total += bot.Investment * (bot.PnL / 100)
		}
	}
	return total
}

// Clone deep-copies the workspace for persistence snapshots and read views.
func (w *Workspace) Clone() *Workspace {
	cp := &Workspace{
		PasswordHash: w.PasswordHash,
		Bots:         make(map[string]*Bot, len(w.Bots)),
		Financials:   w.Financials,
		History:      make([]TradeLogEntry, len(w.History)),
	}
	for sym, bot := range w.Bots {
		cp.Bots[sym] = bot.Clone()
	}
	copy(cp.History, w.History)
	return cp
}

// Document is the durable ledger file layout: every workspace keyed by id.
type Document struct {
	Workspaces map[string]*Workspace `json:"workspaces"`
}

// TickerEntry is the cached market view for one symbol.
type TickerEntry struct {
	Last   float64 `json:"last"`
	Change float64 `json:"change"`
}

// Dashboard is the aggregate read view served to clients.
type Dashboard struct {
	Financials DashboardFinancials    `json:"financials"`
	Bots       []*Bot                 `json:"bots"`
	Ticker     map[string]TickerEntry `json:"ticker"`
	History    []TradeLogEntry        `json:"history"`
}

// DashboardFinancials folds unrealized P&L into the reported net figure
// without touching the persisted financials.
type DashboardFinancials struct {
	TotalBalance float64 `json:"total_balance"`
	Reserved     float64 `json:"reserved"`
	NetPnL       float64 `json:"net_pnl"`
}

// WSMessageType represents the type of WebSocket message
type WSMessageType string

const (
	MessageTypeTick  WSMessageType = "tick"
	MessageTypeError WSMessageType = "error"
)

// WSMessage is the envelope for all WebSocket messages
type WSMessage struct {
	Type    WSMessageType `json:"type"`
	Payload interface{}   `json:"payload"`
}

// WSTickPayload is broadcast after every market sync that changed state.
type WSTickPayload struct {
	Ticker      map[string]TickerEntry `json:"ticker"`
	ActiveBots  int                    `json:"active_bots"`
	LastUpdated time.Time              `json:"last_updated"`
}
