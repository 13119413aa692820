package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/onursal82-hash/Vortexbot/internal/engine"
	"github.com/onursal82-hash/Vortexbot/internal/market"
	"github.com/onursal82-hash/Vortexbot/internal/model"
	"github.com/onursal82-hash/Vortexbot/internal/util"
	"github.com/onursal82-hash/Vortexbot/pkg/logger"
)

// Ledger is the in-memory root of all workspaces plus the market cache. One
// mutex guards everything; callers only ever see deep copies, never live
// references into the guarded state.
type Ledger struct {
	mu             sync.Mutex
	workspaces     map[string]*model.Workspace
	cache          *MarketCache
	initialBalance float64
	sharedID       string
	log            *logger.Logger
}

// New creates an empty ledger. When sharedID is non-empty every workspace id
// resolves to that single shared workspace (the platform's shared-visibility
// mode); leave it empty for per-workspace isolation.
func New(initialBalance float64, sharedID string) *Ledger {
	return &Ledger{
		workspaces:     make(map[string]*model.Workspace),
		cache:          NewMarketCache(),
		initialBalance: initialBalance,
		sharedID:       sharedID,
		log:            logger.GetLogger(),
	}
}

func (l *Ledger) resolve(id string) string {
	if l.sharedID != "" {
		return l.sharedID
	}
	return id
}

func (l *Ledger) ensureLocked(id string) *model.Workspace {
	ws, ok := l.workspaces[id]
	if !ok {
		ws = model.NewWorkspace(l.initialBalance)
		l.workspaces[id] = ws
	}
	return ws
}

// EnsureWorkspace creates the workspace if it does not exist yet.
func (l *Ledger) EnsureWorkspace(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLocked(id)
}

// Register creates a new workspace with the given password hash.
func (l *Ledger) Register(id, passwordHash string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.workspaces[id]; exists {
		return util.ErrWorkspaceExists(id)
	}
	ws := model.NewWorkspace(l.initialBalance)
	ws.PasswordHash = passwordHash
	l.workspaces[id] = ws
	return nil
}

// Credentials returns the stored password hash for a workspace.
func (l *Ledger) Credentials(id string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ws, ok := l.workspaces[id]
	if !ok {
		return "", false
	}
	return ws.PasswordHash, true
}

// AddBot inserts a new bot and reserves its initial investment. Creation is
// rejected while a running bot exists for the same symbol; nothing is mutated
// on rejection.
func (l *Ledger) AddBot(wsID string, bot *model.Bot) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ws := l.ensureLocked(l.resolve(wsID))
	if existing, ok := ws.Bots[bot.Symbol]; ok && existing.Status == model.BotStatusRunning {
		return util.ErrDuplicateActiveBot(bot.Symbol)
	}

	ws.Bots[bot.Symbol] = bot
	ws.Financials.ReservedCapital += bot.Investment
	return nil
}

// StopBot removes a bot and releases its reserved capital without realizing
// any profit or loss.
func (l *Ledger) StopBot(wsID, symbol string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ws := l.ensureLocked(l.resolve(wsID))
	symbol = model.NormalizeSymbol(symbol)
	bot, ok := ws.Bots[symbol]
	if !ok {
		return util.ErrBotNotFound(symbol)
	}

	ws.Financials.ReservedCapital -= bot.Investment
	delete(ws.Bots, symbol)
	l.log.Infof("Bot stopped: %s", symbol)
	return nil
}

// PanicSell closes a bot at its last evaluated P&L, realizes the result into
// the workspace financials and removes the bot. Returns the durable history
// entry for the close.
func (l *Ledger) PanicSell(wsID, symbol string, now time.Time) (*model.HistoryEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ws := l.ensureLocked(l.resolve(wsID))
	symbol = model.NormalizeSymbol(symbol)
	bot, ok := ws.Bots[symbol]
	if !ok {
		return nil, util.ErrBotNotFound(symbol)
	}

	pnlPercent := bot.PnL
	pnlAmount := bot.Investment * (pnlPercent / 100)

	ws.Financials.TotalBalance += pnlAmount
	ws.Financials.NetPnL += pnlAmount
	ws.Financials.ReservedCapital -= bot.Investment
	delete(ws.Bots, symbol)

	l.log.Infof("Panic sell: %s closed at %.2f%%", symbol, pnlPercent)

	return &model.HistoryEntry{
		Symbol:     symbol,
		Timestamp:  now.Format(time.RFC3339),
		Event:      model.EventPanicSell,
		PnLPercent: pnlPercent,
		PnLUSD:     pnlAmount,
	}, nil
}

// CachedPrice returns the last cached price for a symbol, if any.
func (l *Ledger) CachedPrice(symbol string) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.cache.Get(symbol)
	if !ok {
		return 0, false
	}
	return entry.Last, true
}

// ActiveSymbols lists the canonical symbols of every running bot across all
// workspaces.
func (l *Ledger) ActiveSymbols() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]bool)
	var symbols []string
	for _, ws := range l.workspaces {
		for sym, bot := range ws.Bots {
			if bot.Status == model.BotStatusRunning && !seen[sym] {
				seen[sym] = true
				symbols = append(symbols, sym)
			}
		}
	}
	return symbols
}

// ActiveBotCount counts running bots across all workspaces.
func (l *Ledger) ActiveBotCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, ws := range l.workspaces {
		for _, bot := range ws.Bots {
			if bot.Status == model.BotStatusRunning {
				count++
			}
		}
	}
	return count
}

// TickerSnapshot copies the market cache for broadcasting.
func (l *Ledger) TickerSnapshot() (map[string]model.TickerEntry, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache.Snapshot(), l.cache.LastUpdatedAt()
}

// ApplyTick refreshes the market cache with whatever quotes the provider
// returned (possibly none) and evaluates the strategy for every running bot
// that has a cached price. Closed bots are filtered out before the engine
// runs, so re-applying an unchanged price cannot double-close. Returns whether
// any bot was evaluated and the durable history entries produced.
func (l *Ledger) ApplyTick(quotes map[string]market.Ticker, now time.Time) (bool, []model.HistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(quotes) > 0 {
		for sym, q := range quotes {
			l.cache.Update(sym, q.Last, q.PercentChange)
		}
		l.cache.Touch(now)
	}

	changed := false
	var durable []model.HistoryEntry
	for _, ws := range l.workspaces {
		for sym, bot := range ws.Bots {
			if bot.Status != model.BotStatusRunning {
				continue
			}
			entry, ok := l.cache.Get(sym)
			if !ok {
				// No price yet for this pair; try again next tick.
				continue
			}
			changed = true
			durable = append(durable, l.evaluateBot(ws, bot, entry.Last, now)...)
		}
	}
	return changed, durable
}

// evaluateBot runs the engine for one bot and fans its events out to the
// workspace activity ring and the durable history. A panic in a single bot's
// evaluation is contained here so the rest of the tick proceeds.
func (l *Ledger) evaluateBot(ws *model.Workspace, bot *model.Bot, price float64, now time.Time) (durable []model.HistoryEntry) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Errorf("Strategy evaluation failed for %s: %v", bot.Symbol, r)
		}
	}()

	events := engine.Apply(&ws.Financials, bot, price, now)
	for _, ev := range events {
		l.log.Infof("%s: %s at %.4f (%.2f%%)", ev.Symbol, ev.Kind, ev.Price, ev.PnLPercent)

		ws.PushHistory(model.TradeLogEntry{
			Time:   ev.Time.Format("15:04:05"),
			Symbol: ev.Symbol,
			Type:   ev.Kind,
			Price:  ev.Price,
			PnL:    formatEventPnL(ev),
		})
		durable = append(durable, model.HistoryEntry{
			Symbol:     ev.Symbol,
			Timestamp:  ev.Time.Format(time.RFC3339),
			Event:      ev.Kind,
			PnLPercent: ev.PnLPercent,
			PnLUSD:     ev.PnLAmount,
		})
	}
	return durable
}

func formatEventPnL(ev engine.Event) string {
	switch ev.Kind {
	case model.EventTakeProfit:
		return fmt.Sprintf("+%.2f%%", ev.PnLPercent)
	case model.EventLoopRestart:
		return "0.00%"
	default:
		return fmt.Sprintf("%.2f%%", ev.PnLPercent)
	}
}

// Dashboard builds the aggregate read view for a workspace. Unrealized P&L is
// folded into the reported net figure on the way out; the stored financials
// stay realized-only.
func (l *Ledger) Dashboard(wsID string, historyLimit int) *model.Dashboard {
	l.mu.Lock()
	defer l.mu.Unlock()

	ws := l.ensureLocked(l.resolve(wsID))

	bots := make([]*model.Bot, 0, len(ws.Bots))
	for _, bot := range ws.Bots {
		bots = append(bots, bot.Clone())
	}

	history := ws.History
	if historyLimit > 0 && len(history) > historyLimit {
		history = history[:historyLimit]
	}
	historyCopy := make([]model.TradeLogEntry, len(history))
	copy(historyCopy, history)

	ticker := l.cache.Snapshot()
	if len(ticker) == 0 {
		ticker = placeholderTicker()
	}

	return &model.Dashboard{
		Financials: model.DashboardFinancials{
			TotalBalance: ws.Financials.TotalBalance,
			Reserved:     ws.Financials.ReservedCapital,
			NetPnL:       ws.Financials.NetPnL + ws.UnrealizedPnL(),
		},
		Bots:    bots,
		Ticker:  ticker,
		History: historyCopy,
	}
}

// BotDetails returns a copy of one bot plus its recent activity entries.
func (l *Ledger) BotDetails(wsID, symbol string) (*model.Bot, []model.TradeLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ws := l.ensureLocked(l.resolve(wsID))
	symbol = model.NormalizeSymbol(symbol)
	bot, ok := ws.Bots[symbol]
	if !ok {
		return nil, nil, util.ErrBotNotFound(symbol)
	}

	var logs []model.TradeLogEntry
	for _, entry := range ws.History {
		if entry.Symbol == symbol {
			logs = append(logs, entry)
		}
	}
	return bot.Clone(), logs, nil
}

// Snapshot deep-copies the ledger into its durable document form.
func (l *Ledger) Snapshot() *model.Document {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc := &model.Document{Workspaces: make(map[string]*model.Workspace, len(l.workspaces))}
	for id, ws := range l.workspaces {
		doc.Workspaces[id] = ws.Clone()
	}
	return doc
}

// Restore replaces the ledger contents from a loaded document.
func (l *Ledger) Restore(doc *model.Document) {
	if doc == nil || doc.Workspaces == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.workspaces = make(map[string]*model.Workspace, len(doc.Workspaces))
	for id, ws := range doc.Workspaces {
		if ws.Bots == nil {
			ws.Bots = make(map[string]*model.Bot)
		}
		if ws.History == nil {
			ws.History = make([]model.TradeLogEntry, 0)
		}
		l.workspaces[id] = ws
	}
	l.log.Infof("Ledger restored: %d workspaces loaded", len(l.workspaces))
}

// placeholderTicker seeds the dashboard before the first market sync lands.
func placeholderTicker() map[string]model.TickerEntry {
	return map[string]model.TickerEntry{
		"BTC-USDT": {Last: 50000.0, Change: 2.5},
		"ETH-USDT": {Last: 3000.0, Change: 1.2},
		"SOL-USDT": {Last: 100.0, Change: -0.5},
		"BNB-USDT": {Last: 400.0, Change: 0.1},
		"XRP-USDT": {Last: 0.5, Change: 0.0},
	}
}
