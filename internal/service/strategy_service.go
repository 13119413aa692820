package service

import (
	"context"
	"errors"
	"time"

	"github.com/onursal82-hash/Vortexbot/internal/ledger"
	"github.com/onursal82-hash/Vortexbot/internal/market"
	"github.com/onursal82-hash/Vortexbot/internal/model"
	"github.com/onursal82-hash/Vortexbot/internal/storage"
	"github.com/onursal82-hash/Vortexbot/internal/util"
	"github.com/onursal82-hash/Vortexbot/pkg/logger"
)

// fallbackEntryPrice seeds a quick-start position when no live or cached
// quote exists yet. The first sync tick corrects the mark immediately.
const fallbackEntryPrice = 50000.0

// StrategyService handles the bot lifecycle: open, stop, panic sell, plus the
// read views over bots and markets.
type StrategyService struct {
	ledger   *ledger.Ledger
	provider market.Provider
	store    *storage.Store
	history  *storage.HistoryLog
	log      *logger.Logger
}

func NewStrategyService(
	led *ledger.Ledger,
	provider market.Provider,
	store *storage.Store,
	history *storage.HistoryLog,
) *StrategyService {
	return &StrategyService{
		ledger:   led,
		provider: provider,
		store:    store,
		history:  history,
		log:      logger.GetLogger(),
	}
}

// CreateBot opens a fully configured position. Creation requires a real
// price: either a fresh quote from the provider or a cached one. Without a
// price the request fails rather than guessing an entry.
func (s *StrategyService) CreateBot(ctx context.Context, wsID string, req *model.CreateBotRequest) (*model.Bot, error) {
	symbol := model.NormalizeSymbol(req.Symbol)

	price, err := s.resolvePrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	cfg := model.DCAConfig{}
	if req.Config != nil {
		cfg = *req.Config
	}
	cfg.ApplyDefaults(req.BaseOrder)

	bot := s.newBot(symbol, price, cfg)
	if err := s.ledger.AddBot(wsID, bot); err != nil {
		return nil, err
	}

	s.persist()
	s.log.Infof("Bot created: %s entry=%.4f base=%.2f", symbol, price, cfg.BaseOrder)
	return bot.Clone(), nil
}

// OpenStrategy is the quick-start path: default configuration, loop always
// enabled, and a static fallback entry when no quote is available yet.
func (s *StrategyService) OpenStrategy(ctx context.Context, wsID string, req *model.OpenStrategyRequest) (*model.Bot, error) {
	symbol := model.NormalizeSymbol(req.Symbol)

	price, err := s.resolvePrice(ctx, symbol)
	if err != nil {
		price = fallbackEntryPrice
	}

	cfg := model.DCAConfig{}
	cfg.ApplyDefaults(req.BaseOrder)
	cfg.LoopEnabled = true

	bot := s.newBot(symbol, price, cfg)
	if err := s.ledger.AddBot(wsID, bot); err != nil {
		return nil, err
	}

	s.persist()
	s.log.Infof("Strategy opened: %s entry=%.4f base=%.2f", symbol, price, cfg.BaseOrder)
	return bot.Clone(), nil
}

func (s *StrategyService) newBot(symbol string, price float64, cfg model.DCAConfig) *model.Bot {
	return &model.Bot{
		Symbol:       symbol,
		Status:       model.BotStatusRunning,
		EntryPrice:   price,
		CurrentPrice: price,
		Investment:   cfg.BaseOrder,
		DCAConfig:    cfg,
		StartTime:    time.Now(),
	}
}

func (s *StrategyService) resolvePrice(ctx context.Context, symbol string) (float64, error) {
	ticker, err := s.provider.FetchTicker(ctx, symbol)
	if err == nil && ticker.Last > 0 {
		return ticker.Last, nil
	}
	if cached, ok := s.ledger.CachedPrice(symbol); ok {
		return cached, nil
	}
	if errors.Is(err, market.ErrSymbolUnavailable) {
		return 0, util.ErrSymbolNotFound(symbol)
	}
	return 0, util.ErrProviderUnavailable(err)
}

// StopBot cancels a position and releases its capital without realizing P&L.
func (s *StrategyService) StopBot(wsID, symbol string) error {
	if err := s.ledger.StopBot(wsID, symbol); err != nil {
		return err
	}
	s.persist()
	return nil
}

// PanicSell force-closes a position at its last evaluated P&L.
func (s *StrategyService) PanicSell(wsID, symbol string) error {
	entry, err := s.ledger.PanicSell(wsID, symbol, time.Now())
	if err != nil {
		return err
	}
	if err := s.history.Append([]model.HistoryEntry{*entry}); err != nil {
		s.log.Errorf("Failed to record panic sell: %v", err)
	}
	s.persist()
	return nil
}

// Dashboard returns the aggregate workspace view.
func (s *StrategyService) Dashboard(wsID string) *model.Dashboard {
	return s.ledger.Dashboard(wsID, 20)
}

// BotDetails returns one bot plus its recent activity.
func (s *StrategyService) BotDetails(wsID, symbol string) (*model.Bot, []model.TradeLogEntry, error) {
	return s.ledger.BotDetails(wsID, symbol)
}

// TradeHistory returns the durable trade record, newest first.
func (s *StrategyService) TradeHistory(n int) ([]model.HistoryEntry, error) {
	return s.history.Recent(n)
}

// ListMarkets returns the USDT markets available from the provider.
func (s *StrategyService) ListMarkets(ctx context.Context) ([]market.SymbolInfo, error) {
	markets, err := s.provider.FetchMarkets(ctx)
	if err != nil {
		return nil, util.ErrProviderUnavailable(err)
	}
	return markets, nil
}

func (s *StrategyService) persist() {
	if err := s.store.Save(s.ledger.Snapshot()); err != nil {
		s.log.Errorf("Failed to save ledger: %v", err)
	}
}
