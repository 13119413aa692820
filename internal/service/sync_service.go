package service

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/onursal82-hash/Vortexbot/internal/config"
	"github.com/onursal82-hash/Vortexbot/internal/ledger"
	"github.com/onursal82-hash/Vortexbot/internal/market"
	"github.com/onursal82-hash/Vortexbot/internal/model"
	"github.com/onursal82-hash/Vortexbot/internal/storage"
	"github.com/onursal82-hash/Vortexbot/pkg/logger"
)

// SyncService drives the periodic background jobs: the market sync tick, the
// periodic save, the daily backup and the optional keep-alive ping.
type SyncService struct {
	ledger    *ledger.Ledger
	provider  market.Provider
	store     *storage.Store
	history   *storage.HistoryLog
	hub       *StreamHub
	cfg       config.EngineConfig
	watchlist []string
	log       *logger.Logger

	// tickMu enforces at most one in-flight tick. A slow provider call must
	// never stack evaluations behind it; late ticks are skipped instead.
	tickMu sync.Mutex

	tickers []*time.Ticker
	done    chan struct{}
}

func NewSyncService(
	led *ledger.Ledger,
	provider market.Provider,
	store *storage.Store,
	history *storage.HistoryLog,
	hub *StreamHub,
	cfg config.EngineConfig,
	watchlist []string,
) *SyncService {
	return &SyncService{
		ledger:    led,
		provider:  provider,
		store:     store,
		history:   history,
		hub:       hub,
		cfg:       cfg,
		watchlist: watchlist,
		log:       logger.GetLogger(),
		done:      make(chan struct{}),
	}
}

// Start launches the background loops
func (s *SyncService) Start() {
	s.startLoop(s.cfg.TickInterval, s.syncTick)
	s.startLoop(s.cfg.SaveInterval, s.saveNow)
	s.startLoop(s.cfg.BackupInterval, s.backupNow)
	if s.cfg.KeepAliveURL != "" {
		s.startLoop(s.cfg.KeepAliveInterval, s.keepAlive)
	}
	s.log.Infof("Sync service started: tick=%s save=%s backup=%s",
		s.cfg.TickInterval, s.cfg.SaveInterval, s.cfg.BackupInterval)
}

// Stop halts the loops and flushes a final save
func (s *SyncService) Stop() {
	for _, t := range s.tickers {
		t.Stop()
	}
	close(s.done)
	s.saveNow()
	s.log.Info("Sync service stopped")
}

func (s *SyncService) startLoop(interval time.Duration, job func()) {
	ticker := time.NewTicker(interval)
	s.tickers = append(s.tickers, ticker)
	go func() {
		for {
			select {
			case <-ticker.C:
				job()
			case <-s.done:
				return
			}
		}
	}()
}

// syncTick fetches fresh quotes and runs the strategy over every running bot.
// Prices are fetched before the ledger lock is taken so a slow provider never
// blocks API reads.
func (s *SyncService) syncTick() {
	if !s.tickMu.TryLock() {
		s.log.Warn("Previous sync tick still running, skipping")
		return
	}
	defer s.tickMu.Unlock()

	symbols := s.symbolsToFetch()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	quotes, err := s.provider.FetchTickers(ctx, symbols)
	if err != nil {
		// Stale cached prices still drive the evaluation below.
		s.log.Warnf("Market fetch failed: %v", err)
		quotes = nil
	}

	now := time.Now()
	changed, entries := s.ledger.ApplyTick(quotes, now)

	if err := s.history.Append(entries); err != nil {
		s.log.Errorf("Failed to append trade history: %v", err)
	}
	if changed {
		s.saveNow()
	}
	s.broadcastTick()
}

func (s *SyncService) symbolsToFetch() []string {
	seen := make(map[string]bool, len(s.watchlist))
	symbols := make([]string, 0, len(s.watchlist))
	for _, sym := range s.watchlist {
		canon := model.NormalizeSymbol(sym)
		if !seen[canon] {
			seen[canon] = true
			symbols = append(symbols, canon)
		}
	}
	for _, sym := range s.ledger.ActiveSymbols() {
		if !seen[sym] {
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}
	return symbols
}

func (s *SyncService) saveNow() {
	if err := s.store.Save(s.ledger.Snapshot()); err != nil {
		s.log.Errorf("Failed to save ledger: %v", err)
	}
}

func (s *SyncService) backupNow() {
	if err := s.store.Backup(s.ledger.Snapshot()); err != nil {
		s.log.Errorf("Failed to write backup: %v", err)
	}
}

func (s *SyncService) keepAlive() {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(s.cfg.KeepAliveURL)
	if err != nil {
		s.log.Warnf("Keep-alive ping failed: %v", err)
		return
	}
	resp.Body.Close()
}

func (s *SyncService) broadcastTick() {
	ticker, lastUpdated := s.ledger.TickerSnapshot()
	if len(ticker) == 0 {
		return
	}
	s.hub.Broadcast(model.WSMessage{
		Type: model.MessageTypeTick,
		Payload: model.WSTickPayload{
			Ticker:      ticker,
			ActiveBots:  s.ledger.ActiveBotCount(),
			LastUpdated: lastUpdated,
		},
	})
}
