package ledger

import (
	"time"

	"github.com/onursal82-hash/Vortexbot/internal/model"
)

// MarketCache holds the last-known quote per symbol. It carries no expiry:
// during a provider outage the cache keeps serving whatever it last saw, and
// staleness is only observable through LastUpdatedAt. The cache is not safe
// for concurrent use on its own; all access goes through the Ledger's lock.
type MarketCache struct {
	entries     map[string]model.TickerEntry
	lastUpdated time.Time
}

func NewMarketCache() *MarketCache {
	return &MarketCache{
		entries: make(map[string]model.TickerEntry),
	}
}

// Update overwrites the cached quote for one symbol.
func (c *MarketCache) Update(symbol string, last, change float64) {
	c.entries[model.NormalizeSymbol(symbol)] = model.TickerEntry{Last: last, Change: change}
}

// Touch records that a refresh round completed.
func (c *MarketCache) Touch(now time.Time) {
	c.lastUpdated = now
}

// Get looks up a symbol, tolerating both separator forms.
func (c *MarketCache) Get(symbol string) (model.TickerEntry, bool) {
	entry, ok := c.entries[model.NormalizeSymbol(symbol)]
	return entry, ok
}

// LastUpdatedAt reports when the cache last completed a refresh.
func (c *MarketCache) LastUpdatedAt() time.Time {
	return c.lastUpdated
}

// Len returns the number of cached symbols.
func (c *MarketCache) Len() int {
	return len(c.entries)
}

// Snapshot copies the cache contents for read views.
func (c *MarketCache) Snapshot() map[string]model.TickerEntry {
	out := make(map[string]model.TickerEntry, len(c.entries))
	for sym, entry := range c.entries {
		out[sym] = entry
	}
	return out
}
