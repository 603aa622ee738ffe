package pricing

import (
	"context"
	"sync"
	"time"
)

// Compile-time interface check.
var _ Oracle = (*CacheOracle)(nil)

type cachedQuote struct {
	price float64
	at    time.Time
}

// CacheOracle is an in-memory oracle kept current by a streaming feed.
// Quotes older than maxAge are treated as unavailable rather than served
// stale into fills.
type CacheOracle struct {
	mu     sync.RWMutex
	quotes map[string]cachedQuote
	maxAge time.Duration
	now    func() time.Time
}

// NewCacheOracle creates an empty cache. maxAge <= 0 disables staleness
// checks.
func NewCacheOracle(maxAge time.Duration) *CacheOracle {
	return &CacheOracle{
		quotes: make(map[string]cachedQuote),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Set records the latest quote for a symbol.
func (o *CacheOracle) Set(symbol string, price float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.quotes[symbol] = cachedQuote{price: price, at: o.now()}
}

func (o *CacheOracle) CurrentPrice(_ context.Context, symbol string) (float64, error) {
	o.mu.RLock()
	quote, ok := o.quotes[symbol]
	o.mu.RUnlock()

	if !ok {
		return 0, ErrPriceUnavailable
	}

	if o.maxAge > 0 && o.now().Sub(quote.at) > o.maxAge {
		return 0, ErrPriceUnavailable
	}

	return quote.price, nil
}
