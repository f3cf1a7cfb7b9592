package swapzone

import (
	"sync/atomic"
	"time"
)

// catalogSnapshot is an immutable currency list plus the time it was
// fetched. The cache swaps whole snapshots so readers always observe either
// the previous complete list or the new one.
type catalogSnapshot struct {
	currencies []Currency
	fetchedAt  time.Time
}

type currencyCache struct {
	snapshot atomic.Value // *catalogSnapshot
	ttl      time.Duration
}

func newCurrencyCache(ttl time.Duration) *currencyCache {
	return &currencyCache{ttl: ttl}
}

// get returns the cached list if a snapshot exists and is younger than the
// TTL.
func (c *currencyCache) get() ([]Currency, bool) {
	v := c.snapshot.Load()
	if v == nil {
		return nil, false
	}
	snap := v.(*catalogSnapshot)
	if time.Since(snap.fetchedAt) >= c.ttl {
		return nil, false
	}
	return snap.currencies, true
}

// put replaces the snapshot. Concurrent refreshes race benignly, last write
// wins.
func (c *currencyCache) put(currencies []Currency) {
	c.snapshot.Store(&catalogSnapshot{
		currencies: currencies,
		fetchedAt:  time.Now(),
	})
}
