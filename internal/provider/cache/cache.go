package cache

import (
    "context"
    "sync"
    "time"

    "golang.org/x/sync/singleflight"

    "stockdashboard/internal/provider"
)

// DefaultFetchTimeout bounds a coalesced upstream call when FetchTimeout is unset.
const DefaultFetchTimeout = 30 * time.Second

// entry stores the cached quote for a single symbol with expiry.
type entry struct {
    expiresAt time.Time
    quote     provider.Quote
}

// Provider caches quotes per symbol for a TTL and coalesces concurrent
// requests for the same symbol into one upstream call, so a manual refresh
// racing the auto-refresh tick does not spend the rate limit twice.
// With TTL <= 0 it only coalesces.
//
// The shared upstream call is detached from any single caller's cancellation
// and bounded by FetchTimeout instead; each caller stops waiting when its own
// context ends.
type Provider struct {
    P        provider.Provider
    TTL      time.Duration
    MaxItems int
    // FetchTimeout bounds one shared upstream call. Defaults to DefaultFetchTimeout.
    FetchTimeout time.Duration

    mu    sync.RWMutex
    items map[string]entry // key: symbol

    sf singleflight.Group
}

func (c *Provider) Name() string { return c.P.Name() }

// Quote returns the cached quote when still valid, otherwise fetches it.
// Failures are never cached.
func (c *Provider) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
    if c.TTL > 0 {
        c.mu.RLock()
        e, ok := c.items[symbol]
        c.mu.RUnlock()
        if ok && time.Now().Before(e.expiresAt) {
            return e.quote, nil
        }
    }

    ch := c.sf.DoChan(symbol, func() (any, error) {
        fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout())
        defer cancel()
        q, err := c.P.Quote(fctx, symbol)
        if err != nil {
            return provider.Quote{}, err
        }
        if c.TTL > 0 {
            c.store(symbol, q)
        }
        return q, nil
    })
    select {
    case res := <-ch:
        if res.Err != nil {
            return provider.Quote{}, res.Err
        }
        return res.Val.(provider.Quote), nil
    case <-ctx.Done():
        return provider.Quote{}, ctx.Err()
    }
}

func (c *Provider) fetchTimeout() time.Duration {
    if c.FetchTimeout <= 0 { return DefaultFetchTimeout }
    return c.FetchTimeout
}

func (c *Provider) store(symbol string, q provider.Quote) {
    now := time.Now()
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.items == nil { c.items = make(map[string]entry) }
    c.items[symbol] = entry{expiresAt: now.Add(c.TTL), quote: q}

    // best-effort cap cache size
    if c.MaxItems > 0 && len(c.items) > c.MaxItems {
        // remove expired first, then arbitrary
        for k, v := range c.items {
            if now.After(v.expiresAt) {
                delete(c.items, k)
            }
        }
        for k := range c.items {
            if len(c.items) <= c.MaxItems { break }
            if k == symbol { continue }
            delete(c.items, k)
        }
    }
}

// Len reports the number of cached symbols, expired ones included.
func (c *Provider) Len() int {
    c.mu.RLock()
    defer c.mu.RUnlock()
    return len(c.items)
}
