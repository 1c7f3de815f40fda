package quotes

import (
    "context"
    "fmt"
    "log"
    "sync"

    "golang.org/x/sync/errgroup"

    "stockdashboard/internal/provider"
)

// DefaultMaxConcurrency bounds the per-symbol fan-out of FetchMany.
const DefaultMaxConcurrency = 8

// Fetcher turns symbols into quotes through a provider.
type Fetcher struct {
    P provider.Provider
    // MaxConcurrency limits in-flight requests in FetchMany.
    // Defaults to DefaultMaxConcurrency when <= 0.
    MaxConcurrency int
    // Logger receives per-symbol failures swallowed by FetchMany. Nil disables it.
    Logger *log.Logger
}

func New(p provider.Provider, maxConcurrency int) *Fetcher {
    return &Fetcher{P: p, MaxConcurrency: maxConcurrency, Logger: log.Default()}
}

// FetchOne fetches a single symbol. Errors are *provider.ProviderError or
// *provider.InvalidDataError from the provider, or the context error.
func (f *Fetcher) FetchOne(ctx context.Context, symbol string) (provider.Quote, error) {
    sym := provider.NormalizeSymbol(symbol)
    if sym == "" {
        return provider.Quote{}, fmt.Errorf("fetch quote: empty symbol")
    }
    q, err := f.P.Quote(ctx, sym)
    if err != nil {
        return provider.Quote{}, err
    }
    q.Symbol = sym
    return q, nil
}

// FetchOneOrNil is FetchOne with any failure reported as ok == false.
func (f *Fetcher) FetchOneOrNil(ctx context.Context, symbol string) (provider.Quote, bool) {
    q, err := f.FetchOne(ctx, symbol)
    if err != nil {
        f.logf("fetch %s: %v", symbol, err)
        return provider.Quote{}, false
    }
    return q, true
}

// FetchMany fetches every symbol concurrently and returns the ones that
// succeeded once all requests have settled. A failing symbol is simply absent
// from the result; FetchMany itself never fails. Order is not guaranteed.
func (f *Fetcher) FetchMany(ctx context.Context, symbols []string) []provider.Quote {
    uniq := make([]string, 0, len(symbols))
    seen := make(map[string]struct{}, len(symbols))
    for _, s := range symbols {
        sym := provider.NormalizeSymbol(s)
        if sym == "" { continue }
        if _, dup := seen[sym]; dup { continue }
        seen[sym] = struct{}{}
        uniq = append(uniq, sym)
    }
    if len(uniq) == 0 {
        return nil
    }

    limit := f.MaxConcurrency
    if limit <= 0 { limit = DefaultMaxConcurrency }

    var (
        g   errgroup.Group
        mu  sync.Mutex
        out = make([]provider.Quote, 0, len(uniq))
    )
    g.SetLimit(limit)
    for _, sym := range uniq {
        g.Go(func() error {
            q, err := f.FetchOne(ctx, sym)
            if err != nil {
                f.logf("fetch %s: %v", sym, err)
                return nil
            }
            mu.Lock()
            out = append(out, q)
            mu.Unlock()
            return nil
        })
    }
    _ = g.Wait()
    return out
}

func (f *Fetcher) logf(format string, args ...any) {
    if f.Logger != nil {
        f.Logger.Printf(format, args...)
    }
}
