package finnhubadapter

import (
    "context"
    "errors"
    "time"

    "stockdashboard/internal/provider"
    "stockdashboard/internal/provider/finnhub"
)

type Config struct {
    Name string // display name, default: Finnhub
}

// Adapter exposes the Finnhub quote endpoint as a provider.Provider.
type Adapter struct {
    cfg    Config
    client *finnhub.FinnhubAPIClient
    now    func() time.Time
}

func New(cfg Config, client *finnhub.FinnhubAPIClient) *Adapter {
    if cfg.Name == "" { cfg.Name = "Finnhub" }
    return &Adapter{cfg: cfg, client: client, now: time.Now}
}

func (a *Adapter) Name() string { return a.cfg.Name }

// Quote fetches one symbol. Transport, status and decoding failures come back
// as *provider.ProviderError; Finnhub's "no data" answer (current price zero or
// missing with no change) comes back as *provider.InvalidDataError.
func (a *Adapter) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
    res, err := a.client.GetQuote(ctx, symbol)
    if err != nil {
        pe := &provider.ProviderError{Provider: a.cfg.Name, Symbol: symbol, Err: err}
        var statusErr *finnhub.StatusError
        if errors.As(err, &statusErr) {
            pe.StatusCode = statusErr.StatusCode
        }
        return provider.Quote{}, pe
    }

    if (res.Current == nil || *res.Current == 0) && res.Change == nil {
        return provider.Quote{}, &provider.InvalidDataError{Provider: a.cfg.Name, Symbol: symbol}
    }

    q := provider.Quote{
        Symbol:        symbol,
        Price:         deref(res.Current),
        Change:        deref(res.Change),
        ChangePercent: deref(res.PercentChange),
        ReceivedAt:    a.now().UTC(),
    }
    if res.PreviousClose != nil {
        pc := *res.PreviousClose
        q.PreviousClose = &pc
    }
    return q, nil
}

func deref(v *float64) float64 {
    if v == nil { return 0 }
    return *v
}
