package finnhubadapter

import (
    "fmt"
    "net/http"
    "time"

    "stockdashboard/internal/config"
    "stockdashboard/internal/httpx"
    "stockdashboard/internal/provider"
    "stockdashboard/internal/provider/cache"
    "stockdashboard/internal/provider/finnhub"
    "stockdashboard/internal/provider/ratelimit"
)

// NewStack builds the Finnhub provider as the binaries use it:
// adapter, then rate limiting, then the per-symbol cache.
func NewStack(cfg config.Finnhub, hc *httpx.Client) (provider.Provider, error) {
    opts := []finnhub.FinnhubAPIClientOption{
        finnhub.WithHTTPClient(hc),
        finnhub.WithHeader(http.Header{"Accept": []string{"application/json"}}),
    }
    if cfg.BaseURL != "" {
        opts = append(opts, finnhub.WithBaseURL(cfg.BaseURL))
    }
    client, err := finnhub.NewFinnhubAPIClient(cfg.APIKey, opts...)
    if err != nil {
        return nil, fmt.Errorf("finnhub client: %w", err)
    }
    var p provider.Provider = New(Config{Name: "Finnhub"}, client)

    // Prefer token bucket with burst if RPM is set, otherwise use min-interval
    if cfg.MaxRequestsPerMinute > 0 {
        rate := float64(cfg.MaxRequestsPerMinute) / 60.0
        burst := cfg.Burst
        if burst <= 0 { burst = 1 }
        p = &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.NewTokenBucket(rate, burst)}
    } else if cfg.MinRequestIntervalMs > 0 {
        p = &ratelimit.MinInterval{P: p, Interval: time.Duration(cfg.MinRequestIntervalMs) * time.Millisecond}
    }

    // Always wrapped: with a zero TTL the cache still coalesces concurrent
    // requests for one symbol.
    return &cache.Provider{
        P:        p,
        TTL:      time.Duration(cfg.CacheTTLSeconds) * time.Second,
        MaxItems: cfg.CacheMaxItems,
    }, nil
}
