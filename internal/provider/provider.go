package provider

import (
    "context"
    "fmt"
    "strings"
    "time"
)

// Quote is one symbol's latest known market data.
type Quote struct {
    Symbol        string    `json:"symbol"`
    Price         float64   `json:"price"`
    Change        float64   `json:"change"`
    ChangePercent float64   `json:"changePercent"`
    PreviousClose *float64  `json:"previousClose,omitempty"`
    ReceivedAt    time.Time `json:"receivedAt"`
}

// Provider fetches one symbol's quote from an upstream market-data source.
//
//go:generate mockgen -package=providermock -destination=providermock/provider.go -source=provider.go Provider
type Provider interface {
    Name() string
    Quote(ctx context.Context, symbol string) (Quote, error)
}

// NormalizeSymbol trims and upper-cases a user supplied ticker.
func NormalizeSymbol(s string) string {
    return strings.ToUpper(strings.TrimSpace(s))
}

// ProviderError reports a failure reaching the provider for one symbol.
type ProviderError struct {
    Provider   string
    Symbol     string
    StatusCode int // 0 when no HTTP response was received
    Err        error
}

func (e *ProviderError) Error() string {
    if e.StatusCode != 0 {
        return fmt.Sprintf("%s: quote %s: status %d: %v", e.Provider, e.Symbol, e.StatusCode, e.Err)
    }
    return fmt.Sprintf("%s: quote %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// InvalidDataError reports that the provider answered but has no usable data
// for the symbol (unknown ticker or no trading data).
type InvalidDataError struct {
    Provider string
    Symbol   string
}

func (e *InvalidDataError) Error() string {
    return fmt.Sprintf("%s: invalid or unavailable data for %s", e.Provider, e.Symbol)
}
