package ratelimit

import (
    "context"
    "sync"
    "time"

    "stockdashboard/internal/provider"
)

// MinInterval wraps a provider and enforces a minimum time between request starts.
// Concurrent calls are spaced Interval apart, or return early if the context is canceled.
type MinInterval struct {
    P           provider.Provider
    Interval    time.Duration
    mu          sync.Mutex
    last        time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
    if m.Interval > 0 {
        // reserve the next slot so concurrent callers queue up behind each other
        m.mu.Lock()
        now := time.Now()
        slot := m.last.Add(m.Interval)
        if slot.Before(now) { slot = now }
        m.last = slot
        m.mu.Unlock()
        if wait := time.Until(slot); wait > 0 {
            t := time.NewTimer(wait)
            defer t.Stop()
            select {
            case <-ctx.Done():
                return provider.Quote{}, ctx.Err()
            case <-t.C:
            }
        }
    }
    return m.P.Quote(ctx, symbol)
}

