package ratelimit

import (
    "context"
    "sync"
    "time"

    "stockdashboard/internal/provider"
)

// TokenBucket admits rate requests per second on average with bursts of up
// to burst. Callers reserve a token up front, so concurrent waiters are
// served in arrival order instead of racing for each refill.
type TokenBucket struct {
    rate  float64
    burst float64

    mu sync.Mutex
    // tokens goes negative while reservations are outstanding.
    tokens float64
    last   time.Time
}

// NewTokenBucket starts full. A non-positive rate admits only the burst.
func NewTokenBucket(tokensPerSecond float64, burst int) *TokenBucket {
    if tokensPerSecond <= 0 { tokensPerSecond = 1e-9 }
    if burst <= 0 { burst = 1 }
    return &TokenBucket{
        rate:   tokensPerSecond,
        burst:  float64(burst),
        tokens: float64(burst),
        last:   time.Now(),
    }
}

func (tb *TokenBucket) refill(now time.Time) {
    if elapsed := now.Sub(tb.last).Seconds(); elapsed > 0 {
        tb.tokens = min(tb.burst, tb.tokens+elapsed*tb.rate)
        tb.last = now
    }
}

// reserve takes a token and returns how long until it is actually available.
func (tb *TokenBucket) reserve() time.Duration {
    tb.mu.Lock()
    defer tb.mu.Unlock()
    tb.refill(time.Now())
    tb.tokens--
    if tb.tokens >= 0 {
        return 0
    }
    return time.Duration(-tb.tokens / tb.rate * float64(time.Second))
}

// release hands back a reservation that will not be used.
func (tb *TokenBucket) release() {
    tb.mu.Lock()
    defer tb.mu.Unlock()
    tb.refill(time.Now())
    tb.tokens = min(tb.burst, tb.tokens+1)
}

// Wait blocks until a token is available. It gives up at once when ctx's
// deadline falls before the token would be.
func (tb *TokenBucket) Wait(ctx context.Context) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    d := tb.reserve()
    if d <= 0 {
        return nil
    }
    if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < d {
        tb.release()
        return context.DeadlineExceeded
    }

    timer := time.NewTimer(d)
    defer timer.Stop()
    select {
    case <-ctx.Done():
        tb.release()
        return ctx.Err()
    case <-timer.C:
        return nil
    }
}

// TokenBucketProvider spends one token per symbol request. Finnhub's free
// tier allows 60 requests per minute, so a full refresh of the default list
// costs 13.
type TokenBucketProvider struct {
    P  provider.Provider
    TB *TokenBucket
}

func (t *TokenBucketProvider) Name() string { return t.P.Name() }

func (t *TokenBucketProvider) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
    if t.TB != nil {
        if err := t.TB.Wait(ctx); err != nil { return provider.Quote{}, err }
    }
    return t.P.Quote(ctx, symbol)
}
