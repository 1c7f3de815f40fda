package quotes_test

import (
    "context"
    "errors"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/require"
    "go.uber.org/mock/gomock"

    "stockdashboard/internal/provider"
    "stockdashboard/internal/provider/providermock"
    "stockdashboard/internal/quotes"
)

func newFetcher(p provider.Provider) *quotes.Fetcher {
    return &quotes.Fetcher{P: p}
}

func symbolsOf(qs []provider.Quote) []string {
    out := make([]string, 0, len(qs))
    for _, q := range qs { out = append(out, q.Symbol) }
    return out
}

func TestFetchOne_NormalizesSymbol(t *testing.T) {
    t.Parallel()

    // Arrange
    ctrl := gomock.NewController(t)
    p := providermock.NewMockProvider(ctrl)
    p.EXPECT().Quote(gomock.Any(), "IBM").Return(provider.Quote{Symbol: "IBM", Price: 180}, nil)

    // Act
    q, err := newFetcher(p).FetchOne(t.Context(), "  ibm ")

    // Assert
    require.NoError(t, err)
    require.Equal(t, "IBM", q.Symbol)
}

func TestFetchOne_EmptySymbol(t *testing.T) {
    t.Parallel()

    ctrl := gomock.NewController(t)
    p := providermock.NewMockProvider(ctrl)

    _, err := newFetcher(p).FetchOne(t.Context(), "   ")
    require.Error(t, err)
}

func TestFetchOne_PropagatesTypedErrors(t *testing.T) {
    t.Parallel()

    // Arrange
    ctrl := gomock.NewController(t)
    p := providermock.NewMockProvider(ctrl)
    p.EXPECT().Quote(gomock.Any(), "ZZZZ").Return(provider.Quote{}, &provider.InvalidDataError{Provider: "mock", Symbol: "ZZZZ"})
    p.EXPECT().Quote(gomock.Any(), "AAPL").Return(provider.Quote{}, &provider.ProviderError{Provider: "mock", Symbol: "AAPL", Err: errors.New("down")})
    f := newFetcher(p)

    // Act + Assert
    _, err := f.FetchOne(t.Context(), "ZZZZ")
    var invalid *provider.InvalidDataError
    require.ErrorAs(t, err, &invalid)

    _, err = f.FetchOne(t.Context(), "AAPL")
    var pe *provider.ProviderError
    require.ErrorAs(t, err, &pe)
}

func TestFetchOneOrNil(t *testing.T) {
    t.Parallel()

    // Arrange
    ctrl := gomock.NewController(t)
    p := providermock.NewMockProvider(ctrl)
    p.EXPECT().Quote(gomock.Any(), "IBM").Return(provider.Quote{Symbol: "IBM", Price: 180}, nil)
    p.EXPECT().Quote(gomock.Any(), "NOPE").Return(provider.Quote{}, &provider.InvalidDataError{Symbol: "NOPE"})
    f := newFetcher(p)

    // Act + Assert
    q, ok := f.FetchOneOrNil(t.Context(), "ibm")
    require.True(t, ok)
    require.Equal(t, "IBM", q.Symbol)

    _, ok = f.FetchOneOrNil(t.Context(), "nope")
    require.False(t, ok)
}

func TestFetchMany_PartialFailureIsSwallowed(t *testing.T) {
    t.Parallel()

    // Arrange: MSFT fails, the others succeed
    ctrl := gomock.NewController(t)
    p := providermock.NewMockProvider(ctrl)
    p.EXPECT().
        Quote(gomock.Any(), gomock.Any()).
        DoAndReturn(func(_ context.Context, symbol string) (provider.Quote, error) {
            if symbol == "MSFT" {
                return provider.Quote{}, &provider.ProviderError{Symbol: symbol, Err: errors.New("timeout")}
            }
            return provider.Quote{Symbol: symbol, Price: 10}, nil
        }).
        Times(3)

    // Act
    got := newFetcher(p).FetchMany(t.Context(), []string{"AAPL", "MSFT", "GOOGL"})

    // Assert: a non-empty subset of the input
    require.ElementsMatch(t, []string{"AAPL", "GOOGL"}, symbolsOf(got))
}

func TestFetchMany_AllFailReturnsEmpty(t *testing.T) {
    t.Parallel()

    // Arrange
    ctrl := gomock.NewController(t)
    p := providermock.NewMockProvider(ctrl)
    p.EXPECT().
        Quote(gomock.Any(), gomock.Any()).
        Return(provider.Quote{}, &provider.ProviderError{Err: errors.New("network down")}).
        Times(2)

    // Act
    got := newFetcher(p).FetchMany(t.Context(), []string{"AAPL", "MSFT"})

    // Assert
    require.Empty(t, got)
}

func TestFetchMany_DeduplicatesAndSkipsBlank(t *testing.T) {
    t.Parallel()

    // Arrange: only one call for AAPL
    ctrl := gomock.NewController(t)
    p := providermock.NewMockProvider(ctrl)
    p.EXPECT().Quote(gomock.Any(), "AAPL").Return(provider.Quote{Symbol: "AAPL", Price: 1}, nil).Times(1)

    // Act
    got := newFetcher(p).FetchMany(t.Context(), []string{"AAPL", " aapl", "", "  "})

    // Assert
    require.Equal(t, []string{"AAPL"}, symbolsOf(got))
}

func TestFetchMany_EmptyInput(t *testing.T) {
    t.Parallel()

    ctrl := gomock.NewController(t)
    p := providermock.NewMockProvider(ctrl)

    require.Empty(t, newFetcher(p).FetchMany(t.Context(), nil))
}

func TestFetchMany_RunsConcurrentlyWithinLimit(t *testing.T) {
    t.Parallel()

    // Arrange: track the peak number of in-flight requests
    var inflight, peak atomic.Int32
    ctrl := gomock.NewController(t)
    p := providermock.NewMockProvider(ctrl)
    p.EXPECT().
        Quote(gomock.Any(), gomock.Any()).
        DoAndReturn(func(_ context.Context, symbol string) (provider.Quote, error) {
            n := inflight.Add(1)
            for {
                cur := peak.Load()
                if n <= cur || peak.CompareAndSwap(cur, n) { break }
            }
            time.Sleep(20 * time.Millisecond)
            inflight.Add(-1)
            return provider.Quote{Symbol: symbol, Price: 1}, nil
        }).
        Times(6)
    f := &quotes.Fetcher{P: p, MaxConcurrency: 3}

    // Act
    got := f.FetchMany(t.Context(), []string{"A", "B", "C", "D", "E", "F"})

    // Assert
    require.Len(t, got, 6)
    require.LessOrEqual(t, peak.Load(), int32(3))
    require.Greater(t, peak.Load(), int32(1))
}
