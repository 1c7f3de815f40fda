package dashboard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stockdashboard/internal/provider"
)

func symbols(qs []provider.Quote) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Symbol)
	}
	return out
}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	t.Parallel()

	in := []provider.Quote{{Symbol: "AAPL"}, {Symbol: "MSFT"}}

	require.Equal(t, []string{"AAPL"}, symbols(Filter(in, "a")))
	require.Equal(t, []string{"MSFT"}, symbols(Filter(in, " sf ")))
	require.Equal(t, []string{"AAPL", "MSFT"}, symbols(Filter(in, "")))
	require.Empty(t, Filter(in, "xyz"))
	// input untouched
	require.Len(t, in, 2)
}

func TestSort_ChangePercentScenario(t *testing.T) {
	t.Parallel()

	// Arrange
	in := []provider.Quote{
		{Symbol: "AAPL", Price: 150, ChangePercent: 1.5},
		{Symbol: "MSFT", Price: 300, ChangePercent: -0.5},
	}

	// Act + Assert
	require.Equal(t, []string{"MSFT", "AAPL"}, symbols(Derive(in, "", SortByChangePercent, Ascending)))
	require.Equal(t, []string{"AAPL", "MSFT"}, symbols(Derive(in, "", SortByChangePercent, Descending)))
	require.Equal(t, []string{"AAPL", "MSFT"}, symbols(Derive(in, "", SortByPrice, Ascending)))
	require.Equal(t, []string{"MSFT", "AAPL"}, symbols(Derive(in, "", SortBySymbol, Descending)))
}

func TestSort_StableOnTies(t *testing.T) {
	t.Parallel()

	in := []provider.Quote{
		{Symbol: "B", Price: 10},
		{Symbol: "A", Price: 10},
		{Symbol: "C", Price: 5},
	}
	Sort(in, SortByPrice, Ascending)
	require.Equal(t, []string{"C", "B", "A"}, symbols(in))

	Sort(in, SortByPrice, Descending)
	require.Equal(t, []string{"B", "A", "C"}, symbols(in))
}

func TestParseSortField(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"symbol", "price", "changePercent"} {
		f, err := ParseSortField(s)
		require.NoError(t, err)
		require.Equal(t, SortField(s), f)
	}
	_, err := ParseSortField("volume")
	require.Error(t, err)
}

func TestNewRow_FormatsNumbers(t *testing.T) {
	t.Parallel()

	pc := 1233.3
	r := NewRow(provider.Quote{Symbol: "X", Price: 1234.5, Change: 1.2, ChangePercent: 0.0973, PreviousClose: &pc})

	require.Equal(t, "$1,234.50", r.PriceText)
	require.Equal(t, "+$1.20", r.ChangeText)
	require.Equal(t, "+0.10%", r.ChangePercentText)
	require.Equal(t, "$1,233.30", r.PreviousCloseText)
	require.True(t, r.Gain)

	r = NewRow(provider.Quote{Symbol: "Y", Price: 10, Change: -0.4, ChangePercent: -3.8})
	require.Empty(t, r.PreviousCloseText)
	require.False(t, r.Gain)
}
