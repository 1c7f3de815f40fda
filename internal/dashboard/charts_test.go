package dashboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"stockdashboard/internal/provider"
)

func barSymbols(bars []Bar) []string {
	out := make([]string, 0, len(bars))
	for _, b := range bars {
		out = append(out, b.Symbol)
	}
	return out
}

func TestPriceChart_TopEightAscending(t *testing.T) {
	t.Parallel()

	// Arrange: ten quotes priced 10..100
	var in []provider.Quote
	for i := 1; i <= 10; i++ {
		in = append(in, provider.Quote{Symbol: fmt.Sprintf("S%02d", i), Price: float64(i * 10)})
	}

	// Act
	bars := PriceChart(in, "S05")

	// Assert: the two cheapest are dropped, the rest listed lowest first
	require.Equal(t, []string{"S03", "S04", "S05", "S06", "S07", "S08", "S09", "S10"}, barSymbols(bars))
	require.Equal(t, 30.0, bars[0].Value)
	require.Equal(t, "$30.00", bars[0].Label)
	for _, b := range bars {
		require.Equal(t, b.Symbol == "S05", b.Highlighted, b.Symbol)
	}
}

func TestPriceChart_NoSelection(t *testing.T) {
	t.Parallel()

	bars := PriceChart([]provider.Quote{{Symbol: "A", Price: 2}, {Symbol: "B", Price: 1}}, "")
	require.Equal(t, []string{"B", "A"}, barSymbols(bars))
	for _, b := range bars {
		require.False(t, b.Highlighted)
	}
	require.Empty(t, PriceChart(nil, ""))
}

func TestChangeChart_BestFirst(t *testing.T) {
	t.Parallel()

	in := []provider.Quote{
		{Symbol: "AAPL", ChangePercent: 1.5},
		{Symbol: "MSFT", ChangePercent: -0.5},
		{Symbol: "NVDA", ChangePercent: 3.25},
		{Symbol: "FLAT", ChangePercent: 0},
	}

	bars := ChangeChart(in)

	require.Equal(t, []string{"NVDA", "AAPL", "FLAT", "MSFT"}, barSymbols(bars))
	require.True(t, bars[0].Gain)
	require.True(t, bars[2].Gain)
	require.False(t, bars[3].Gain)
	require.Equal(t, "-0.50%", bars[3].Label)
	// input order is preserved
	require.Equal(t, "AAPL", in[0].Symbol)
}
