package dashboard

import (
	"sort"

	"stockdashboard/internal/provider"
)

// priceChartSize is how many of the highest priced symbols the price chart shows.
const priceChartSize = 8

// Bar is one data point of a chart series.
type Bar struct {
	Symbol      string  `json:"symbol"`
	Value       float64 `json:"value"`
	Label       string  `json:"label"`
	Highlighted bool    `json:"highlighted,omitempty"`
	Gain        bool    `json:"gain"`
}

// PriceChart returns the eight highest priced quotes, lowest first, with
// the selected symbol highlighted.
func PriceChart(quotes []provider.Quote, selected string) []Bar {
	top := append([]provider.Quote(nil), quotes...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Price > top[j].Price })
	if len(top) > priceChartSize {
		top = top[:priceChartSize]
	}
	out := make([]Bar, 0, len(top))
	for i := len(top) - 1; i >= 0; i-- {
		q := top[i]
		out = append(out, Bar{
			Symbol:      q.Symbol,
			Value:       q.Price,
			Label:       FormatPrice(q.Price),
			Highlighted: selected != "" && q.Symbol == selected,
			Gain:        q.ChangePercent >= 0,
		})
	}
	return out
}

// ChangeChart returns every quote ordered by change percent, best first.
func ChangeChart(quotes []provider.Quote) []Bar {
	sorted := append([]provider.Quote(nil), quotes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ChangePercent > sorted[j].ChangePercent })
	out := make([]Bar, 0, len(sorted))
	for _, q := range sorted {
		out = append(out, Bar{
			Symbol: q.Symbol,
			Value:  q.ChangePercent,
			Label:  FormatPercent(q.ChangePercent),
			Gain:   q.ChangePercent >= 0,
		})
	}
	return out
}
