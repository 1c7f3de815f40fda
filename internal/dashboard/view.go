package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"stockdashboard/internal/provider"
)

// SortField names the column the view is ordered by.
type SortField string

const (
	SortBySymbol        SortField = "symbol"
	SortByPrice         SortField = "price"
	SortByChangePercent SortField = "changePercent"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ParseSortField accepts the field names used by the API.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.TrimSpace(s)); f {
	case SortBySymbol, SortByPrice, SortByChangePercent:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

func (d SortDirection) flip() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// Filter keeps quotes whose symbol contains query, case-insensitively.
// A blank query keeps everything. The input is not modified.
func Filter(quotes []provider.Quote, query string) []provider.Quote {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]provider.Quote, 0, len(quotes))
	for _, quote := range quotes {
		if q == "" || strings.Contains(strings.ToLower(quote.Symbol), q) {
			out = append(out, quote)
		}
	}
	return out
}

// Sort orders quotes in place. Ties keep their input order.
func Sort(quotes []provider.Quote, field SortField, dir SortDirection) {
	less := func(a, b provider.Quote) int {
		switch field {
		case SortByPrice:
			return compareFloat(a.Price, b.Price)
		case SortByChangePercent:
			return compareFloat(a.ChangePercent, b.ChangePercent)
		default:
			return strings.Compare(a.Symbol, b.Symbol)
		}
	}
	sort.SliceStable(quotes, func(i, j int) bool {
		c := less(quotes[i], quotes[j])
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
}

// Derive filters then sorts, returning a new slice.
func Derive(quotes []provider.Quote, query string, field SortField, dir SortDirection) []provider.Quote {
	out := Filter(quotes, query)
	Sort(out, field, dir)
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Row is one displayed quote with its numbers already formatted.
type Row struct {
	provider.Quote
	PriceText         string `json:"priceText"`
	ChangeText        string `json:"changeText"`
	ChangePercentText string `json:"changePercentText"`
	PreviousCloseText string `json:"previousCloseText,omitempty"`
	Gain              bool   `json:"gain"`
}

func NewRow(q provider.Quote) Row {
	r := Row{
		Quote:             q,
		PriceText:         FormatPrice(q.Price),
		ChangeText:        FormatChange(q.Change),
		ChangePercentText: FormatPercent(q.ChangePercent),
		Gain:              q.ChangePercent >= 0,
	}
	if q.PreviousClose != nil {
		r.PreviousCloseText = FormatPrice(*q.PreviousClose)
	}
	return r
}

// View is a snapshot of everything a dashboard UI renders.
type View struct {
	Quotes        []Row         `json:"quotes"`
	Error         string        `json:"error,omitempty"`
	Loading       bool          `json:"loading"`
	Adding        bool          `json:"adding"`
	AutoRefresh   bool          `json:"autoRefresh"`
	Search        string        `json:"search"`
	SortField     SortField     `json:"sortField"`
	SortDirection SortDirection `json:"sortDirection"`
	Selected      *Row          `json:"selected,omitempty"`
	Tracked       int           `json:"tracked"`
	UpdatedAt     time.Time     `json:"updatedAt,omitzero"`
	PriceChart    []Bar         `json:"priceChart"`
	ChangeChart   []Bar         `json:"changeChart"`
}

// Symbols lists the displayed symbols in order.
func (v View) Symbols() []string {
	out := make([]string, 0, len(v.Quotes))
	for _, r := range v.Quotes {
		out = append(out, r.Symbol)
	}
	return out
}
