package dashboard

import (
	"slices"

	"stockdashboard/internal/provider"
)

// trackedSet is the symbol list plus the latest quote of each symbol that has
// one. Values are never mutated after construction; changes build a new set.
type trackedSet struct {
	symbols []string
	quotes  map[string]provider.Quote
}

func newTrackedSet(symbols []string, quotes []provider.Quote) trackedSet {
	s := trackedSet{quotes: make(map[string]provider.Quote, len(quotes))}
	for _, raw := range symbols {
		sym := provider.NormalizeSymbol(raw)
		if sym == "" || slices.Contains(s.symbols, sym) {
			continue
		}
		s.symbols = append(s.symbols, sym)
	}
	for _, q := range quotes {
		if slices.Contains(s.symbols, q.Symbol) {
			s.quotes[q.Symbol] = q
		}
	}
	return s
}

// has reports whether sym currently has a quote.
func (s trackedSet) has(sym string) bool {
	_, ok := s.quotes[sym]
	return ok
}

func (s trackedSet) get(sym string) (provider.Quote, bool) {
	q, ok := s.quotes[sym]
	return q, ok
}

// list returns the quoted symbols in tracking order.
func (s trackedSet) list() []provider.Quote {
	out := make([]provider.Quote, 0, len(s.quotes))
	for _, sym := range s.symbols {
		if q, ok := s.quotes[sym]; ok {
			out = append(out, q)
		}
	}
	return out
}

// with returns a copy holding q, appending its symbol if it was not tracked.
func (s trackedSet) with(q provider.Quote) trackedSet {
	next := trackedSet{
		symbols: slices.Clone(s.symbols),
		quotes:  make(map[string]provider.Quote, len(s.quotes)+1),
	}
	for k, v := range s.quotes {
		next.quotes[k] = v
	}
	if !slices.Contains(next.symbols, q.Symbol) {
		next.symbols = append(next.symbols, q.Symbol)
	}
	next.quotes[q.Symbol] = q
	return next
}

// without returns a copy with sym dropped. Absent symbols are fine.
func (s trackedSet) without(sym string) trackedSet {
	next := trackedSet{
		symbols: make([]string, 0, len(s.symbols)),
		quotes:  make(map[string]provider.Quote, len(s.quotes)),
	}
	for _, v := range s.symbols {
		if v != sym {
			next.symbols = append(next.symbols, v)
		}
	}
	for k, v := range s.quotes {
		if k != sym {
			next.quotes[k] = v
		}
	}
	return next
}
