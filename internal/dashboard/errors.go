package dashboard

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a controller after Close.
	ErrClosed = errors.New("dashboard: controller closed")
	// ErrNotTracked is returned when selecting a symbol that has no quote.
	ErrNotTracked = errors.New("dashboard: symbol not tracked")
)

// DuplicateSymbolError is returned by AddSymbol for a symbol already shown.
type DuplicateSymbolError struct{ Symbol string }

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("%s is already in the list.", e.Symbol)
}

// FetchFailedError is returned by AddSymbol when the quote could not be
// fetched. Provider and no-data failures are deliberately not distinguished.
type FetchFailedError struct{ Symbol string }

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("Failed to fetch data for %s", e.Symbol)
}

// EmptyResultError is returned by Refresh when no tracked symbol produced a
// quote. The previous tracked set is kept.
type EmptyResultError struct{ Requested int }

func (e *EmptyResultError) Error() string {
	return "No stock data available. Please check your API key."
}
