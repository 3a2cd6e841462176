// Package market provides stock quote sources for the dashboard: the Finnhub
// quote API, a static mock list, and quotes already stored in Postgres.
package market

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNetworkFailure means a quote request could not complete.
	ErrNetworkFailure = errors.New("network failure")
	// ErrMalformedResponse means a response lacked the expected fields.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrDataUnavailable means no symbol in a batch could be loaded.
	ErrDataUnavailable = errors.New("data unavailable")
)

// Quote is one stock's price snapshot for a load cycle
type Quote struct {
	Symbol        string
	Price         float64
	ChangePercent float64
	MarketCap     string    // display only, may be empty
	History       []float64 // oldest first, may be nil
}

// Source supplies quotes for a set of symbols.
//
// Failed symbols are returned as zero-valued records in their original
// position together with a *PartialError. If every symbol fails the result is
// nil and the error wraps ErrDataUnavailable.
type Source interface {
	FetchQuotes(ctx context.Context, symbols []string) ([]Quote, error)
}

// PartialError reports the symbols that fell back to zero values.
type PartialError struct {
	Failed map[string]error
}

func (e *PartialError) Error() string {
	symbols := e.Symbols()
	return fmt.Sprintf("%d symbol(s) unavailable: %s", len(symbols), strings.Join(symbols, ", "))
}

// Symbols returns the failed symbols in sorted order.
func (e *PartialError) Symbols() []string {
	symbols := make([]string, 0, len(e.Failed))
	for s := range e.Failed {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Unwrap exposes the per-symbol causes to errors.Is and errors.As.
func (e *PartialError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, s := range e.Symbols() {
		errs = append(errs, e.Failed[s])
	}
	return errs
}

// assemble applies the per-symbol fallback policy to a finished batch.
// quotes and errs are index-aligned with symbols.
func assemble(symbols []string, quotes []Quote, errs []error) ([]Quote, error) {
	failed := make(map[string]error)
	var first error

	for i, sym := range symbols {
		if errs[i] == nil {
			continue
		}
		failed[sym] = errs[i]
		quotes[i] = Quote{Symbol: sym}
		if first == nil {
			first = errs[i]
		}
	}

	switch {
	case len(failed) == 0:
		return quotes, nil
	case len(failed) == len(symbols):
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, first)
	default:
		return quotes, &PartialError{Failed: failed}
	}
}
