package market

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// mockQuotes is the simulated market used when no live source is configured.
var mockQuotes = []Quote{
	{Symbol: "AAPL", Price: 175.43, ChangePercent: 2.1, MarketCap: "2.8T"},
	{Symbol: "MSFT", Price: 338.11, ChangePercent: -0.8, MarketCap: "2.5T"},
	{Symbol: "GOOGL", Price: 125.37, ChangePercent: 1.5, MarketCap: "1.6T"},
	{Symbol: "AMZN", Price: 127.74, ChangePercent: -1.2, MarketCap: "1.3T"},
	{Symbol: "NVDA", Price: 456.68, ChangePercent: 3.4, MarketCap: "1.1T"},
	{Symbol: "META", Price: 298.67, ChangePercent: 0.6, MarketCap: "765B"},
	{Symbol: "TSLA", Price: 248.5, ChangePercent: -2.7, MarketCap: "789B"},
	{Symbol: "NFLX", Price: 411.63, ChangePercent: 0.0, MarketCap: "182B"},
}

// MockSource serves a fixed quote list after an artificial delay
type MockSource struct {
	Delay         time.Duration
	HistoryLength int
}

// NewMockSource creates a mock source
func NewMockSource(delay time.Duration, historyLength int) *MockSource {
	return &MockSource{Delay: delay, HistoryLength: historyLength}
}

// MockSymbols lists the symbols the mock source knows about.
func MockSymbols() []string {
	symbols := make([]string, len(mockQuotes))
	for i, q := range mockQuotes {
		symbols[i] = q.Symbol
	}
	return symbols
}

// FetchQuotes waits for the configured delay, then returns the requested
// symbols from the mock list. No symbols means the whole list.
func (m *MockSource) FetchQuotes(ctx context.Context, symbols []string) ([]Quote, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if len(symbols) == 0 {
		symbols = MockSymbols()
	}

	bySymbol := make(map[string]Quote, len(mockQuotes))
	for _, q := range mockQuotes {
		bySymbol[q.Symbol] = q
	}

	quotes := make([]Quote, len(symbols))
	errs := make([]error, len(symbols))
	for i, sym := range symbols {
		q, ok := bySymbol[sym]
		if !ok {
			errs[i] = fmt.Errorf("%w: %s: unknown mock symbol", ErrMalformedResponse, sym)
			continue
		}
		q.History = mockHistory(q, m.HistoryLength)
		quotes[i] = q
	}

	log.Debug().Int("symbols", len(symbols)).Dur("delay", m.Delay).Msg("Served mock quotes")
	return assemble(symbols, quotes, errs)
}

// mockHistory draws a deterministic wave ending at the current price whose
// overall drift matches the change percent.
func mockHistory(q Quote, n int) []float64 {
	if n <= 0 || q.Price == 0 {
		return nil
	}

	start := q.Price / (1 + q.ChangePercent/100)
	history := make([]float64, n)
	for i := range history {
		t := 1.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		wobble := math.Sin(float64(i)+float64(len(q.Symbol))) * q.Price * 0.005 * (1 - t)
		history[i] = start + (q.Price-start)*t + wobble
	}
	return history
}
