package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/services/dashboard"
	"stockdash/services/market"
)

// blockingSource parks every fetch until its context ends.
type blockingSource struct {
	started chan struct{}
}

func (s *blockingSource) FetchQuotes(ctx context.Context, symbols []string) ([]market.Quote, error) {
	s.started <- struct{}{}
	<-ctx.Done()
	return nil, ctx.Err()
}

type failingSource struct{}

func (failingSource) FetchQuotes(ctx context.Context, symbols []string) ([]market.Quote, error) {
	return nil, fmt.Errorf("%w: %w", market.ErrDataUnavailable, market.ErrNetworkFailure)
}

var testSymbols = []string{"AAPL", "MSFT", "GOOGL"}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

// loaded returns a model whose first load cycle completed from the mock source.
func loaded(t *testing.T) model {
	t.Helper()
	m := newModel(context.Background(), market.NewMockSource(0, 10), testSymbols, 0)

	quotes, err := m.source.FetchQuotes(context.Background(), testSymbols)
	require.NoError(t, err)
	return press(t, m, quotesMsg{cycle: m.cycle, quotes: quotes})
}

func firstSymbols(m model) []string {
	var out []string
	for _, r := range m.table.Rows() {
		out = append(out, r[0])
	}
	return out
}

func TestModel_StartsLoading(t *testing.T) {
	m := newModel(context.Background(), market.NewMockSource(0, 10), testSymbols, 0)

	assert.IsType(t, dashboard.Loading{}, m.load)
	assert.Equal(t, 1, m.cycle)
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "Loading quotes")
}

func TestModel_ReadyTable(t *testing.T) {
	m := loaded(t)

	require.IsType(t, dashboard.Ready{}, m.load)
	assert.Equal(t, []string{"GOOGL", "AAPL", "MSFT"}, firstSymbols(m))

	m = press(t, m, key("s"))
	assert.False(t, m.view.SortAscending)
	assert.Equal(t, []string{"MSFT", "AAPL", "GOOGL"}, firstSymbols(m))

	m = press(t, m, key("s"))
	assert.Equal(t, []string{"GOOGL", "AAPL", "MSFT"}, firstSymbols(m))
}

func TestModel_Search(t *testing.T) {
	m := loaded(t)

	m = press(t, m, key("/"))
	require.True(t, m.search.Focused())

	m = press(t, m, key("a"), key("a"))
	assert.Equal(t, "aa", m.view.SearchText)
	assert.Equal(t, []string{"AAPL"}, firstSymbols(m))

	// keys typed into the search box are not shortcuts
	m = press(t, m, key("s"))
	assert.True(t, m.view.SortAscending)
	assert.Empty(t, firstSymbols(m))
	assert.Contains(t, m.View(), "No stocks found")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.search.Focused())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", m.view.SearchText)
	assert.Len(t, firstSymbols(m), 3)
}

func TestModel_ChartsIgnoreSearch(t *testing.T) {
	m := loaded(t)
	m.view.SetSearch("ZZZ")
	m.syncTable()

	m = press(t, m, key("v"))
	require.Equal(t, dashboard.ModeCharts, m.view.Mode)

	view := m.View()
	assert.Contains(t, view, "Price by symbol")
	assert.Contains(t, view, "MSFT")
	assert.Contains(t, view, "Gainers vs losers")
	assert.NotContains(t, view, "No stocks found")
}

func TestModel_Failed(t *testing.T) {
	m := newModel(context.Background(), failingSource{}, testSymbols, 0)
	quotes, err := m.source.FetchQuotes(context.Background(), testSymbols)
	m = press(t, m, quotesMsg{cycle: m.cycle, quotes: quotes, err: err})

	require.IsType(t, dashboard.Failed{}, m.load)
	assert.Contains(t, m.View(), "Data unavailable")
}

func TestModel_PartialWarning(t *testing.T) {
	m := newModel(context.Background(), market.NewMockSource(0, 10), []string{"AAPL", "ZZZZ"}, 0)
	quotes, err := m.source.FetchQuotes(context.Background(), m.symbols)
	m = press(t, m, quotesMsg{cycle: m.cycle, quotes: quotes, err: err})

	ready, ok := m.load.(dashboard.Ready)
	require.True(t, ok)
	require.NotNil(t, ready.Warning)
	assert.Len(t, m.table.Rows(), 2)
	assert.Contains(t, m.View(), "Unavailable: ZZZZ")
}

func TestModel_RefreshDropsStaleResult(t *testing.T) {
	m := loaded(t)
	quotes := m.load.(dashboard.Ready).Quotes

	m = press(t, m, key("r"))
	require.Equal(t, 2, m.cycle)
	require.IsType(t, dashboard.Loading{}, m.load)

	m = press(t, m, quotesMsg{cycle: 1, quotes: quotes})
	assert.IsType(t, dashboard.Loading{}, m.load, "result of the abandoned cycle must be ignored")

	m = press(t, m, quotesMsg{cycle: 2, quotes: quotes})
	assert.IsType(t, dashboard.Ready{}, m.load)
}

func TestModel_QuitCancelsInFlightLoad(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}, 1)}
	m := newModel(context.Background(), src, testSymbols, 0)

	batch, ok := m.Init()().(tea.BatchMsg)
	require.True(t, ok)

	results := make(chan tea.Msg, 1)
	go func() { results <- batch[0]() }()
	<-src.started

	next, cmd := m.Update(key("q"))
	m = next.(model)
	require.NotNil(t, cmd)

	select {
	case msg := <-results:
		qm, ok := msg.(quotesMsg)
		require.True(t, ok)
		assert.True(t, errors.Is(qm.err, context.Canceled))

		m = press(t, m, qm)
		assert.IsType(t, dashboard.Loading{}, m.load, "cancelled load must not touch state")
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not cancelled")
	}
}

func TestModel_AutoRefresh(t *testing.T) {
	m := newModel(context.Background(), market.NewMockSource(0, 10), testSymbols, time.Minute)
	quotes, _ := m.source.FetchQuotes(context.Background(), testSymbols)

	next, cmd := m.Update(quotesMsg{cycle: m.cycle, quotes: quotes})
	m = next.(model)
	assert.NotNil(t, cmd, "a refresh tick should be scheduled")

	m = press(t, m, tickMsg{cycle: 0})
	assert.Equal(t, 1, m.cycle, "stale tick is ignored")

	m = press(t, m, tickMsg{cycle: 1})
	assert.Equal(t, 2, m.cycle)
	assert.IsType(t, dashboard.Loading{}, m.load)
}

func TestQuoteRow_ChangeMarkers(t *testing.T) {
	up := quoteRow(market.Quote{Symbol: "AAPL", Price: 175.43, ChangePercent: 2.1, MarketCap: "2.8T"})
	assert.Equal(t, "$175.43", up[1])
	assert.Equal(t, "▲ 2.10%", up[2])
	assert.Equal(t, "2.8T", up[3])

	flat := quoteRow(market.Quote{Symbol: "NFLX"})
	assert.Equal(t, "▲ 0.00%", flat[2])
	assert.Equal(t, "-", flat[3])

	down := quoteRow(market.Quote{Symbol: "MSFT", ChangePercent: -0.8})
	assert.Equal(t, "▼ -0.80%", down[2])
}
