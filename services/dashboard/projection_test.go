package dashboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"stockdash/services/market"
)

func sampleQuotes() []market.Quote {
	return []market.Quote{
		{Symbol: "AAPL", Price: 175.43, ChangePercent: 2.1},
		{Symbol: "MSFT", Price: 338.11, ChangePercent: -0.8},
		{Symbol: "GOOGL", Price: 125.37, ChangePercent: 1.5},
	}
}

func symbols(quotes []market.Quote) []string {
	out := make([]string, len(quotes))
	for i, q := range quotes {
		out[i] = q.Symbol
	}
	return out
}

func TestProject_Sort(t *testing.T) {
	q := sampleQuotes()

	assert.Equal(t, []string{"GOOGL", "AAPL", "MSFT"}, symbols(Project(q, "", true)))
	assert.Equal(t, []string{"MSFT", "AAPL", "GOOGL"}, symbols(Project(q, "", false)))
}

func TestProject_Filter(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"empty matches all", "", []string{"GOOGL", "AAPL", "MSFT"}},
		{"prefix", "AA", []string{"AAPL"}},
		{"lower case", "aa", []string{"AAPL"}},
		{"mixed case infix", "oOg", []string{"GOOGL"}},
		{"shared letter", "L", []string{"GOOGL", "AAPL"}},
		{"no match", "ZZZ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(sampleQuotes(), tt.search, true)
			assert.Equal(t, tt.want, symbols(got))
		})
	}
}

func TestProject_EmptyResultIsNotNil(t *testing.T) {
	got := Project(sampleQuotes(), "ZZZ", true)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProject_StableOnTies(t *testing.T) {
	q := []market.Quote{
		{Symbol: "B", Price: 10},
		{Symbol: "A", Price: 5},
		{Symbol: "C", Price: 10},
		{Symbol: "D", Price: 10},
	}

	assert.Equal(t, []string{"A", "B", "C", "D"}, symbols(Project(q, "", true)))
	assert.Equal(t, []string{"B", "C", "D", "A"}, symbols(Project(q, "", false)))
}

func TestProject_SubsetAndPure(t *testing.T) {
	q := []market.Quote{
		{Symbol: "NVDA", Price: 456.68},
		{Symbol: "AMD", Price: 101.2},
		{Symbol: "AMZN", Price: 127.74},
		{Symbol: "TSLA", Price: 248.5},
		{Symbol: "ZERO", Price: 0, ChangePercent: 3},
	}
	original := append([]market.Quote(nil), q...)

	for _, search := range []string{"", "a", "AM", "n", "x", "ZERO"} {
		for _, asc := range []bool{true, false} {
			first := Project(q, search, asc)
			second := Project(q, search, asc)

			assert.Equal(t, first, second, "idempotent for %q/%v", search, asc)
			for _, r := range first {
				assert.Contains(t, strings.ToUpper(r.Symbol), strings.ToUpper(search))
				assert.Contains(t, q, r)
			}
			for i := 1; i < len(first); i++ {
				if asc {
					assert.LessOrEqual(t, first[i-1].Price, first[i].Price)
				} else {
					assert.GreaterOrEqual(t, first[i-1].Price, first[i].Price)
				}
			}
		}
	}

	assert.Equal(t, original, q, "input must not be reordered")
}

func TestProject_ToggleTwiceRestoresOrder(t *testing.T) {
	view := DefaultViewState()
	q := sampleQuotes()

	before := Project(q, view.SearchText, view.SortAscending)
	view.ToggleSort()
	assert.NotEqual(t, before, Project(q, view.SearchText, view.SortAscending))
	view.ToggleSort()
	assert.Equal(t, before, Project(q, view.SearchText, view.SortAscending))
}
