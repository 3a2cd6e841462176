package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/services/market"
)

func TestRunSnapshot_Table(t *testing.T) {
	var out bytes.Buffer
	src := market.NewMockSource(0, 10)

	err := runSnapshot(context.Background(), &out, src, testSymbols, snapshotOptions{})
	require.NoError(t, err)

	text := out.String()
	googl := strings.Index(text, "GOOGL")
	aapl := strings.Index(text, "AAPL")
	msft := strings.Index(text, "MSFT")
	require.True(t, googl >= 0 && aapl >= 0 && msft >= 0, "all symbols printed:\n%s", text)
	assert.Less(t, googl, aapl)
	assert.Less(t, aapl, msft)
	assert.Contains(t, text, "$175.43")
	assert.Contains(t, text, "Price ↑")
	assert.Contains(t, text, "Trend T-10…T-1")
}

func TestSnapshotTable_TrendSpan(t *testing.T) {
	rows := []market.Quote{
		{Symbol: "AAPL", Price: 3, History: []float64{1, 2, 3}},
		{Symbol: "MSFT"},
	}

	text := snapshotTable(rows, true)
	assert.Contains(t, text, "Trend T-3…T-1")
	assert.Contains(t, text, "▁▄█")

	text = snapshotTable([]market.Quote{{Symbol: "MSFT"}}, true)
	assert.Contains(t, text, "Trend")
	assert.NotContains(t, text, "T-1")
}

func TestRunSnapshot_SearchDescending(t *testing.T) {
	var out bytes.Buffer
	src := market.NewMockSource(0, 10)

	err := runSnapshot(context.Background(), &out, src, []string{"AAPL", "AMZN", "MSFT"}, snapshotOptions{search: "a", desc: true})
	require.NoError(t, err)

	text := out.String()
	assert.NotContains(t, text, "MSFT")
	assert.Less(t, strings.Index(text, "AAPL"), strings.Index(text, "AMZN"))
	assert.Contains(t, text, "Price ↓")
}

func TestRunSnapshot_NoMatch(t *testing.T) {
	var out bytes.Buffer

	err := runSnapshot(context.Background(), &out, market.NewMockSource(0, 10), testSymbols, snapshotOptions{search: "ZZZ"})
	require.NoError(t, err)
	assert.Equal(t, "No stocks found\n", out.String())
}

func TestRunSnapshot_Charts(t *testing.T) {
	var out bytes.Buffer

	err := runSnapshot(context.Background(), &out, market.NewMockSource(0, 10), testSymbols, snapshotOptions{search: "ZZZ", charts: true})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Price by symbol")
	assert.Contains(t, out.String(), "Gainers 2")
	assert.Contains(t, out.String(), "Losers 1")
}

func TestRunSnapshot_Unavailable(t *testing.T) {
	var out bytes.Buffer

	err := runSnapshot(context.Background(), &out, failingSource{}, testSymbols, snapshotOptions{})
	assert.ErrorIs(t, err, market.ErrDataUnavailable)
	assert.Empty(t, out.String())
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "stockdash dev")
}
