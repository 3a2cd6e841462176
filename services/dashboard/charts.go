package dashboard

import (
	"fmt"

	"stockdash/services/market"
)

// Colors shared by the table and the charts.
const (
	ColorGain = "#00C853"
	ColorLoss = "#FF1744"
	ColorLine = "#4BC0C0"
)

// BarSeries is one bar per label.
type BarSeries struct {
	Title  string
	Labels []string
	Values []float64
	Colors []string
}

// DonutSeries is a set of slices of a whole.
type DonutSeries struct {
	Title  string
	Labels []string
	Values []int
	Colors []string
}

// Total sums every slice.
func (d DonutSeries) Total() int {
	total := 0
	for _, v := range d.Values {
		total += v
	}
	return total
}

// LineSeries is a single labelled line.
type LineSeries struct {
	Label  string
	Labels []string
	Values []float64
	Color  string
}

// ChangeColor picks the gain or loss color. Flat counts as a gain.
func ChangeColor(changePercent float64) string {
	if changePercent >= 0 {
		return ColorGain
	}
	return ColorLoss
}

// PriceBars builds the price-per-symbol bar chart in quote order.
func PriceBars(quotes []market.Quote) BarSeries {
	s := BarSeries{
		Title:  "Price by symbol",
		Labels: make([]string, len(quotes)),
		Values: make([]float64, len(quotes)),
		Colors: make([]string, len(quotes)),
	}
	for i, q := range quotes {
		s.Labels[i] = q.Symbol
		s.Values[i] = q.Price
		s.Colors[i] = ChangeColor(q.ChangePercent)
	}
	return s
}

// MoverDonut counts gainers (change >= 0) against losers.
func MoverDonut(quotes []market.Quote) DonutSeries {
	var gainers, losers int
	for _, q := range quotes {
		if q.ChangePercent >= 0 {
			gainers++
		} else {
			losers++
		}
	}
	return DonutSeries{
		Title:  "Gainers vs losers",
		Labels: []string{"Gainers", "Losers"},
		Values: []int{gainers, losers},
		Colors: []string{ColorGain, ColorLoss},
	}
}

// Sparkline labels a quote's history T-n … T-1, oldest first.
func Sparkline(q market.Quote) LineSeries {
	s := LineSeries{
		Label:  q.Symbol,
		Labels: make([]string, len(q.History)),
		Values: append([]float64(nil), q.History...),
		Color:  ColorLine,
	}
	for i := range q.History {
		s.Labels[i] = fmt.Sprintf("T-%d", len(q.History)-i)
	}
	return s
}

// Charts is the aggregate chart view of a load cycle.
type Charts struct {
	Prices BarSeries
	Movers DonutSeries
}

// BuildCharts summarises the full, unfiltered quote set. Search and sort only
// shape the table.
func BuildCharts(quotes []market.Quote) Charts {
	return Charts{
		Prices: PriceBars(quotes),
		Movers: MoverDonut(quotes),
	}
}
