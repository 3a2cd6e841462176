// Package dashboard holds the view-side logic of the stock dashboard: the
// search/sort projection, the ephemeral view state, the load state machine,
// and the chart series handed to the renderer.
package dashboard

import (
	"cmp"
	"slices"
	"strings"

	"stockdash/services/market"
)

// Project filters quotes by a case-insensitive symbol substring and sorts the
// matches by price. Equal prices keep their fetch order in both directions.
// The input slice is never modified.
func Project(quotes []market.Quote, search string, ascending bool) []market.Quote {
	needle := strings.ToUpper(search)

	out := make([]market.Quote, 0, len(quotes))
	for _, q := range quotes {
		if strings.Contains(strings.ToUpper(q.Symbol), needle) {
			out = append(out, q)
		}
	}

	slices.SortStableFunc(out, func(a, b market.Quote) int {
		if ascending {
			return cmp.Compare(a.Price, b.Price)
		}
		return cmp.Compare(b.Price, a.Price)
	})

	return out
}
