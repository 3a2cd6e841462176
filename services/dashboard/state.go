package dashboard

import (
	"errors"

	"stockdash/services/market"
)

// ViewMode selects the table or the chart representation.
type ViewMode int

// View modes.
const (
	ModeTable ViewMode = iota
	ModeCharts
)

// String returns the lower-case mode name.
func (m ViewMode) String() string {
	if m == ModeCharts {
		return "charts"
	}
	return "table"
}

// ViewState is the user-controlled part of the dashboard. Every field can be
// set independently at any time.
type ViewState struct {
	SearchText    string
	SortAscending bool
	Mode          ViewMode
}

// DefaultViewState shows every symbol in a table, cheapest first.
func DefaultViewState() ViewState {
	return ViewState{SortAscending: true, Mode: ModeTable}
}

// SetSearch replaces the symbol filter.
func (v *ViewState) SetSearch(s string) { v.SearchText = s }

// SetSortAscending sets the price sort direction.
func (v *ViewState) SetSortAscending(asc bool) { v.SortAscending = asc }

// ToggleSort reverses the price sort direction.
func (v *ViewState) ToggleSort() { v.SortAscending = !v.SortAscending }

// SetMode switches to the given view.
func (v *ViewState) SetMode(mode ViewMode) { v.Mode = mode }

// ToggleMode flips between table and charts.
func (v *ViewState) ToggleMode() {
	if v.Mode == ModeTable {
		v.Mode = ModeCharts
	} else {
		v.Mode = ModeTable
	}
}

// LoadState is one of Loading, Failed or Ready.
type LoadState interface {
	loadState()
}

// Loading is the entry state of every load cycle.
type Loading struct{}

// Failed means the load cycle produced no data.
type Failed struct {
	Err error
}

// Ready carries the full quote set of a completed load cycle. Warning is set
// when some symbols fell back to zero values.
type Ready struct {
	Quotes  []market.Quote
	Warning *market.PartialError
}

func (Loading) loadState() {}
func (Failed) loadState() {}
func (Ready) loadState() {}

// Resolve maps the outcome of a load cycle to its final state.
func Resolve(quotes []market.Quote, err error) LoadState {
	if err == nil {
		return Ready{Quotes: quotes}
	}

	var partial *market.PartialError
	if errors.As(err, &partial) && quotes != nil {
		return Ready{Quotes: quotes, Warning: partial}
	}

	return Failed{Err: err}
}

// Rows is the table projection for the current state, or nil when the load
// cycle has not produced data.
func Rows(load LoadState, view ViewState) []market.Quote {
	ready, ok := load.(Ready)
	if !ok {
		return nil
	}
	return Project(ready.Quotes, view.SearchText, view.SortAscending)
}
