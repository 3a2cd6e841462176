package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"stockdash/pkg/termchart"
	"stockdash/services/dashboard"
	"stockdash/services/market"
)

type model struct {
	parent  context.Context
	source  market.Source
	symbols []string
	refresh time.Duration

	view dashboard.ViewState
	load dashboard.LoadState

	// cycle identifies the current load; results tagged with an older cycle
	// belong to an abandoned load and are dropped.
	cycle   int
	cancel  context.CancelFunc
	pending tea.Cmd

	search  textinput.Model
	spinner spinner.Model
	table   table.Model

	width    int
	height   int
	lastLoad time.Time
}

type quotesMsg struct {
	cycle  int
	quotes []market.Quote
	err    error
}

type tickMsg struct {
	cycle int
}

func newModel(ctx context.Context, src market.Source, symbols []string, refresh time.Duration) model {
	search := textinput.New()
	search.Placeholder = "Search by symbol..."
	search.Prompt = "/ "
	search.CharLimit = 12
	search.Width = 24

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	t := table.New(
		table.WithColumns(tableColumns(true)),
		table.WithFocused(true),
		table.WithHeight(len(symbols)+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#7D56F4")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Bold(false)
	t.SetStyles(s)

	m := model{
		parent:  ctx,
		source:  src,
		symbols: symbols,
		refresh: refresh,
		view:    dashboard.DefaultViewState(),
		search:  search,
		spinner: sp,
		table:   t,
		width:   80,
	}
	m.pending = m.startLoad()
	return m
}

func (m model) Init() tea.Cmd {
	return m.pending
}

// startLoad abandons any in-flight load and begins a new cycle.
func (m *model) startLoad() tea.Cmd {
	m.stop()

	m.cycle++
	ctx, cancel := context.WithCancel(m.parent)
	m.cancel = cancel
	m.load = dashboard.Loading{}
	m.syncTable()

	log.Debug().Int("cycle", m.cycle).Msg("Loading quotes")
	return tea.Batch(fetchQuotes(ctx, m.source, m.symbols, m.cycle), m.spinner.Tick)
}

// stop cancels the in-flight load, if any.
func (m *model) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func fetchQuotes(ctx context.Context, src market.Source, symbols []string, cycle int) tea.Cmd {
	return func() tea.Msg {
		quotes, err := src.FetchQuotes(ctx, symbols)
		return quotesMsg{cycle: cycle, quotes: quotes, err: err}
	}
}

func tickCmd(d time.Duration, cycle int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return tickMsg{cycle: cycle}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case quotesMsg:
		return m.finishLoad(msg)

	case tickMsg:
		if msg.cycle != m.cycle {
			return m, nil
		}
		return m, m.startLoad()

	case spinner.TickMsg:
		if _, loading := m.load.(dashboard.Loading); !loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.search.Focused() {
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m model) finishLoad(msg quotesMsg) (tea.Model, tea.Cmd) {
	if msg.cycle != m.cycle || errors.Is(msg.err, context.Canceled) {
		log.Debug().Int("cycle", msg.cycle).Msg("Dropping result of abandoned load")
		return m, nil
	}

	m.stop()
	m.load = dashboard.Resolve(msg.quotes, msg.err)
	m.lastLoad = time.Now()
	m.syncTable()

	switch st := m.load.(type) {
	case dashboard.Failed:
		log.Error().Err(st.Err).Int("cycle", msg.cycle).Msg("Load failed")
	case dashboard.Ready:
		ev := log.Info().Int("cycle", msg.cycle).Int("quotes", len(st.Quotes))
		if st.Warning != nil {
			ev = ev.Strs("unavailable", st.Warning.Symbols())
		}
		ev.Msg("Load complete")
	}

	if m.refresh > 0 {
		return m, tickCmd(m.refresh, m.cycle)
	}
	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.stop()
		return m, tea.Quit
	case "esc", "enter":
		m.search.Blur()
		m.table.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.view.SearchText {
		m.view.SetSearch(m.search.Value())
		m.syncTable()
	}
	return m, cmd
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.stop()
		return m, tea.Quit
	case "/":
		m.table.Blur()
		return m, m.search.Focus()
	case "esc":
		m.search.SetValue("")
		m.view.SetSearch("")
		m.syncTable()
		return m, nil
	case "s":
		m.view.ToggleSort()
		m.syncTable()
		return m, nil
	case "v", "tab":
		m.view.ToggleMode()
		return m, nil
	case "r":
		return m, m.startLoad()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// syncTable rebuilds the table rows from the current projection.
func (m *model) syncTable() {
	m.table.SetColumns(tableColumns(m.view.SortAscending))

	rows := dashboard.Rows(m.load, m.view)
	tableRows := make([]table.Row, len(rows))
	for i, q := range rows {
		tableRows[i] = quoteRow(q)
	}
	m.table.SetRows(tableRows)
	if m.table.Cursor() >= len(tableRows) {
		m.table.SetCursor(max(len(tableRows)-1, 0))
	}
}

func tableColumns(ascending bool) []table.Column {
	arrow := "↓"
	if ascending {
		arrow = "↑"
	}
	return []table.Column{
		{Title: "Symbol", Width: 8},
		{Title: "Price " + arrow, Width: 12},
		{Title: "Change %", Width: 10},
		{Title: "Mkt Cap", Width: 8},
		{Title: "Trend", Width: 12},
	}
}

func quoteRow(q market.Quote) table.Row {
	marker := "▲"
	if q.ChangePercent < 0 {
		marker = "▼"
	}
	marketCap := q.MarketCap
	if marketCap == "" {
		marketCap = "-"
	}
	return table.Row{
		q.Symbol,
		fmt.Sprintf("$%.2f", q.Price),
		fmt.Sprintf("%s %.2f%%", marker, q.ChangePercent),
		marketCap,
		termchart.Spark(dashboard.Sparkline(q).Values),
	}
}
