package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"stockdash/pkg/termchart"
	"stockdash/services/dashboard"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(1, 2)

	errorBoxStyle = boxStyle.
			BorderForeground(lipgloss.Color("#FF0000"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1)

	statusOkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF0000"))
)

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf(" Stock Dashboard · %s ", time.Now().Format("Mon Jan 2 15:04"))) + "\n\n")
	b.WriteString(m.search.View() + "\n")
	b.WriteString(m.renderTabs() + "\n")

	switch st := m.load.(type) {
	case dashboard.Loading:
		b.WriteString("\n" + m.spinner.View() + " Loading quotes...\n")
	case dashboard.Failed:
		b.WriteString("\n" + errorBoxStyle.Render(
			statusErrorStyle.Render("Data unavailable")+"\n\n"+st.Err.Error()+"\n\nPress r to retry.",
		) + "\n")
	case dashboard.Ready:
		if m.view.Mode == dashboard.ModeCharts {
			b.WriteString(m.renderChartsView(st))
		} else {
			b.WriteString(m.renderTableView())
		}
	}

	b.WriteString(m.renderStatusBar())

	help := helpStyle.Render("/: Search • s: Sort • v: Table/Charts • r: Refresh • q: Quit")
	b.WriteString("\n" + help)

	return b.String()
}

func (m model) renderTabs() string {
	tabs := []dashboard.ViewMode{dashboard.ModeTable, dashboard.ModeCharts}
	var rendered []string

	for _, tab := range tabs {
		style := lipgloss.NewStyle().Padding(0, 2)
		if tab == m.view.Mode {
			style = style.
				Background(lipgloss.Color("#7D56F4")).
				Foreground(lipgloss.Color("#FAFAFA")).
				Bold(true)
		} else {
			style = style.Foreground(lipgloss.Color("#626262"))
		}
		rendered = append(rendered, style.Render(strings.ToUpper(tab.String()[:1])+tab.String()[1:]))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m model) renderTableView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Quotes") + "\n\n")

	if len(m.table.Rows()) == 0 {
		b.WriteString(boxStyle.Render("No stocks found") + "\n")
		return b.String()
	}

	b.WriteString(m.table.View() + "\n")
	return b.String()
}

// renderChartsView draws the aggregate charts over every loaded quote;
// search and sort do not apply here.
func (m model) renderChartsView(st dashboard.Ready) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Market overview") + "\n\n")

	charts := dashboard.BuildCharts(st.Quotes)
	barWidth := max(10, m.width/2-20)
	donutWidth := max(10, m.width/4)

	bars := boxStyle.Render(termchart.Bars(charts.Prices, barWidth))
	donut := boxStyle.Render(termchart.Donut(charts.Movers, donutWidth))

	if m.width >= lipgloss.Width(bars)+lipgloss.Width(donut) {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, bars, donut) + "\n")
	} else {
		b.WriteString(bars + "\n" + donut + "\n")
	}
	return b.String()
}

func (m model) renderStatusBar() string {
	var status string

	switch st := m.load.(type) {
	case dashboard.Loading:
		status = statusWarnStyle.Render("Loading")
	case dashboard.Failed:
		status = statusErrorStyle.Render("Error")
	case dashboard.Ready:
		if st.Warning != nil {
			status = statusWarnStyle.Render(fmt.Sprintf("Unavailable: %s", strings.Join(st.Warning.Symbols(), ", ")))
		} else {
			status = statusOkStyle.Render("Ready")
		}
	}

	order := "price ↑"
	if !m.view.SortAscending {
		order = "price ↓"
	}
	status += helpStyle.UnsetMarginTop().Render(fmt.Sprintf(" • Sort: %s", order))
	if !m.lastLoad.IsZero() {
		status += helpStyle.UnsetMarginTop().Render(fmt.Sprintf(" • Last refresh: %s", m.lastLoad.Format("15:04:05")))
	}
	return "\n" + status
}
