// Package termchart draws the dashboard's chart series as terminal text.
package termchart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"stockdash/services/dashboard"
)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0"))
)

// Bars renders a horizontal bar chart. width is the room for the longest bar.
func Bars(s dashboard.BarSeries, width int) string {
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Title) + "\n")

	if len(s.Values) == 0 {
		b.WriteString(labelStyle.Render("no data"))
		return b.String()
	}

	labelWidth := 0
	maxValue := 0.0
	for i, l := range s.Labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
		maxValue = math.Max(maxValue, s.Values[i])
	}

	for i, v := range s.Values {
		n := 0
		if maxValue > 0 && v > 0 {
			n = int(math.Round(v / maxValue * float64(width)))
			n = max(n, 1)
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Colors[i])).Render(strings.Repeat("█", n))
		fmt.Fprintf(&b, "%s %s %s\n",
			labelStyle.Render(padRight(s.Labels[i], labelWidth)),
			bar,
			fmt.Sprintf("$%.2f", v))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Donut renders a proportional ring strip with a legend. A terminal has no
// round ring, so the strip is the ring cut open.
func Donut(s dashboard.DonutSeries, width int) string {
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Title) + "\n")

	total := s.Total()
	if total == 0 {
		b.WriteString(labelStyle.Render("no data"))
		return b.String()
	}

	cells := apportion(s.Values, width)
	var strip strings.Builder
	for i, n := range cells {
		strip.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(s.Colors[i])).Render(strings.Repeat("●", n)))
	}
	b.WriteString("(" + strip.String() + ")\n")

	for i, l := range s.Labels {
		pct := float64(s.Values[i]) / float64(total) * 100
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Colors[i])).Render("●")
		fmt.Fprintf(&b, "%s %s %d (%.0f%%)\n", swatch, l, s.Values[i], pct)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// apportion splits width cells across values by largest remainder.
func apportion(values []int, width int) []int {
	total := 0
	for _, v := range values {
		total += v
	}
	cells := make([]int, len(values))
	if total == 0 {
		return cells
	}

	type rem struct {
		idx  int
		frac float64
	}
	used := 0
	rems := make([]rem, len(values))
	for i, v := range values {
		exact := float64(v) / float64(total) * float64(width)
		cells[i] = int(exact)
		used += cells[i]
		rems[i] = rem{i, exact - float64(cells[i])}
	}
	for used < width {
		best := -1
		for i, r := range rems {
			if values[r.idx] == 0 {
				continue
			}
			if best < 0 || r.frac > rems[best].frac {
				best = i
			}
		}
		if best < 0 {
			break
		}
		cells[rems[best].idx]++
		rems[best].frac = -1
		used++
	}
	return cells
}

// Spark renders values as a one-line block sparkline.
func Spark(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]rune, len(values))
	for i, v := range values {
		idx := len(sparkTicks) / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkTicks)-1))
		}
		out[i] = sparkTicks[idx]
	}
	return string(out)
}

// Line renders a sparkline series in its color.
func Line(s dashboard.LineSeries) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(Spark(s.Values))
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
