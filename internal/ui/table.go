package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// PositionBarWidth is the width of the bars in node tables.
const PositionBarWidth = 20

// PositionBar renders percent (0-100) as a progress bar. A negative value
// renders an empty bar labelled "unknown".
func PositionBar(percent float64) string {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(PositionBarWidth),
		progress.WithoutPercentage(),
	)
	if percent < 0 {
		return bar.ViewAs(0) + " " + lipgloss.NewStyle().Foreground(MutedColor).Render("unknown")
	}
	if percent > 100 {
		percent = 100
	}
	return bar.ViewAs(percent/100) + " " + TableCellStyle.Render(formatPercent(percent))
}

func formatPercent(p float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(p, 'f', 1, 64), ".0") + "%"
}

// Table renders rows under a header with columns padded to the widest
// cell. Cells may contain styled text.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	line := func(cells []string, style *lipgloss.Style) {
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString("  ")
			b.WriteString(cell)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
			}
		}
		b.WriteString("\n")
	}

	line(headers, &TableHeaderStyle)
	for _, row := range rows {
		line(row, nil)
	}
	return b.String()
}
