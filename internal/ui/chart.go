package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"

	"github.com/charmbracelet/lipgloss"
)

var seriesStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB84D")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4757")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
}

// renderBarChart draws one horizontal bar per row for the first maxSeries
// numeric columns of t. Bars scale to the largest absolute value of each
// column; missing cells draw no bar.
func renderBarChart(t *types.Table, maxSeries, width, maxRows int) string {
	numeric := t.NumericColumns()
	if len(numeric) == 0 {
		return SubtitleStyle.Render("No numeric columns to plot")
	}
	if len(numeric) > maxSeries {
		numeric = numeric[:maxSeries]
	}

	rows := t.Head(maxRows)
	labelWidth := len(fmt.Sprint(len(rows)))

	var s strings.Builder
	for n, name := range numeric {
		style := seriesStyles[n%len(seriesStyles)]
		col := t.Index(name)

		peak := 0.0
		for _, row := range rows {
			if row[col].Type == types.CellNumber {
				peak = math.Max(peak, math.Abs(row[col].Num))
			}
		}

		s.WriteString(style.Bold(true).Render(name))
		s.WriteString("\n")
		for r, row := range rows {
			bar := ""
			value := "·"
			if cell := row[col]; cell.Type == types.CellNumber {
				value = cell.String()
				if peak > 0 {
					bar = strings.Repeat("█", int(math.Round(math.Abs(cell.Num)/peak*float64(width))))
				}
			}
			s.WriteString(fmt.Sprintf("%*d │ %s %s\n", labelWidth, r, style.Render(bar), value))
		}
		s.WriteString("\n")
	}

	if len(rows) < t.NumRows() {
		s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Showing %d of %d rows", len(rows), t.NumRows())))
		s.WriteString("\n")
	}

	return s.String()
}
