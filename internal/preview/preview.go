// Package preview draws a computed layout in the terminal: one bordered box
// per hop, rows in display order, arrows along the storage-order path.
package preview

import (
	"strconv"
	"strings"

	"vacai/internal/domain/models"
	"vacai/internal/layout"

	"github.com/charmbracelet/lipgloss"
)

const boxWidth = 20

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	arrowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95A5A6")).Padding(1, 1)
)

// Render returns the preview. expanded is a storage index whose details are
// shown, or -1.
func Render(hops []models.ItineraryHop, l layout.Layout, expanded int) string {
	if len(l.Rows) == 0 {
		return mutedStyle.Render("(empty itinerary)")
	}

	var rows []string
	for i, row := range l.Rows {
		cells := make([]string, 0, 2*len(row.Display))
		arrow := "→"
		if row.Reversed {
			arrow = "←"
		}
		for j, idx := range row.Display {
			if j > 0 {
				cells = append(cells, arrowStyle.Render(arrow))
			}
			cells = append(cells, box(hops[idx], idx, idx == expanded))
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
		rows = append(rows, line)

		if i+1 < len(l.Rows) {
			pos := lipgloss.Right
			if row.Reversed {
				pos = lipgloss.Left
			}
			rows = append(rows, lipgloss.PlaceHorizontal(lipgloss.Width(line), pos, wrapArrow()))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func box(h models.ItineraryHop, index int, expanded bool) string {
	lines := []string{
		titleStyle.Render(truncate(h.Type.Icon()+" "+h.Name, boxWidth-2)),
	}
	when := strings.TrimSpace(h.Date + " " + h.Time)
	if when != "" {
		lines = append(lines, truncate(when, boxWidth-2))
	}
	if h.Location != "" {
		lines = append(lines, mutedStyle.Render(truncate(h.Location, boxWidth-2)))
	}
	if expanded && h.Details != "" {
		lines = append(lines, lipgloss.NewStyle().Width(boxWidth-2).Render(h.Details))
	}
	lines = append(lines, mutedStyle.Render("#"+strconv.Itoa(index)))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(h.Type.Color())).
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))
}

func wrapArrow() string {
	return arrowStyle.Padding(0, boxWidth/2).Render("↓")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
