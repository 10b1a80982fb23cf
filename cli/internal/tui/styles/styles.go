// ABOUTME: Shared lipgloss styles for plan reports, comparison tables, and the wizard
// ABOUTME: One palette so every view colors bindings and status the same way

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	Primary = lipgloss.Color("#3775A9") // index blue
	Accent  = lipgloss.Color("#FFD43B") // index yellow
	Good    = lipgloss.Color("#22C55E")
	Caution = lipgloss.Color("#F59E0B")
	Bad     = lipgloss.Color("#EF4444")
	Muted   = lipgloss.Color("#6B7280")
)

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)
	Subtitle = lipgloss.NewStyle().Foreground(Muted).MarginBottom(1)
	Help     = lipgloss.NewStyle().Foreground(Muted).MarginTop(1)
	KeyStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true)

	StatusOK       = lipgloss.NewStyle().Foreground(Good).Bold(true)
	StatusWarning  = lipgloss.NewStyle().Foreground(Caution).Bold(true)
	StatusCritical = lipgloss.NewStyle().Foreground(Bad).Bold(true)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)

	TableHeader = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(Muted).
			Padding(0, 1)
	TableCell = lipgloss.NewStyle().Padding(0, 1)
)

// PackingBar draws how much of a node's free resource a full set of tasks
// reserves. Tight packing is green; below half the node is mostly stranded.
func PackingBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))

	color := Bad
	switch {
	case percent >= 75:
		color = Good
	case percent >= 50:
		color = Caution
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}
