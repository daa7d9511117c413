package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds all colors used by the dashboard. Views reference theme
// fields, never raw color values.
type Theme struct {
	Critical lipgloss.Color // errors, delete marks
	Healthy  lipgloss.Color // graph bars
	Accent   lipgloss.Color // titles, headers, active nav item
	Muted    lipgloss.Color // help lines, disabled controls
	Grid     lipgloss.Color // table and box borders
}

// DefaultTheme uses the standard 16 terminal colors.
func DefaultTheme() Theme {
	return Theme{
		Critical: lipgloss.Color("9"),
		Healthy:  lipgloss.Color("10"),
		Accent:   lipgloss.Color("14"),
		Muted:    lipgloss.Color("8"),
		Grid:     lipgloss.Color("240"),
	}
}

func (t Theme) title() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}

func (t Theme) box() lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Grid).Padding(0, 1)
}
