package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Styles groups the lipgloss styles used by the browser
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Alert   lipgloss.Style
	Muted   lipgloss.Style
	Count   lipgloss.Style
	Table   table.Styles
}

func DefaultStyles() Styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("#2563EB")).
		Bold(false)

	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")).MarginBottom(1),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		Alert:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Count:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Table:   ts,
	}
}
