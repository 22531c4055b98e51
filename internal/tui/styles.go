package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#8BC34A")
	muted   = lipgloss.Color("#6c7a89")
	danger  = lipgloss.Color("#e53935")
	surface = lipgloss.Color("#2a3850")
)

type styles struct {
	Title    lipgloss.Style
	Filter   lipgloss.Style
	Country  lipgloss.Style
	Cursor   lipgloss.Style
	Expanded lipgloss.Style
	Member   lipgloss.Style
	Detail   lipgloss.Style
	Empty    lipgloss.Style
	Error    lipgloss.Style
	Status   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Filter:   lipgloss.NewStyle().Foreground(muted),
		Country:  lipgloss.NewStyle(),
		Cursor:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		Expanded: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(surface).Padding(0, 1).MarginLeft(2),
		Member:   lipgloss.NewStyle().Bold(true),
		Detail:   lipgloss.NewStyle().Foreground(muted),
		Empty:    lipgloss.NewStyle().Italic(true).Foreground(muted),
		Error:    lipgloss.NewStyle().Foreground(danger),
		Status:   lipgloss.NewStyle().Foreground(muted),
	}
}
