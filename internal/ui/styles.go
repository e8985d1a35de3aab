package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	hazardStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f85149"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#c9d1d9"))
	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#f85149")).
			Padding(1, 2).
			Width(60)
)
