package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent    = lipgloss.Color("#FF8C42")
	highlight = lipgloss.Color("#FFB84D")
	muted     = lipgloss.Color("#6B7280")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	CheckedStyle = lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4757")).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD166"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	// KindStyle tags column kinds in the column list.
	KindStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true)
)
