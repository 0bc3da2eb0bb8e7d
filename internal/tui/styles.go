package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the watch screen.
var (
	PrimaryColor   = lipgloss.Color("37")  // teal
	HighlightColor = lipgloss.Color("43")  // bright teal
	WarningColor   = lipgloss.Color("214") // orange
	ErrorColor     = lipgloss.Color("196") // red
	SubtleColor    = lipgloss.Color("241") // gray
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(HighlightColor)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	BarFilledStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	BarEmptyStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)
)
