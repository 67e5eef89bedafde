package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
var (
	tickerGreen = lipgloss.Color("#26A69A") // candle up - prompt and success
	tickerRed   = lipgloss.Color("#EF5350") // candle down - errors
	amber       = lipgloss.Color("#FFB74D") // accent
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
)

var (
	// Text Styles
	headerStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	echoStyle = lipgloss.NewStyle().
			Foreground(tickerGreen).
			Bold(true)

	outputStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	errorStyle = lipgloss.NewStyle().
			Foreground(tickerRed)

	helpNameStyle = lipgloss.NewStyle().
			Foreground(amber).
			Width(22)

	// Container Styles
	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(tickerGreen).
			Padding(0, 1)
)
