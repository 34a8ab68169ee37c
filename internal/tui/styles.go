package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorBlue   = lipgloss.Color("#0052FF")
	ColorGreen  = lipgloss.Color("#44DD66")
	ColorRed    = lipgloss.Color("#FF5555")
	ColorYellow = lipgloss.Color("#FFCC00")
	ColorGray   = lipgloss.Color("244")
	ColorWhite  = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorBlue).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(1, 2)

	nameStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorWhite)
	badgeStyle  = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
	priceStyle  = lipgloss.NewStyle().Foreground(ColorGreen)
	labelStyle  = lipgloss.NewStyle().Foreground(ColorGray).Width(12)
	dimStyle    = lipgloss.NewStyle().Foreground(ColorGray)
	errorStyle  = lipgloss.NewStyle().Foreground(ColorRed)
	okStyle     = lipgloss.NewStyle().Foreground(ColorGreen)
	pulseStyle  = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	caughtStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorGreen).
			Padding(1, 4).
			Align(lipgloss.Center)
)
