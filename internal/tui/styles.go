package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#4B40EE")
	muted  = lipgloss.Color("#6F7177")
	ink    = lipgloss.Color("#1A243A")

	priceStyle    = lipgloss.NewStyle().Bold(true)
	currencyStyle = lipgloss.NewStyle().Foreground(muted)
	gainStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#67BF6B"))
	lossStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	menuStyle       = lipgloss.NewStyle().Foreground(muted).MarginRight(3)
	menuActiveStyle = lipgloss.NewStyle().Foreground(ink).Bold(true).Underline(true).MarginRight(3)

	buttonStyle       = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	buttonActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(accent).Padding(0, 1)
)
