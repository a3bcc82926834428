package theme

import "github.com/charmbracelet/lipgloss"

var (
	Cream     = lipgloss.Color("#FFFAF5")
	Ink       = lipgloss.Color("#1c1917")
	Stone     = lipgloss.Color("#78716c")
	StoneSoft = lipgloss.Color("#d6d3d1")
	Orange    = lipgloss.Color("#FF8C00")
	Apricot   = lipgloss.Color("#FF9F5A")
	Mantle    = lipgloss.Color("#f5efe8")

	App = lipgloss.NewStyle().
		Background(Cream).
		Foreground(Ink).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(StoneSoft).
		Foreground(Ink).
		Padding(0, 1)

	PaneActive = Pane.BorderForeground(Orange)

	Title  = lipgloss.NewStyle().Foreground(Ink).Bold(true)
	Muted  = lipgloss.NewStyle().Foreground(Stone)
	Hot    = lipgloss.NewStyle().Foreground(Orange).Bold(true)
	Button = lipgloss.NewStyle().
		Foreground(Cream).
		Background(Orange).
		Bold(true).
		Padding(0, 2)
)
