package tui

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all chat views.
var (
	ColorHeader    = lipgloss.Color("39")  // bright blue
	ColorBot       = lipgloss.Color("78")  // green
	ColorUser      = lipgloss.Color("213") // pink
	ColorMuted     = lipgloss.Color("241") // gray
	ColorHighlight = lipgloss.Color("220") // yellow
	ColorWarning   = lipgloss.Color("208") // orange
	ColorBar       = lipgloss.Color("45")  // cyan
)

// Shared styles.
var (
	HeaderStyle = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)

	BotLabelStyle  = lipgloss.NewStyle().Foreground(ColorBot).Bold(true)
	UserLabelStyle = lipgloss.NewStyle().Foreground(ColorUser).Bold(true)

	BotBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBot).
			Padding(0, 1)

	UserBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorUser).
			Padding(0, 1)

	OptionStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle    = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	BarFillStyle  = lipgloss.NewStyle().Foreground(ColorBar)
	BarEmptyStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)
