package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Abhishek8211/energyiq/internal/dialogue"
)

// Layout constants.
const (
	progressBarWidth = 24
	bubbleMaxShare   = 4.0 / 5.0
	maxOptionsShown  = 8
)

// renderHeader renders the title line with progress and running totals.
func renderHeader(state dialogue.State, width int) string {
	title := HeaderStyle.Render("⚡ EnergyIQ")

	progress := renderProgressBar(state.Progress(), progressBarWidth)

	kwh, cost := state.RunningMonthly()
	running := ""
	if len(state.Devices) > 0 {
		running = MutedStyle.Render(fmt.Sprintf("  %.1f kWh/mo · %s%.0f/mo", kwh, state.Tariff.Currency, cost))
	}

	line := title + "  " + progress + running
	if width > 0 {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}

// renderProgressBar renders a fixed-width bar for pct in [0,100].
func renderProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(pct/100*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := BarFillStyle.Render(strings.Repeat("█", filled)) +
		BarEmptyStyle.Render(strings.Repeat("░", width-filled))
	return bar + MutedStyle.Render(fmt.Sprintf(" %3.0f%%", pct))
}

// renderTranscript renders all chat bubbles, bot on the left and user on
// the right.
func renderTranscript(messages []dialogue.Message, width int) string {
	if width <= 0 {
		width = chatDefaultWidth
	}
	bubbleWidth := int(float64(width) * bubbleMaxShare)

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderBubble(msg, width, bubbleWidth))
		b.WriteString("\n")
	}
	return b.String()
}

func renderBubble(msg dialogue.Message, width, bubbleWidth int) string {
	content := lipgloss.NewStyle().MaxWidth(bubbleWidth).Render(msg.Content)

	if msg.Role == dialogue.RoleUser {
		bubble := UserBubbleStyle.Render(content)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, UserLabelStyle.Render("You")+"\n"+bubble)
	}
	return BotLabelStyle.Render("EnergyIQ") + "\n" + BotBubbleStyle.Render(content)
}

// renderOptions renders the quick-reply row of the active prompt.
func renderOptions(options []string, width int) string {
	shown := options
	overflow := 0
	if len(shown) > maxOptionsShown {
		overflow = len(shown) - maxOptionsShown
		shown = shown[:maxOptionsShown]
	}

	parts := make([]string, 0, len(shown)+1)
	for _, opt := range shown {
		parts = append(parts, OptionStyle.Render(opt))
	}
	if overflow > 0 {
		parts = append(parts, MutedStyle.Render(fmt.Sprintf("+%d more", overflow)))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Center, parts...)
	if width > 0 {
		row = lipgloss.NewStyle().MaxWidth(width).Render(row)
	}
	return row
}
