package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// helpBinding represents a key binding with its description.
type helpBinding struct {
	key  string
	desc string
}

func helpBindings() []helpBinding {
	return []helpBinding{
		{"j/k or ↑/↓", "Move selection / scroll detail"},
		{"g / G", "Jump to top / bottom"},
		{"1 / 2 / 3", "Filter: all / triggered / errors"},
		{"enter", "Expand or collapse event"},
		{"d", "Open event detail"},
		{"a", "Open the agent's full log"},
		{"R", "Roll back the event's reversible action"},
		{"r", "Refresh now"},
		{"s", "Toggle raw data (detail view)"},
		{"esc or backspace", "Go back"},
		{"?", "Toggle help"},
		{"q or ctrl+c", "Quit"},
	}
}

// renderHelp renders the key binding overlay.
func renderHelp(theme Theme) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Padding(1, 0).Render("Help")

	keyStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Width(20)
	descStyle := lipgloss.NewStyle()

	var content strings.Builder
	for _, binding := range helpBindings() {
		content.WriteString(lipgloss.JoinHorizontal(lipgloss.Left,
			keyStyle.Render(binding.key), descStyle.Render(binding.desc)))
		content.WriteString("\n")
	}

	footer := lipgloss.NewStyle().Foreground(theme.Muted).Render("Press any key to close")
	return lipgloss.JoinVertical(lipgloss.Left, title, content.String(), footer)
}
