package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"adwatch/pkg/adapi"
)

// renderEventItem renders one feed row: a compact single line, plus an
// expanded block with the executed actions when the row is open.
func renderEventItem(theme Theme, ev *adapi.Event, selected, expanded bool, width int) string {
	icon := lipgloss.NewStyle().
		Foreground(resultColor(theme, ev.ResultType)).
		Render(resultIcon(ev.ResultType))

	when := "unknown"
	if !ev.EvaluatedAt.IsZero() {
		when = humanize.Time(ev.EvaluatedAt)
	}

	agent := lipgloss.NewStyle().Foreground(theme.Primary).Render(ev.AgentName)
	meta := lipgloss.NewStyle().Foreground(theme.Muted).Render(when)

	line := fmt.Sprintf("%s %s  %s  %s", icon, meta, agent, ev.Headline)
	if badge := actionBadge(theme, ev.ActionsExecuted); badge != "" {
		line += "  " + badge
	}

	cursor := "  "
	if selected {
		cursor = lipgloss.NewStyle().Foreground(theme.Secondary).Render("> ")
	}
	line = cursor + truncateLine(line, width)

	if !expanded {
		return line
	}

	var b strings.Builder
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(renderExpandedEvent(theme, ev))
	return b.String()
}

// renderExpandedEvent renders the inline expansion under a feed row:
// entity, summary, and one line per executed action.
func renderExpandedEvent(theme Theme, ev *adapi.Event) string {
	indent := "    "
	muted := lipgloss.NewStyle().Foreground(theme.Muted)

	var b strings.Builder
	if ev.EntityName != "" {
		entity := ev.EntityName
		if ev.EntityProvider != "" {
			entity += " (" + ev.EntityProvider + ")"
		}
		b.WriteString(indent + muted.Render("entity: "+entity) + "\n")
	}
	if ev.Summary != "" {
		b.WriteString(indent + ev.Summary + "\n")
	}
	for i := range ev.ActionsExecuted {
		b.WriteString(indent + renderActionLine(theme, &ev.ActionsExecuted[i]) + "\n")
	}
	if len(ev.ActionsExecuted) == 0 {
		b.WriteString(indent + muted.Render("no actions executed") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderActionLine renders one executed action: type, outcome, description,
// and its rollback state.
func renderActionLine(theme Theme, a *adapi.Action) string {
	status := lipgloss.NewStyle().Foreground(theme.Success).Render("ok")
	if !a.Success {
		status = lipgloss.NewStyle().Foreground(theme.Error).Render("FAILED")
	}

	line := fmt.Sprintf("%s %s", string(a.ActionType), status)
	if a.DurationMS > 0 {
		line += lipgloss.NewStyle().Foreground(theme.Muted).Render(fmt.Sprintf(" (%dms)", a.DurationMS))
	}
	if a.Description != "" {
		line += "  " + a.Description
	}

	switch {
	case a.RollbackExecutedAt != nil:
		line += "  " + lipgloss.NewStyle().Foreground(theme.Muted).Render("[rolled back]")
	case a.RollbackEligible():
		line += "  " + lipgloss.NewStyle().Foreground(theme.Warning).Render("[R to roll back]")
	}
	return line
}

// actionBadge summarizes a list of executed actions for a compact row,
// e.g. "[2 actions, 1 reversible]". Empty for events with no actions.
func actionBadge(theme Theme, actions []adapi.Action) string {
	n := len(actions)
	if n == 0 {
		return ""
	}
	reversible := 0
	for i := range actions {
		if actions[i].RollbackEligible() {
			reversible++
		}
	}
	text := fmt.Sprintf("[%d actions]", n)
	if reversible > 0 {
		text = fmt.Sprintf("[%d actions, %d reversible]", n, reversible)
	}
	return lipgloss.NewStyle().Foreground(theme.Secondary).Render(text)
}

// renderAgentLogItem renders one agent log row. Actions come from the
// client-side join against the agent's action list, so the badge reflects
// them rather than the event's embedded copies.
func renderAgentLogItem(theme Theme, ev *adapi.Event, actions []adapi.Action, selected bool, width int) string {
	icon := lipgloss.NewStyle().
		Foreground(resultColor(theme, ev.ResultType)).
		Render(resultIcon(ev.ResultType))

	when := "unknown"
	if !ev.EvaluatedAt.IsZero() {
		when = humanize.Time(ev.EvaluatedAt)
	}
	meta := lipgloss.NewStyle().Foreground(theme.Muted).Render(when)
	result := lipgloss.NewStyle().Foreground(resultColor(theme, ev.ResultType)).Render(string(ev.ResultType))

	line := fmt.Sprintf("%s %s  %s  %s", icon, meta, result, ev.Headline)
	if badge := actionBadge(theme, actions); badge != "" {
		line += "  " + badge
	}

	cursor := "  "
	if selected {
		cursor = lipgloss.NewStyle().Foreground(theme.Secondary).Render("> ")
	}
	return cursor + truncateLine(line, width)
}

// truncateLine clips a rendered line to the terminal width, accounting for
// ANSI escapes via lipgloss.Width.
func truncateLine(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	// Trim rune by rune; cheap at terminal widths.
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
