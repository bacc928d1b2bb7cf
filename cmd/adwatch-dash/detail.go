package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"adwatch/pkg/adapi"
)

// renderEventDetail renders the full detail view for one event. Sections are
// emitted only when the backend populated them; a detail view with nothing
// but the header is valid. rawOpen toggles the raw snapshot / observations
// section, which is collapsed by default.
func renderEventDetail(theme Theme, ev *adapi.Event, actions []adapi.Action, rawOpen bool, width int) string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	section := lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary)
	muted := lipgloss.NewStyle().Foreground(theme.Muted)

	icon := lipgloss.NewStyle().Foreground(resultColor(theme, ev.ResultType)).Render(resultIcon(ev.ResultType))
	b.WriteString(fmt.Sprintf("%s %s\n", icon, title.Render(ev.Headline)))

	when := "unknown"
	if !ev.EvaluatedAt.IsZero() {
		when = fmt.Sprintf("%s (%s)", ev.EvaluatedAt.Format("2006-01-02 15:04:05"), humanize.Time(ev.EvaluatedAt))
	}
	b.WriteString(muted.Render(fmt.Sprintf("%s · %s · %s", ev.AgentName, string(ev.ResultType), when)) + "\n")
	if ev.EntityName != "" {
		entity := ev.EntityName
		if ev.EntityProvider != "" {
			entity += " (" + ev.EntityProvider + ")"
		}
		b.WriteString(muted.Render("entity: "+entity) + "\n")
	}
	if ev.Summary != "" {
		b.WriteString("\n" + ev.Summary + "\n")
	}

	if cond := renderConditionSection(theme, ev, width); cond != "" {
		b.WriteString("\n" + section.Render("Condition") + "\n" + cond + "\n")
	}

	if ev.StateBefore != "" || ev.StateAfter != "" {
		b.WriteString("\n" + section.Render("State") + "\n")
		before := lipgloss.NewStyle().Foreground(stateColor(theme, ev.StateBefore)).Render(string(ev.StateBefore))
		after := lipgloss.NewStyle().Foreground(stateColor(theme, ev.StateAfter)).Render(string(ev.StateAfter))
		b.WriteString(fmt.Sprintf("%s -> %s\n", before, after))
		if ev.StateTransitionReason != "" {
			b.WriteString(muted.Render(ev.StateTransitionReason) + "\n")
		}
	}

	if acc := renderAccumulationSection(theme, ev, width); acc != "" {
		b.WriteString("\n" + section.Render("Progress") + "\n" + acc + "\n")
	}

	if ev.ShouldTrigger != nil {
		b.WriteString("\n" + section.Render("Trigger decision") + "\n")
		verdict := "no"
		if *ev.ShouldTrigger {
			verdict = "yes"
		}
		b.WriteString("should trigger: " + verdict + "\n")
		if ev.TriggerExplanation != "" {
			b.WriteString(muted.Render(ev.TriggerExplanation) + "\n")
		}
	}

	if len(actions) > 0 {
		b.WriteString("\n" + section.Render("Actions") + "\n")
		for i := range actions {
			a := &actions[i]
			b.WriteString(renderActionLine(theme, a) + "\n")
			if diff := renderActionDiff(theme, a); diff != "" {
				b.WriteString(diff + "\n")
			}
		}
	}

	if len(ev.EntitySnapshot) > 0 || len(ev.Observations) > 0 {
		b.WriteString("\n")
		if rawOpen {
			b.WriteString(section.Render("Raw data") + " " + muted.Render("(s to collapse)") + "\n")
			if len(ev.EntitySnapshot) > 0 {
				b.WriteString(muted.Render("entity snapshot:") + "\n" + indentJSON(ev.EntitySnapshot) + "\n")
			}
			if len(ev.Observations) > 0 {
				b.WriteString(muted.Render("observations:") + "\n" + indentJSON(ev.Observations) + "\n")
			}
		} else {
			b.WriteString(muted.Render("Raw data available (s to expand)") + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderConditionSection renders the condition definition next to the inputs
// it was evaluated against, followed by the boolean outcome and explanation.
func renderConditionSection(theme Theme, ev *adapi.Event, width int) string {
	if len(ev.ConditionDefinition) == 0 && len(ev.ConditionInputs) == 0 && ev.ConditionResult == nil {
		return ""
	}

	muted := lipgloss.NewStyle().Foreground(theme.Muted)
	var b strings.Builder

	if len(ev.ConditionDefinition) > 0 || len(ev.ConditionInputs) > 0 {
		colWidth := width/2 - 2
		if colWidth < 20 {
			colWidth = 20
		}
		col := lipgloss.NewStyle().Width(colWidth)
		left := col.Render(muted.Render("definition") + "\n" + indentJSON(ev.ConditionDefinition))
		right := col.Render(muted.Render("inputs") + "\n" + indentJSON(ev.ConditionInputs))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right) + "\n")
	}

	if ev.ConditionResult != nil {
		verdict := lipgloss.NewStyle().Foreground(theme.Error).Render("not met")
		if *ev.ConditionResult {
			verdict = lipgloss.NewStyle().Foreground(theme.Success).Render("met")
		}
		b.WriteString("condition " + verdict + "\n")
	}
	if ev.ConditionExplanation != "" {
		b.WriteString(muted.Render(ev.ConditionExplanation) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderAccumulationSection renders progress-toward-trigger before/after.
func renderAccumulationSection(theme Theme, ev *adapi.Event, width int) string {
	if len(ev.AccumulationBefore) == 0 && len(ev.AccumulationAfter) == 0 {
		return ""
	}
	muted := lipgloss.NewStyle().Foreground(theme.Muted)

	colWidth := width/2 - 2
	if colWidth < 20 {
		colWidth = 20
	}
	col := lipgloss.NewStyle().Width(colWidth)
	left := col.Render(muted.Render("before") + "\n" + indentJSON(ev.AccumulationBefore))
	right := col.Render(muted.Render("after") + "\n" + indentJSON(ev.AccumulationAfter))

	out := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	if ev.AccumulationExplanation != "" {
		out += "\n" + muted.Render(ev.AccumulationExplanation)
	}
	return out
}

// renderActionDiff renders an action's before/after state snapshots.
func renderActionDiff(theme Theme, a *adapi.Action) string {
	if len(a.StateBefore) == 0 && len(a.StateAfter) == 0 {
		return ""
	}
	muted := lipgloss.NewStyle().Foreground(theme.Muted)
	return fmt.Sprintf("  %s %s %s %s",
		muted.Render("before:"), compactJSON(a.StateBefore),
		muted.Render("after:"), compactJSON(a.StateAfter))
}

// indentJSON pretty-prints a raw JSON blob; malformed or empty input is
// passed through untouched so the view never fails on odd backend data.
func indentJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "(none)"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// compactJSON renders a raw JSON blob on one line.
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "(none)"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
