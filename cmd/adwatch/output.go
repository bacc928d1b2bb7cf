package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"adwatch/pkg/adapi"
)

// Output formats accepted by the -o flag.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// resolveFormat picks the output format: an explicit -o value wins, a TTY
// defaults to the human table, and piped output defaults to JSON so scripts
// get machine-readable data without asking.
func resolveFormat(flag string) (string, error) {
	switch flag {
	case formatTable, formatJSON, formatYAML:
		return flag, nil
	case "":
		if isatty.IsTerminal(os.Stdout.Fd()) {
			return formatTable, nil
		}
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", flag)
	}
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// printEventTable writes events in the aligned column format:
// relative time | result | agent | headline | actions.
func printEventTable(w io.Writer, events []adapi.Event, emptyMsg string) {
	if len(events) == 0 {
		fmt.Fprintln(w, emptyMsg)
		return
	}

	const (
		timeWidth   = 14
		resultWidth = 18
		agentWidth  = 20
	)

	for i := range events {
		ev := &events[i]
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %s%s\n",
			timeWidth, relTime(ev.EvaluatedAt),
			resultWidth, truncate(string(ev.ResultType), resultWidth),
			agentWidth, truncate(ev.AgentName, agentWidth),
			ev.Headline,
			actionSuffix(ev))
	}
}

// actionSuffix summarizes executed actions inline, e.g. " [2 actions, 1 reversible]".
func actionSuffix(ev *adapi.Event) string {
	n := len(ev.ActionsExecuted)
	if n == 0 {
		return ""
	}
	eligible := 0
	for i := range ev.ActionsExecuted {
		if ev.ActionsExecuted[i].RollbackEligible() {
			eligible++
		}
	}
	if eligible == 0 {
		return fmt.Sprintf(" [%d actions]", n)
	}
	return fmt.Sprintf(" [%d actions, %d reversible]", n, eligible)
}

// printActionTable writes actions in aligned columns:
// id | type | status | duration | rollback state | description.
func printActionTable(w io.Writer, actions []adapi.Action) {
	if len(actions) == 0 {
		fmt.Fprintln(w, "no actions found")
		return
	}

	const (
		idWidth   = 12
		typeWidth = 15
	)

	for i := range actions {
		a := &actions[i]
		status := "ok"
		if !a.Success {
			status = "FAILED"
		}
		fmt.Fprintf(w, "%-*s  %-*s  %-6s  %6dms  %-12s  %s\n",
			idWidth, truncate(a.ID, idWidth),
			typeWidth, truncate(string(a.ActionType), typeWidth),
			status,
			a.DurationMS,
			rollbackState(a),
			a.Description)
	}
}

// rollbackState renders the one-word rollback column for an action.
func rollbackState(a *adapi.Action) string {
	switch {
	case a.RollbackExecutedAt != nil:
		return "rolled-back"
	case a.RollbackEligible():
		return "reversible"
	default:
		return "-"
	}
}

// relTime renders an event timestamp relative to now ("3 minutes ago").
// Recomputed on every call; this is a display-only derivation.
func relTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.Time(t)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
