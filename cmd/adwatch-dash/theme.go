package main

import (
	"github.com/charmbracelet/lipgloss"

	"adwatch/pkg/adapi"
)

// Theme defines the visual styling for the adwatch dashboard.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
}

// DefaultTheme returns the default theme for adwatch-dash.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("12"),  // Blue
		Secondary: lipgloss.Color("14"),  // Cyan
		Success:   lipgloss.Color("10"),  // Green
		Warning:   lipgloss.Color("11"),  // Yellow
		Error:     lipgloss.Color("9"),   // Red
		Muted:     lipgloss.Color("240"), // Gray
	}
}

// resultIcon returns the one-column icon for a result type. Unrecognized
// values get the condition_not_met fallback; rendering must never fail on
// enum values this client does not know yet.
func resultIcon(rt adapi.ResultType) string {
	switch rt {
	case adapi.ResultTriggered:
		return "⚡"
	case adapi.ResultConditionMet:
		return "●"
	case adapi.ResultCooldown:
		return "❄"
	case adapi.ResultError:
		return "✗"
	default: // condition_not_met and anything unknown
		return "○"
	}
}

// resultColor returns the theme color for a result type, with the same
// fallback rule as resultIcon.
func resultColor(theme Theme, rt adapi.ResultType) lipgloss.Color {
	switch rt {
	case adapi.ResultTriggered:
		return theme.Warning
	case adapi.ResultConditionMet:
		return theme.Success
	case adapi.ResultCooldown:
		return theme.Secondary
	case adapi.ResultError:
		return theme.Error
	default:
		return theme.Muted
	}
}

// stateColor returns the theme color for an agent lifecycle state.
func stateColor(theme Theme, st adapi.AgentState) lipgloss.Color {
	switch st {
	case adapi.StateTriggered:
		return theme.Warning
	case adapi.StateWatching:
		return theme.Success
	case adapi.StateAccumulating:
		return theme.Secondary
	case adapi.StateCooldown:
		return theme.Primary
	case adapi.StateError:
		return theme.Error
	default:
		return theme.Muted
	}
}
