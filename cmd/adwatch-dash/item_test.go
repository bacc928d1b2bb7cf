package main

import (
	"strings"
	"testing"
	"time"

	"adwatch/pkg/adapi"
)

func itemEvent() adapi.Event {
	return adapi.Event{
		ID:          "ev-1",
		AgentName:   "Budget Guard",
		ResultType:  adapi.ResultTriggered,
		Headline:    "Budget scaled to $150/day",
		EvaluatedAt: time.Now().Add(-5 * time.Minute),
	}
}

func TestRenderEventItem(t *testing.T) {
	theme := DefaultTheme()

	t.Run("compact row carries time, agent, and headline", func(t *testing.T) {
		ev := itemEvent()
		row := renderEventItem(theme, &ev, false, false, 120)
		for _, want := range []string{"minutes ago", "Budget Guard", "Budget scaled to $150/day"} {
			if !strings.Contains(row, want) {
				t.Errorf("row missing %q: %q", want, row)
			}
		}
	})

	t.Run("zero evaluated_at renders as unknown", func(t *testing.T) {
		ev := itemEvent()
		ev.EvaluatedAt = time.Time{}
		row := renderEventItem(theme, &ev, false, false, 120)
		if !strings.Contains(row, "unknown") {
			t.Errorf("row missing unknown marker: %q", row)
		}
	})

	t.Run("unrecognized result type falls back to neutral icon", func(t *testing.T) {
		ev := itemEvent()
		ev.ResultType = "half_triggered"
		row := renderEventItem(theme, &ev, false, false, 120)
		if !strings.Contains(row, resultIcon(adapi.ResultConditionNotMet)) {
			t.Errorf("fallback icon missing: %q", row)
		}
	})

	t.Run("action badge counts reversible actions", func(t *testing.T) {
		ev := itemEvent()
		rolled := time.Now()
		ev.ActionsExecuted = []adapi.Action{
			{ID: "a1", ActionType: adapi.ActionScaleBudget, RollbackPossible: true},
			{ID: "a2", ActionType: adapi.ActionEmail, RollbackPossible: false},
			{ID: "a3", ActionType: adapi.ActionPauseCampaign, RollbackPossible: true, RollbackExecutedAt: &rolled},
		}
		row := renderEventItem(theme, &ev, false, false, 200)
		if !strings.Contains(row, "3 actions, 1 reversible") {
			t.Errorf("badge wrong: %q", row)
		}
	})

	t.Run("expansion lists each action with rollback state", func(t *testing.T) {
		ev := itemEvent()
		ev.Summary = "Spend ran 40% over target"
		rolled := time.Now()
		ev.ActionsExecuted = []adapi.Action{
			{ID: "a1", ActionType: adapi.ActionScaleBudget, Success: true, RollbackPossible: true},
			{ID: "a2", ActionType: adapi.ActionEmail, Success: false},
			{ID: "a3", ActionType: adapi.ActionPauseCampaign, RollbackPossible: true, RollbackExecutedAt: &rolled},
		}
		out := renderEventItem(theme, &ev, true, true, 200)
		for _, want := range []string{"Spend ran 40% over target", "[R to roll back]", "FAILED", "[rolled back]"} {
			if !strings.Contains(out, want) {
				t.Errorf("expansion missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("expansion of an action-free event says so", func(t *testing.T) {
		ev := itemEvent()
		out := renderEventItem(theme, &ev, false, true, 200)
		if !strings.Contains(out, "no actions executed") {
			t.Errorf("placeholder missing:\n%s", out)
		}
	})
}

func TestRenderAgentLogItem(t *testing.T) {
	theme := DefaultTheme()

	t.Run("badge comes from joined actions, not embedded ones", func(t *testing.T) {
		ev := itemEvent()
		joined := []adapi.Action{
			{ID: "a1", EvaluationEventID: "ev-1", ActionType: adapi.ActionScaleBudget, RollbackPossible: true},
		}
		row := renderAgentLogItem(theme, &ev, joined, false, 200)
		if !strings.Contains(row, "1 actions, 1 reversible") {
			t.Errorf("joined badge missing: %q", row)
		}
	})

	t.Run("no joined actions renders a plain row", func(t *testing.T) {
		ev := itemEvent()
		ev.ResultType = adapi.ResultConditionNotMet
		row := renderAgentLogItem(theme, &ev, nil, false, 200)
		if strings.Contains(row, "actions") {
			t.Errorf("unexpected badge: %q", row)
		}
		if !strings.Contains(row, "condition_not_met") {
			t.Errorf("result type missing: %q", row)
		}
	})
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("short", 80); got != "short" {
		t.Errorf("short line changed: %q", got)
	}
	long := strings.Repeat("x", 50)
	got := truncateLine(long, 20)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("no ellipsis: %q", got)
	}
	if len([]rune(got)) > 20 {
		t.Errorf("still too long: %d runes", len([]rune(got)))
	}
}
