// Package adapi is a typed client for the agent evaluation backend's HTTP API.
// It covers the activity feed surface: listing evaluation events (workspace-wide
// and per-agent), listing executed actions, and requesting action rollbacks.
// The backend owns all event and action state; this package only reads it and
// issues the single rollback mutation.
package adapi

import (
	"encoding/json"
	"time"
)

// ResultType classifies the outcome of one agent evaluation.
// It is a plain string so unrecognized values coming from newer backends
// survive decoding; renderers fall back to ResultConditionNotMet styling.
type ResultType string

const (
	ResultTriggered       ResultType = "triggered"
	ResultConditionMet    ResultType = "condition_met"
	ResultConditionNotMet ResultType = "condition_not_met"
	ResultCooldown        ResultType = "cooldown"
	ResultError           ResultType = "error"
)

// Known reports whether r is one of the result types this client understands.
func (r ResultType) Known() bool {
	switch r {
	case ResultTriggered, ResultConditionMet, ResultConditionNotMet, ResultCooldown, ResultError:
		return true
	}
	return false
}

// AgentState is the lifecycle state of an agent between evaluations.
type AgentState string

const (
	StateWatching     AgentState = "watching"
	StateAccumulating AgentState = "accumulating"
	StateTriggered    AgentState = "triggered"
	StateCooldown     AgentState = "cooldown"
	StateError        AgentState = "error"
	StateUnknown      AgentState = "unknown"
)

// ActionType identifies the kind of side effect an agent executed.
type ActionType string

const (
	ActionEmail         ActionType = "email"
	ActionScaleBudget   ActionType = "scale_budget"
	ActionPauseCampaign ActionType = "pause_campaign"
	ActionWebhook       ActionType = "webhook"
)

// Event is one evaluation outcome of an agent against an entity at a point
// in time. Optional detail blocks (condition, state transition, accumulation,
// snapshot) are nil when the backend omitted them; absence is not an error.
type Event struct {
	ID             string `json:"id"`
	AgentID        string `json:"agent_id"`
	AgentName      string `json:"agent_name"`
	EntityName     string `json:"entity_name"`
	EntityProvider string `json:"entity_provider"`

	ResultType ResultType `json:"result_type"`
	Headline   string     `json:"headline"`
	Summary    string     `json:"summary,omitempty"`

	EvaluatedAt time.Time `json:"evaluated_at"`

	// Condition evaluation detail (detail view only).
	ConditionDefinition  json.RawMessage `json:"condition_definition,omitempty"`
	ConditionInputs      json.RawMessage `json:"condition_inputs,omitempty"`
	ConditionResult      *bool           `json:"condition_result,omitempty"`
	ConditionExplanation string          `json:"condition_explanation,omitempty"`

	// State transition detail.
	StateBefore           AgentState `json:"state_before,omitempty"`
	StateAfter            AgentState `json:"state_after,omitempty"`
	StateTransitionReason string     `json:"state_transition_reason,omitempty"`

	// Progress-toward-trigger detail.
	AccumulationBefore      json.RawMessage `json:"accumulation_before,omitempty"`
	AccumulationAfter       json.RawMessage `json:"accumulation_after,omitempty"`
	AccumulationExplanation string          `json:"accumulation_explanation,omitempty"`

	ShouldTrigger      *bool  `json:"should_trigger,omitempty"`
	TriggerExplanation string `json:"trigger_explanation,omitempty"`

	// Opaque structured blobs, rendered raw.
	EntitySnapshot json.RawMessage `json:"entity_snapshot,omitempty"`
	Observations   json.RawMessage `json:"observations,omitempty"`

	// ActionsExecuted is the authoritative action list for a triggered event.
	ActionsExecuted []Action `json:"actions_executed,omitempty"`
}

// Action is a concrete side effect executed as a consequence of a triggered
// event. An action can be rolled back at most once: RollbackExecutedAt is set
// exactly once by the backend and the action is thereafter immutable.
type Action struct {
	ID                string     `json:"id"`
	EvaluationEventID string     `json:"evaluation_event_id"`
	ActionType        ActionType `json:"action_type"`
	Success           bool       `json:"success"`
	Description       string     `json:"description,omitempty"`
	DurationMS        int64      `json:"duration_ms,omitempty"`

	RollbackPossible   bool       `json:"rollback_possible"`
	RollbackExecutedAt *time.Time `json:"rollback_executed_at,omitempty"`

	// Action-specific before/after snapshots, e.g. {"budget": 120} or
	// {"status": "paused"}.
	StateBefore json.RawMessage `json:"state_before,omitempty"`
	StateAfter  json.RawMessage `json:"state_after,omitempty"`
}

// RollbackEligible reports whether the action can still be reversed:
// the backend marked it rollback-possible, it has not been rolled back, and
// it is a reversible type (budget scaling or campaign pause). Emails and
// webhooks cannot be unsent.
func (a *Action) RollbackEligible() bool {
	if !a.RollbackPossible || a.RollbackExecutedAt != nil {
		return false
	}
	return a.ActionType == ActionScaleBudget || a.ActionType == ActionPauseCampaign
}

// RollbackCandidate returns the first rollback-eligible action among the
// event's executed actions, or nil when none qualifies. Only the first
// eligible action is offered for one-click rollback; the list order is the
// backend's execution order.
func (e *Event) RollbackCandidate() *Action {
	for i := range e.ActionsExecuted {
		if e.ActionsExecuted[i].RollbackEligible() {
			return &e.ActionsExecuted[i]
		}
	}
	return nil
}

// EventPage is one cursor-paginated page of the workspace-wide feed.
// An empty NextCursor means the feed is exhausted.
type EventPage struct {
	Events     []Event `json:"events"`
	NextCursor string  `json:"next_cursor"`
}

// AgentEventPage is one offset-paginated page of an agent's detail log.
// Total is the full matching event count, used to derive has-more.
type AgentEventPage struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
}
