package adapi

import (
	"encoding/json"
	"testing"
	"time"
)

func TestResultTypeKnown(t *testing.T) {
	known := []ResultType{ResultTriggered, ResultConditionMet, ResultConditionNotMet, ResultCooldown, ResultError}
	for _, rt := range known {
		if !rt.Known() {
			t.Errorf("%q should be known", rt)
		}
	}

	if ResultType("something_new").Known() {
		t.Error("unrecognized result type must not be known")
	}
	if ResultType("").Known() {
		t.Error("empty result type must not be known")
	}
}

func TestActionRollbackEligible(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		action Action
		want   bool
	}{
		{
			name:   "possible budget action not yet rolled back",
			action: Action{ActionType: ActionScaleBudget, RollbackPossible: true},
			want:   true,
		},
		{
			name:   "possible pause action not yet rolled back",
			action: Action{ActionType: ActionPauseCampaign, RollbackPossible: true},
			want:   true,
		},
		{
			name:   "already rolled back",
			action: Action{ActionType: ActionScaleBudget, RollbackPossible: true, RollbackExecutedAt: &now},
			want:   false,
		},
		{
			name:   "not rollback possible",
			action: Action{ActionType: ActionScaleBudget, RollbackPossible: false},
			want:   false,
		},
		{
			name:   "email cannot be unsent",
			action: Action{ActionType: ActionEmail, RollbackPossible: true},
			want:   false,
		},
		{
			name:   "webhook cannot be reversed",
			action: Action{ActionType: ActionWebhook, RollbackPossible: true},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.RollbackEligible(); got != tt.want {
				t.Errorf("RollbackEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventRollbackCandidate(t *testing.T) {
	now := time.Now()

	t.Run("first eligible action wins", func(t *testing.T) {
		ev := Event{ActionsExecuted: []Action{
			{ID: "act-1", ActionType: ActionEmail, RollbackPossible: true},
			{ID: "act-2", ActionType: ActionScaleBudget, RollbackPossible: true},
			{ID: "act-3", ActionType: ActionPauseCampaign, RollbackPossible: true},
		}}

		got := ev.RollbackCandidate()
		if got == nil || got.ID != "act-2" {
			t.Fatalf("RollbackCandidate() = %+v, want act-2", got)
		}
	})

	t.Run("no eligible action returns nil", func(t *testing.T) {
		ev := Event{ActionsExecuted: []Action{
			{ID: "act-1", ActionType: ActionEmail, RollbackPossible: true},
			{ID: "act-2", ActionType: ActionScaleBudget, RollbackPossible: true, RollbackExecutedAt: &now},
		}}

		if got := ev.RollbackCandidate(); got != nil {
			t.Errorf("RollbackCandidate() = %+v, want nil", got)
		}
	})

	t.Run("no actions returns nil", func(t *testing.T) {
		ev := Event{}
		if got := ev.RollbackCandidate(); got != nil {
			t.Errorf("RollbackCandidate() = %+v, want nil", got)
		}
	})
}

func TestEventDecoding(t *testing.T) {
	t.Run("optional detail blocks stay nil when absent", func(t *testing.T) {
		raw := `{"id":"ev-1","agent_id":"ag-1","result_type":"cooldown","headline":"in cooldown","evaluated_at":"2026-08-30T12:00:00Z"}`

		var ev Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if ev.ConditionDefinition != nil {
			t.Error("ConditionDefinition should be nil when absent")
		}
		if ev.EntitySnapshot != nil {
			t.Error("EntitySnapshot should be nil when absent")
		}
		if ev.ConditionResult != nil {
			t.Error("ConditionResult should be nil when absent")
		}
		if ev.StateBefore != "" {
			t.Errorf("StateBefore = %q, want empty", ev.StateBefore)
		}
	})

	t.Run("unknown result_type preserved verbatim", func(t *testing.T) {
		raw := `{"id":"ev-1","result_type":"something_new"}`

		var ev Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev.ResultType != "something_new" {
			t.Errorf("ResultType = %q, want something_new", ev.ResultType)
		}
	})

	t.Run("embedded actions decode with rollback state", func(t *testing.T) {
		raw := `{"id":"ev-1","result_type":"triggered","actions_executed":[
			{"id":"act-1","evaluation_event_id":"ev-1","action_type":"scale_budget","success":true,
			 "rollback_possible":true,"state_before":{"budget":100},"state_after":{"budget":150}}]}`

		var ev Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(ev.ActionsExecuted) != 1 {
			t.Fatalf("len(ActionsExecuted) = %d, want 1", len(ev.ActionsExecuted))
		}
		act := ev.ActionsExecuted[0]
		if !act.RollbackEligible() {
			t.Error("embedded action should be rollback eligible")
		}
		if string(act.StateBefore) != `{"budget":100}` {
			t.Errorf("StateBefore = %s", act.StateBefore)
		}
	})
}
