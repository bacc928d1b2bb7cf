package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"adwatch/pkg/adapi"
	"adwatch/pkg/feed"
)

// datasource is the slice of the backend client the dashboard needs.
// *adapi.Client satisfies it; tests substitute a stub.
type datasource interface {
	ListWorkspaceEvents(ctx context.Context, params adapi.ListEventsParams) (*adapi.EventPage, error)
	ListAgentEvents(ctx context.Context, params adapi.ListAgentEventsParams) (*adapi.AgentEventPage, error)
	ListAgentActions(ctx context.Context, agentID string, limit int) ([]adapi.Action, error)
	RollbackAction(ctx context.Context, actionID string) error
}

const fetchTimeout = 15 * time.Second

// tickMsg drives the periodic feed refresh.
type tickMsg time.Time

// feedPageMsg carries one workspace feed page. Generation ties the
// response to the fetch that requested it so stale replies are dropped.
type feedPageMsg struct {
	generation uint64
	page       *adapi.EventPage
	err        error
}

// agentPageMsg carries one agent event log page.
type agentPageMsg struct {
	generation uint64
	page       *adapi.AgentEventPage
	err        error
}

// actionsMsg carries the full action list for the agent under inspection.
type actionsMsg struct {
	generation uint64
	actions    []adapi.Action
	err        error
}

// rollbackDoneMsg reports the outcome of a rollback request.
type rollbackDoneMsg struct {
	actionID string
	err      error
}

// configChangedMsg is emitted when the config file on disk changes.
type configChangedMsg struct{}

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchFeedPageCmd(api datasource, generation uint64, filter feed.Filter, cursor string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		page, err := api.ListWorkspaceEvents(ctx, adapi.ListEventsParams{
			ResultType: string(filter),
			Cursor:     cursor,
		})
		return feedPageMsg{generation: generation, page: page, err: err}
	}
}

func fetchAgentPageCmd(api datasource, generation uint64, agentID string, filter feed.Filter, offset int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		page, err := api.ListAgentEvents(ctx, adapi.ListAgentEventsParams{
			AgentID:    agentID,
			ResultType: string(filter),
			Offset:     offset,
		})
		return agentPageMsg{generation: generation, page: page, err: err}
	}
}

func fetchActionsCmd(api datasource, generation uint64, agentID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		actions, err := api.ListAgentActions(ctx, agentID, 0)
		return actionsMsg{generation: generation, actions: actions, err: err}
	}
}

func rollbackCmd(api datasource, registry *feed.RollbackRegistry, actionID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		err := registry.TryDo(ctx, actionID, func(ctx context.Context) error {
			return api.RollbackAction(ctx, actionID)
		})
		return rollbackDoneMsg{actionID: actionID, err: err}
	}
}
