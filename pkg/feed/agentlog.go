package feed

import (
	"adwatch/pkg/adapi"
)

// AgentLog owns the per-agent detail log: offset-paginated events plus the
// separately fetched action list, joined client-side by evaluation_event_id.
// Events and actions are separate backend resources; the join index is
// rebuilt whenever either side changes so it can never serve stale rows.
//
// The generation discipline matches State: a token from before the latest
// reset discards the response it accompanies.
type AgentLog struct {
	AgentID string
	Events  []adapi.Event
	Total   int
	Offset  int
	Filter  Filter

	Loading     bool
	LoadingMore bool
	Err         error

	actions    []adapi.Action
	index      map[string][]adapi.Action
	generation uint64
	seen       map[string]struct{}
}

// NewAgentLog creates an empty detail log for one agent.
func NewAgentLog(agentID string) *AgentLog {
	return &AgentLog{
		AgentID: agentID,
		Filter:  FilterAll,
		seen:    make(map[string]struct{}),
	}
}

// Generation returns the current fetch generation.
func (l *AgentLog) Generation() uint64 { return l.generation }

// HasMore reports whether the backend holds events beyond what is loaded.
func (l *AgentLog) HasMore() bool { return len(l.Events) < l.Total }

// BeginReset clears the loaded events, switches filter, and starts a fresh
// offset-0 load. The action list is cleared too: it is refetched once per
// filter-load and the join index rebuilt from the new list.
func (l *AgentLog) BeginReset(filter Filter) uint64 {
	l.generation++
	l.Events = nil
	l.Total = 0
	l.Offset = 0
	l.Filter = filter
	l.Loading = true
	l.LoadingMore = false
	l.Err = nil
	l.actions = nil
	l.index = nil
	l.seen = make(map[string]struct{})
	return l.generation
}

// BeginLoadMore starts a next-page load, gated exactly like State.
func (l *AgentLog) BeginLoadMore() (uint64, bool) {
	if !l.HasMore() || l.Loading || l.LoadingMore {
		return l.generation, false
	}
	l.LoadingMore = true
	l.Err = nil
	return l.generation, true
}

// ApplyPage delivers one offset page. The offset advances by the raw page
// length (the server's slice position), while de-duplication by event id
// still protects the displayed list against overlap from events inserted
// between page fetches.
func (l *AgentLog) ApplyPage(gen uint64, page *adapi.AgentEventPage, err error) bool {
	if gen != l.generation {
		return false
	}

	fresh := l.Loading
	l.Loading = false
	l.LoadingMore = false

	if err != nil {
		l.Err = err
		if fresh {
			l.Events = nil
			l.Total = 0
			l.Offset = 0
			l.seen = make(map[string]struct{})
			l.rebuildIndex()
		}
		return true
	}

	l.Err = nil
	if fresh {
		l.Events = nil
		l.Offset = 0
		l.seen = make(map[string]struct{})
	}
	for _, ev := range page.Events {
		if _, dup := l.seen[ev.ID]; dup {
			continue
		}
		l.seen[ev.ID] = struct{}{}
		l.Events = append(l.Events, ev)
	}
	l.Offset += len(page.Events)
	l.Total = page.Total
	l.rebuildIndex()
	return true
}

// SetActions replaces the action list fetched alongside the events and
// rebuilds the join index. A stale generation token discards the list.
func (l *AgentLog) SetActions(gen uint64, actions []adapi.Action) bool {
	if gen != l.generation {
		return false
	}
	l.actions = actions
	l.rebuildIndex()
	return true
}

// Actions returns the currently held action list.
func (l *AgentLog) Actions() []adapi.Action { return l.actions }

// ActionsFor returns the actions executed for the given event, in the order
// the backend listed them. The result comes from the prebuilt index, which is
// in sync with the latest events and actions by construction.
func (l *AgentLog) ActionsFor(eventID string) []adapi.Action {
	return l.index[eventID]
}

// rebuildIndex recomputes the evaluation_event_id -> actions index from the
// current action list.
func (l *AgentLog) rebuildIndex() {
	if len(l.actions) == 0 {
		l.index = nil
		return
	}
	idx := make(map[string][]adapi.Action, len(l.actions))
	for _, a := range l.actions {
		idx[a.EvaluationEventID] = append(idx[a.EvaluationEventID], a)
	}
	l.index = idx
}

// Busy reports whether any fetch is in flight.
func (l *AgentLog) Busy() bool { return l.Loading || l.LoadingMore }
