// Package feed holds the state machines behind the agent activity feed:
// the cursor-paginated workspace feed, the offset-paginated per-agent detail
// log with its client-side event/action join, and the shared rollback
// registry. The types are UI-framework independent so both the CLI and the
// dashboard drive them, and so their pagination and race-protection semantics
// are testable without a terminal.
package feed

import (
	"adwatch/pkg/adapi"
)

// Filter selects which evaluation outcomes the feed shows.
type Filter string

const (
	// FilterAll shows the actionable subset. For the workspace-wide feed the
	// backend maps this to triggered events; condition-not-met log entries
	// are only reachable via the agent detail log.
	FilterAll Filter = "all"
	// FilterTriggered shows only triggered events.
	FilterTriggered Filter = "triggered"
	// FilterError shows only evaluation errors.
	FilterError Filter = "error"
)

// Valid reports whether f is a recognized feed filter.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterTriggered, FilterError:
		return true
	}
	return false
}

// EmptyMessage is the per-filter empty-state line shown when a fresh load
// returns no events.
func (f Filter) EmptyMessage() string {
	switch f {
	case FilterTriggered:
		return "No triggers found"
	case FilterError:
		return "No errors found"
	default:
		return "No events found"
	}
}

// State owns the workspace feed: the loaded events, the pagination cursor,
// the active filter, and the loading/error flags. One State instance belongs
// to exactly one view; there is no cross-view shared mutable feed state.
//
// Every fetch is tied to the generation current when it was started. A filter
// change or refresh bumps the generation, so a late response from a previous
// filter session is discarded instead of overwriting newer state. This is the
// replacement for a mounted-component check: correctness, not optimization.
type State struct {
	Events  []adapi.Event
	Cursor  string
	HasMore bool
	Filter  Filter

	Loading     bool // fresh load (reset or refresh) in flight
	LoadingMore bool // next-page load in flight
	Err         error

	generation uint64
	seen       map[string]struct{}
}

// NewState creates an empty feed state with the default filter.
func NewState() *State {
	return &State{Filter: FilterAll, seen: make(map[string]struct{})}
}

// Generation returns the current fetch generation. Responses carrying an
// older generation must be dropped via ApplyPage's token check.
func (s *State) Generation() uint64 { return s.generation }

// BeginReset clears all loaded state, switches to the given filter, and
// starts a fresh page-1 load. Returns the generation token the caller must
// hand back to ApplyPage. Cached pages are never reused across filters.
func (s *State) BeginReset(filter Filter) uint64 {
	s.generation++
	s.Events = nil
	s.Cursor = ""
	s.HasMore = false
	s.Filter = filter
	s.Loading = true
	s.LoadingMore = false
	s.Err = nil
	s.seen = make(map[string]struct{})
	return s.generation
}

// BeginRefresh re-runs the page-1 fetch for the current filter. Unlike
// BeginReset the loaded events stay visible until the replacement page
// arrives, so a periodic refresh does not blank the list.
func (s *State) BeginRefresh() uint64 {
	s.generation++
	s.Loading = true
	s.LoadingMore = false
	s.Err = nil
	return s.generation
}

// BeginLoadMore starts a next-page load. It is gated: nothing happens unless
// there is a further page and no load of either kind is already in flight.
// The second return value reports whether a load was actually started.
func (s *State) BeginLoadMore() (uint64, bool) {
	if !s.HasMore || s.Loading || s.LoadingMore {
		return s.generation, false
	}
	s.LoadingMore = true
	s.Err = nil
	return s.generation, true
}

// ApplyPage delivers the result of a fetch started with the given generation
// token. Stale tokens are discarded without touching state; the return value
// reports whether the page was applied.
//
// On success a fresh load replaces the event list and a load-more appends,
// de-duplicating by event id so overlapping pages never produce duplicates.
// On failure a fresh load blanks the list (no stale events from a previous
// filter survive) while a load-more failure preserves what is loaded.
func (s *State) ApplyPage(gen uint64, page *adapi.EventPage, err error) bool {
	if gen != s.generation {
		return false
	}

	fresh := s.Loading
	s.Loading = false
	s.LoadingMore = false

	if err != nil {
		s.Err = err
		if fresh {
			s.Events = nil
			s.Cursor = ""
			s.HasMore = false
			s.seen = make(map[string]struct{})
		}
		return true
	}

	s.Err = nil
	if fresh {
		s.Events = nil
		s.seen = make(map[string]struct{})
	}
	for _, ev := range page.Events {
		if _, dup := s.seen[ev.ID]; dup {
			continue
		}
		s.seen[ev.ID] = struct{}{}
		s.Events = append(s.Events, ev)
	}
	s.Cursor = page.NextCursor
	s.HasMore = page.NextCursor != ""
	return true
}

// Busy reports whether any fetch is in flight.
func (s *State) Busy() bool { return s.Loading || s.LoadingMore }

// Empty reports whether a completed fresh load yielded no events.
func (s *State) Empty() bool {
	return !s.Loading && s.Err == nil && len(s.Events) == 0
}
