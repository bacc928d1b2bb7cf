package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"adwatch/pkg/adapi"
	"adwatch/pkg/config"
	"adwatch/pkg/feed"
)

// ViewType represents different views in the dashboard.
type ViewType int

const (
	// FeedView shows the workspace-wide activity feed.
	FeedView ViewType = iota
	// AgentView shows one agent's full evaluation log with joined actions.
	AgentView
	// EventDetailView shows the full detail of a single event.
	EventDetailView
	// HelpView shows the key binding overlay.
	HelpView
)

// loadMoreThreshold is how close to the bottom the cursor must be before
// the next page is requested.
const loadMoreThreshold = 3

// Model is the Bubble Tea model for the adwatch dashboard.
type Model struct {
	api      datasource
	registry *feed.RollbackRegistry
	theme    Theme

	workspace    string
	configPath   string
	refreshEvery time.Duration

	activeView ViewType

	// Workspace feed state.
	feed       *feed.State
	feedCursor int
	expanded   map[string]bool

	// Agent log state; nil until an agent is opened.
	agentLog    *feed.AgentLog
	agentCursor int
	agentName   string

	// Detail view state.
	detailEvent   *adapi.Event
	detailActions []adapi.Action
	detailRawOpen bool
	detailView    viewport.Model
	returnView    ViewType

	// Rollback in flight, keyed for the footer notice.
	pendingRollback string

	spin   spinner.Model
	width  int
	height int
	notice string
}

// newModel creates a Model showing the workspace feed with the configured
// default filter.
func newModel(api datasource, cfg *config.Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	filter := feed.Filter(cfg.Filter)
	if !filter.Valid() {
		filter = feed.FilterAll
	}

	st := feed.NewState()
	st.Filter = filter

	return Model{
		api:          api,
		registry:     feed.NewRollbackRegistry(),
		theme:        DefaultTheme(),
		workspace:    cfg.Workspace,
		refreshEvery: time.Duration(cfg.RefreshSeconds) * time.Second,
		activeView:   FeedView,
		feed:         st,
		expanded:     make(map[string]bool),
		spin:         sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	gen := m.feed.BeginReset(m.feed.Filter)
	cmds := []tea.Cmd{
		fetchFeedPageCmd(m.api, gen, m.feed.Filter, ""),
		tickCmd(m.refreshEvery),
		m.spin.Tick,
	}
	if m.configPath != "" {
		cmds = append(cmds, watchConfigCmd(m.configPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detailView.Width = msg.Width
		m.detailView.Height = m.bodyHeight()
		if m.detailEvent != nil {
			m.detailView.SetContent(m.renderDetailContent())
		}

	case feedPageMsg:
		if m.feed.ApplyPage(msg.generation, msg.page, msg.err) {
			m.feedCursor = clamp(m.feedCursor, len(m.feed.Events))
		}

	case agentPageMsg:
		if m.agentLog != nil && m.agentLog.ApplyPage(msg.generation, msg.page, msg.err) {
			m.agentCursor = clamp(m.agentCursor, len(m.agentLog.Events))
		}

	case actionsMsg:
		if m.agentLog != nil && msg.err == nil {
			m.agentLog.SetActions(msg.generation, msg.actions)
		}

	case rollbackDoneMsg:
		return m.handleRollbackDone(msg)

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.refreshEvery)}
		if m.activeView == FeedView && !m.feed.Busy() {
			gen := m.feed.BeginRefresh()
			cmds = append(cmds, fetchFeedPageCmd(m.api, gen, m.feed.Filter, ""))
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case configChangedMsg:
		return m.handleConfigChanged()
	}

	return m, nil
}

// handleKeyPress processes keyboard input and returns updated model with
// optional command.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" || key == "q" {
		return m, tea.Quit
	}
	if key == "?" && m.activeView != HelpView {
		m.returnView = m.activeView
		m.activeView = HelpView
		return m, nil
	}

	switch m.activeView {
	case AgentView:
		return m.handleAgentViewKeys(key)
	case EventDetailView:
		return m.handleDetailViewKeys(key)
	case HelpView:
		m.activeView = m.returnView
		return m, nil
	default: // FeedView
		return m.handleFeedViewKeys(key)
	}
}

// handleFeedViewKeys processes keyboard input in FeedView.
func (m Model) handleFeedViewKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "1", "2", "3":
		return m.switchFeedFilter(filterForKey(key))
	case "j", "down":
		return m.moveFeedCursor(1)
	case "k", "up":
		return m.moveFeedCursor(-1)
	case "g":
		m.feedCursor = 0
	case "G":
		if n := len(m.feed.Events); n > 0 {
			m.feedCursor = n - 1
		}
		return m.maybeLoadMoreFeed()
	case "enter":
		if ev := m.selectedFeedEvent(); ev != nil {
			m.expanded[ev.ID] = !m.expanded[ev.ID]
		}
	case "d":
		if ev := m.selectedFeedEvent(); ev != nil {
			return m.openDetail(*ev, ev.ActionsExecuted, FeedView), nil
		}
	case "a":
		if ev := m.selectedFeedEvent(); ev != nil {
			return m.openAgentLog(ev.AgentID, ev.AgentName)
		}
	case "R":
		if ev := m.selectedFeedEvent(); ev != nil {
			return m.requestRollback(ev.RollbackCandidate())
		}
	case "r":
		if !m.feed.Busy() {
			gen := m.feed.BeginRefresh()
			return m, fetchFeedPageCmd(m.api, gen, m.feed.Filter, "")
		}
	}
	return m, nil
}

// handleAgentViewKeys processes keyboard input in AgentView.
func (m Model) handleAgentViewKeys(key string) (tea.Model, tea.Cmd) {
	if m.agentLog == nil {
		m.activeView = FeedView
		return m, nil
	}
	switch key {
	case "esc", "backspace":
		m.activeView = FeedView
		m.agentLog = nil
		m.agentCursor = 0
	case "1", "2", "3":
		return m.switchAgentFilter(filterForKey(key))
	case "j", "down":
		return m.moveAgentCursor(1)
	case "k", "up":
		return m.moveAgentCursor(-1)
	case "g":
		m.agentCursor = 0
	case "G":
		if n := len(m.agentLog.Events); n > 0 {
			m.agentCursor = n - 1
		}
		return m.maybeLoadMoreAgent()
	case "enter", "d":
		if ev := m.selectedAgentEvent(); ev != nil {
			return m.openDetail(*ev, m.agentLog.ActionsFor(ev.ID), AgentView), nil
		}
	case "R":
		if ev := m.selectedAgentEvent(); ev != nil {
			return m.requestRollback(firstEligible(m.agentLog.ActionsFor(ev.ID)))
		}
	case "r":
		return m.reloadAgentLog()
	}
	return m, nil
}

// handleDetailViewKeys processes keyboard input in EventDetailView.
func (m Model) handleDetailViewKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "backspace":
		m.activeView = m.returnView
		m.detailEvent = nil
		m.detailActions = nil
		m.detailRawOpen = false
	case "s":
		m.detailRawOpen = !m.detailRawOpen
		m.detailView.SetContent(m.renderDetailContent())
	case "R":
		if m.detailEvent != nil {
			return m.requestRollback(firstEligible(m.detailActions))
		}
	case "j", "down":
		m.detailView.LineDown(1)
	case "k", "up":
		m.detailView.LineUp(1)
	case "g":
		m.detailView.GotoTop()
	case "G":
		m.detailView.GotoBottom()
	}
	return m, nil
}

// switchFeedFilter resets the feed under a new filter and refetches from the
// top. Switching to the already-active filter is a plain refresh.
func (m Model) switchFeedFilter(filter feed.Filter) (tea.Model, tea.Cmd) {
	gen := m.feed.BeginReset(filter)
	m.feedCursor = 0
	m.expanded = make(map[string]bool)
	return m, fetchFeedPageCmd(m.api, gen, filter, "")
}

// switchAgentFilter resets the agent log under a new filter.
func (m Model) switchAgentFilter(filter feed.Filter) (tea.Model, tea.Cmd) {
	gen := m.agentLog.BeginReset(filter)
	m.agentCursor = 0
	return m, tea.Batch(
		fetchAgentPageCmd(m.api, gen, m.agentLog.AgentID, filter, 0),
		fetchActionsCmd(m.api, gen, m.agentLog.AgentID),
	)
}

// openAgentLog switches to AgentView for the given agent and kicks off the
// first log page plus the action list for the client-side join.
func (m Model) openAgentLog(agentID, agentName string) (tea.Model, tea.Cmd) {
	if agentID == "" {
		return m, nil
	}
	m.agentLog = feed.NewAgentLog(agentID)
	m.agentName = agentName
	m.agentCursor = 0
	m.activeView = AgentView
	gen := m.agentLog.BeginReset(feed.FilterAll)
	return m, tea.Batch(
		fetchAgentPageCmd(m.api, gen, agentID, feed.FilterAll, 0),
		fetchActionsCmd(m.api, gen, agentID),
	)
}

// reloadAgentLog refetches the agent log from offset zero.
func (m Model) reloadAgentLog() (tea.Model, tea.Cmd) {
	if m.agentLog.Busy() {
		return m, nil
	}
	filter := m.agentLog.Filter
	gen := m.agentLog.BeginReset(filter)
	m.agentCursor = 0
	return m, tea.Batch(
		fetchAgentPageCmd(m.api, gen, m.agentLog.AgentID, filter, 0),
		fetchActionsCmd(m.api, gen, m.agentLog.AgentID),
	)
}

// openDetail switches to EventDetailView for one event. The caller supplies
// the actions to show: embedded ones from the feed, joined ones from the
// agent log.
func (m Model) openDetail(ev adapi.Event, actions []adapi.Action, from ViewType) Model {
	m.detailEvent = &ev
	m.detailActions = actions
	m.detailRawOpen = false
	m.returnView = from
	m.activeView = EventDetailView
	m.detailView = viewport.New(m.width, m.bodyHeight())
	m.detailView.SetContent(m.renderDetailContent())
	return m
}

// requestRollback starts a rollback for the given action. A nil action means
// the selected event has nothing reversible; a second press while one is in
// flight is rejected by the registry, not queued.
func (m Model) requestRollback(action *adapi.Action) (tea.Model, tea.Cmd) {
	if action == nil {
		m.notice = "nothing to roll back"
		return m, nil
	}
	m.pendingRollback = action.ID
	m.notice = fmt.Sprintf("rolling back %s...", action.ID)
	return m, rollbackCmd(m.api, m.registry, action.ID)
}

// handleRollbackDone reports the outcome in the footer and, on success,
// refreshes whichever view is active so the rolled-back state is refetched
// rather than patched locally.
func (m Model) handleRollbackDone(msg rollbackDoneMsg) (tea.Model, tea.Cmd) {
	m.pendingRollback = ""
	if msg.err != nil {
		switch {
		case errors.Is(msg.err, feed.ErrRollbackInFlight):
			m.notice = fmt.Sprintf("rollback of %s already in progress", msg.actionID)
		case errors.Is(msg.err, adapi.ErrRollbackConflict):
			m.notice = fmt.Sprintf("%s cannot be rolled back: already rolled back or not reversible", msg.actionID)
		default:
			m.notice = fmt.Sprintf("rollback of %s failed: %v", msg.actionID, msg.err)
		}
		log.Printf("rollback %s: %v", msg.actionID, msg.err)
		return m, nil
	}

	m.notice = fmt.Sprintf("rolled back %s", msg.actionID)
	switch m.activeView {
	case AgentView, EventDetailView:
		if m.agentLog != nil {
			return m.reloadAgentLog()
		}
	}
	if !m.feed.Busy() {
		gen := m.feed.BeginRefresh()
		return m, fetchFeedPageCmd(m.api, gen, m.feed.Filter, "")
	}
	return m, nil
}

// handleConfigChanged reloads the config file and applies the refresh
// interval. Filter and workspace changes require a restart; only the cheap
// knobs are picked up live.
func (m Model) handleConfigChanged() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{watchConfigCmd(m.configPath)}
	cfg, err := config.Load(m.configPath)
	if err != nil {
		log.Printf("config reload: %v", err)
		return m, tea.Batch(cmds...)
	}
	m.refreshEvery = time.Duration(cfg.RefreshSeconds) * time.Second
	m.notice = "config reloaded"
	return m, tea.Batch(cmds...)
}

func (m Model) moveFeedCursor(delta int) (tea.Model, tea.Cmd) {
	n := len(m.feed.Events)
	if n == 0 {
		return m, nil
	}
	m.feedCursor = clampDelta(m.feedCursor, delta, n)
	return m.maybeLoadMoreFeed()
}

func (m Model) moveAgentCursor(delta int) (tea.Model, tea.Cmd) {
	n := len(m.agentLog.Events)
	if n == 0 {
		return m, nil
	}
	m.agentCursor = clampDelta(m.agentCursor, delta, n)
	return m.maybeLoadMoreAgent()
}

// maybeLoadMoreFeed requests the next feed page when the cursor is near the
// bottom of what is loaded. BeginLoadMore gates re-entry, so holding j at the
// bottom issues at most one request.
func (m Model) maybeLoadMoreFeed() (tea.Model, tea.Cmd) {
	if m.feedCursor < len(m.feed.Events)-loadMoreThreshold {
		return m, nil
	}
	gen, ok := m.feed.BeginLoadMore()
	if !ok {
		return m, nil
	}
	return m, fetchFeedPageCmd(m.api, gen, m.feed.Filter, m.feed.Cursor)
}

func (m Model) maybeLoadMoreAgent() (tea.Model, tea.Cmd) {
	if m.agentCursor < len(m.agentLog.Events)-loadMoreThreshold {
		return m, nil
	}
	gen, ok := m.agentLog.BeginLoadMore()
	if !ok {
		return m, nil
	}
	return m, fetchAgentPageCmd(m.api, gen, m.agentLog.AgentID, m.agentLog.Filter, m.agentLog.Offset)
}

func (m Model) selectedFeedEvent() *adapi.Event {
	if m.feedCursor < 0 || m.feedCursor >= len(m.feed.Events) {
		return nil
	}
	return &m.feed.Events[m.feedCursor]
}

func (m Model) selectedAgentEvent() *adapi.Event {
	if m.agentLog == nil || m.agentCursor < 0 || m.agentCursor >= len(m.agentLog.Events) {
		return nil
	}
	return &m.agentLog.Events[m.agentCursor]
}

func (m Model) renderDetailContent() string {
	if m.detailEvent == nil {
		return ""
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	return renderEventDetail(m.theme, m.detailEvent, m.detailActions, m.detailRawOpen, width)
}

// bodyHeight is the vertical space left for the scrolling body after the
// status bar and footer.
func (m Model) bodyHeight() int {
	h := m.height - 4
	if h < 5 {
		h = 5
	}
	return h
}

// View implements tea.Model.
func (m Model) View() string {
	statusBar := m.renderStatusBar()
	footer := m.renderFooter()

	switch m.activeView {
	case HelpView:
		return statusBar + "\n" + renderHelp(m.theme) + "\n" + footer
	case EventDetailView:
		return statusBar + "\n" + m.detailView.View() + "\n" + footer
	case AgentView:
		return statusBar + "\n" + m.renderAgentList() + "\n" + footer
	default:
		return statusBar + "\n" + m.renderFeedList() + "\n" + footer
	}
}

// renderFeedList renders the visible window of the workspace feed.
func (m Model) renderFeedList() string {
	if m.feed.Err != nil {
		return lipgloss.NewStyle().Foreground(m.theme.Error).
			Render(fmt.Sprintf("failed to load events: %v", m.feed.Err))
	}
	if m.feed.Empty() {
		return lipgloss.NewStyle().Foreground(m.theme.Muted).
			Render(m.feed.Filter.EmptyMessage())
	}

	start, end := visibleWindow(m.feedCursor, len(m.feed.Events), m.bodyHeight())
	var b strings.Builder
	for i := start; i < end; i++ {
		ev := &m.feed.Events[i]
		b.WriteString(renderEventItem(m.theme, ev, i == m.feedCursor, m.expanded[ev.ID], m.width))
		b.WriteString("\n")
	}
	if m.feed.LoadingMore {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render(m.spin.View() + " loading more..."))
	} else if m.feed.HasMore {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render("more below"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderAgentList renders the visible window of the agent event log with
// joined actions per event.
func (m Model) renderAgentList() string {
	if m.agentLog == nil {
		return ""
	}
	if m.agentLog.Err != nil {
		return lipgloss.NewStyle().Foreground(m.theme.Error).
			Render(fmt.Sprintf("failed to load agent log: %v", m.agentLog.Err))
	}
	if len(m.agentLog.Events) == 0 && !m.agentLog.Busy() {
		return lipgloss.NewStyle().Foreground(m.theme.Muted).
			Render(m.agentLog.Filter.EmptyMessage())
	}

	start, end := visibleWindow(m.agentCursor, len(m.agentLog.Events), m.bodyHeight())
	var b strings.Builder
	for i := start; i < end; i++ {
		ev := &m.agentLog.Events[i]
		b.WriteString(renderAgentLogItem(m.theme, ev, m.agentLog.ActionsFor(ev.ID), i == m.agentCursor, m.width))
		b.WriteString("\n")
	}
	if m.agentLog.LoadingMore {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render(m.spin.View() + " loading more..."))
	} else if m.agentLog.HasMore() {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).
			Render(fmt.Sprintf("showing %d of %d", len(m.agentLog.Events), m.agentLog.Total)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderStatusBar renders workspace, active view, filter, and fetch state.
func (m Model) renderStatusBar() string {
	theme := m.theme

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render("adwatch")
	ws := lipgloss.NewStyle().Foreground(theme.Muted).Render(m.workspace)

	var context string
	switch m.activeView {
	case AgentView:
		context = "agent: " + m.agentName
		if m.agentLog != nil {
			context += " · filter: " + string(m.agentLog.Filter)
		}
	case EventDetailView:
		context = "event detail"
	case HelpView:
		context = "help"
	default:
		context = "filter: " + string(m.feed.Filter)
	}

	activity := ""
	switch {
	case m.pendingRollback != "":
		activity = m.spin.View() + " rollback"
	case m.busy():
		activity = m.spin.View() + " loading"
	}

	parts := []string{title, ws, context}
	if activity != "" {
		parts = append(parts, activity)
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, strings.Join(parts, " | "))
}

// renderFooter renders the notice line plus the key hint line.
func (m Model) renderFooter() string {
	theme := m.theme
	notice := " "
	if m.notice != "" {
		notice = lipgloss.NewStyle().Foreground(theme.Warning).Render(m.notice)
	}

	var hints string
	switch m.activeView {
	case AgentView:
		hints = "j/k move · enter detail · R rollback · 1/2/3 filter · r refresh · esc back · q quit"
	case EventDetailView:
		hints = "j/k scroll · s raw data · R rollback · esc back · q quit"
	case HelpView:
		hints = "any key to close"
	default:
		hints = "j/k move · enter expand · d detail · a agent · R rollback · 1/2/3 filter · r refresh · ? help · q quit"
	}
	return notice + "\n" + lipgloss.NewStyle().Foreground(theme.Muted).Render(hints)
}

func (m Model) busy() bool {
	if m.activeView == AgentView && m.agentLog != nil {
		return m.agentLog.Busy()
	}
	return m.feed.Busy()
}

// filterForKey maps the feed filter hotkeys: all, triggered, error.
func filterForKey(key string) feed.Filter {
	switch key {
	case "2":
		return feed.FilterTriggered
	case "3":
		return feed.FilterError
	default:
		return feed.FilterAll
	}
}

// firstEligible returns the first rollback-eligible action, or nil.
func firstEligible(actions []adapi.Action) *adapi.Action {
	for i := range actions {
		if actions[i].RollbackEligible() {
			return &actions[i]
		}
	}
	return nil
}

// visibleWindow returns the [start, end) slice of rows to draw so the cursor
// stays on screen.
func visibleWindow(cursor, total, height int) (int, int) {
	if total == 0 {
		return 0, 0
	}
	if height <= 0 {
		height = 1
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > total {
		end = total
		start = end - height
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	if i < 0 {
		return 0
	}
	return i
}

func clampDelta(i, delta, n int) int {
	return clamp(i+delta, n)
}
