package adapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultFeedLimit is the page size for the workspace feed and agent log.
const DefaultFeedLimit = 20

// MaxActionsLimit caps one agent-actions fetch; the detail log fetches the
// action list once per filter-load and joins it client-side.
const MaxActionsLimit = 500

// Client talks to the agent evaluation backend for one workspace.
// It is safe for concurrent use.
type Client struct {
	baseURL     string
	token       string
	workspaceID string
	httpClient  *http.Client
}

// NewClient creates a Client for the given backend base URL and workspace.
// token may be empty for unauthenticated local backends.
func NewClient(baseURL, token, workspaceID string) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		token:       token,
		workspaceID: workspaceID,
		httpClient:  http.DefaultClient,
	}
}

// WorkspaceID returns the workspace the client is bound to.
func (c *Client) WorkspaceID() string { return c.workspaceID }

// ListEventsParams filters one workspace feed page.
type ListEventsParams struct {
	// ResultType restricts the feed: "triggered", "error", or "" / "all".
	// The empty / "all" filter maps to the actionable subset (triggered);
	// condition-not-met noise is only reachable via the agent detail log.
	ResultType string
	Limit      int
	Cursor     string
}

// ListWorkspaceEvents fetches one cursor-paginated page of the workspace-wide
// feed, newest first. An empty NextCursor on the returned page means there are
// no further pages.
func (c *Client) ListWorkspaceEvents(ctx context.Context, params ListEventsParams) (*EventPage, error) {
	q := url.Values{}
	q.Set("result_type", effectiveResultType(params.ResultType))
	q.Set("limit", strconv.Itoa(limitOrDefault(params.Limit, DefaultFeedLimit)))
	if params.Cursor != "" {
		q.Set("cursor", params.Cursor)
	}

	reqURL := fmt.Sprintf("%s/api/v1/workspaces/%s/events?%s", c.baseURL, url.PathEscape(c.workspaceID), q.Encode())
	body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("list workspace events: %w", err)
	}

	var page EventPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parse workspace events: %w", err)
	}
	return &page, nil
}

// ListAgentEventsParams filters one agent detail log page.
type ListAgentEventsParams struct {
	AgentID string
	// ResultType restricts the log; "" / "all" returns every result type,
	// including condition_not_met entries excluded from the workspace feed.
	ResultType string
	Limit      int
	Offset     int
}

// agentEventsResponse tolerates both "events" and the older "items" alias the
// backend used before the feed endpoints were unified.
type agentEventsResponse struct {
	Events []Event `json:"events"`
	Items  []Event `json:"items"`
	Total  int     `json:"total"`
}

// ListAgentEvents fetches one offset-paginated page of a single agent's
// evaluation log, newest first, with the total matching count.
func (c *Client) ListAgentEvents(ctx context.Context, params ListAgentEventsParams) (*AgentEventPage, error) {
	if params.AgentID == "" {
		return nil, errors.New("list agent events: agent id required")
	}

	q := url.Values{}
	if rt := params.ResultType; rt != "" && rt != "all" {
		q.Set("result_type", rt)
	}
	q.Set("limit", strconv.Itoa(limitOrDefault(params.Limit, DefaultFeedLimit)))
	q.Set("offset", strconv.Itoa(max(params.Offset, 0)))

	reqURL := fmt.Sprintf("%s/api/v1/workspaces/%s/agents/%s/events?%s",
		c.baseURL, url.PathEscape(c.workspaceID), url.PathEscape(params.AgentID), q.Encode())
	body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("list agent events: %w", err)
	}

	var resp agentEventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse agent events: %w", err)
	}

	events := resp.Events
	if events == nil {
		events = resp.Items
	}
	return &AgentEventPage{Events: events, Total: resp.Total}, nil
}

// ListAgentActions fetches the executed-action list for one agent, newest
// first. limit is clamped to MaxActionsLimit; zero means the maximum, since
// the caller joins the full list against events client-side.
func (c *Client) ListAgentActions(ctx context.Context, agentID string, limit int) ([]Action, error) {
	if agentID == "" {
		return nil, errors.New("list agent actions: agent id required")
	}
	if limit <= 0 || limit > MaxActionsLimit {
		limit = MaxActionsLimit
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s/api/v1/workspaces/%s/agents/%s/actions?%s",
		c.baseURL, url.PathEscape(c.workspaceID), url.PathEscape(agentID), q.Encode())
	body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("list agent actions: %w", err)
	}

	var resp struct {
		Items []Action `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse agent actions: %w", err)
	}
	return resp.Items, nil
}

// RollbackAction asks the backend to reverse a previously executed action.
// Returns an error wrapping ErrRollbackConflict if the action was already
// rolled back or is not rollback-possible.
func (c *Client) RollbackAction(ctx context.Context, actionID string) error {
	if actionID == "" {
		return errors.New("rollback action: action id required")
	}

	reqURL := fmt.Sprintf("%s/api/v1/workspaces/%s/actions/%s/rollback",
		c.baseURL, url.PathEscape(c.workspaceID), url.PathEscape(actionID))
	_, err := c.doRequest(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return fmt.Errorf("rollback action %s: %w: %s", actionID, ErrRollbackConflict, apiErr.Body)
		}
		return fmt.Errorf("rollback action %s: %w", actionID, err)
	}
	return nil
}

// doRequest performs one backend round-trip and returns the response body.
// Non-2xx statuses become *APIError with the body preserved for display.
func (c *Client) doRequest(ctx context.Context, method, reqURL string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode, Body: truncateBody(respBody)}
	}
	return respBody, nil
}

// effectiveResultType maps the feed filter to the backend query value.
// "" and "all" collapse to triggered: the workspace-wide feed deliberately
// shows only actionable outcomes.
func effectiveResultType(filter string) string {
	if filter == "" || filter == "all" {
		return string(ResultTriggered)
	}
	return filter
}

func limitOrDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

// truncateBody bounds error bodies so a misbehaving backend cannot flood
// error messages.
func truncateBody(b []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(b))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
