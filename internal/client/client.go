// Package client provides the HTTP client for the auditdeck orchestrator API.
// It handles authentication, request/response serialization, and error handling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/auditdeck/auditdeck/internal/api"
	"github.com/auditdeck/auditdeck/internal/config"
	"github.com/auditdeck/auditdeck/internal/constants"
	"github.com/auditdeck/auditdeck/internal/logger"
)

// Client is a generic HTTP client for orchestrator API operations.
type Client struct {
	config     *config.Config
	logger     *slog.Logger
	httpClient *http.Client
}

// New creates a new API client.
func New(cfg *config.Config, log *slog.Logger) *Client {
	return &Client{
		config:     cfg,
		logger:     log,
		httpClient: &http.Client{},
	}
}

// Request represents an API request.
type Request struct {
	Method string
	Path   string
	Body   any
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Body       []byte
}

// buildURL constructs the full API URL from path and query string.
func (c *Client) buildURL(path string) (string, error) {
	var pathPart, queryString string
	if idx := strings.Index(path, "?"); idx != -1 {
		pathPart = path[:idx]
		queryString = path[idx+1:]
	} else {
		pathPart = path
	}

	apiURL, err := url.JoinPath(c.config.APIEndpoint, pathPart)
	if err != nil {
		return "", err
	}

	if queryString != "" {
		apiURL = apiURL + "?" + queryString
	}

	return apiURL, nil
}

// Do makes an HTTP request to the API.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		jsonData, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	apiURL, err := c.buildURL(req.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid API endpoint: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(constants.ContentTypeHeader, "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set(constants.APIKeyHeader, c.config.APIKey)
	}

	logArgs := []any{
		"operation", "HTTP.Request",
		"method", req.Method,
		"url", apiURL,
	}
	logArgs = append(logArgs, logger.GetDeadlineInfo(ctx)...)
	c.logger.Debug("calling orchestrator API", logArgs...)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("received HTTP response",
		"status", resp.StatusCode,
		"bodySize", len(body),
		"method", req.Method,
		"url", apiURL)

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// DoJSON makes a request and unmarshals the response into result.
func (c *Client) DoJSON(ctx context.Context, req Request, result any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	if resp.StatusCode >= constants.HTTPStatusBadRequest {
		var errorResp api.ErrorResponse
		if err = json.Unmarshal(resp.Body, &errorResp); err != nil {
			return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(resp.Body))
		}
		return fmt.Errorf("[%d] %s: %s", resp.StatusCode, errorResp.Error, errorResp.Details)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err = json.Unmarshal(resp.Body, result); err != nil {
		c.logger.Debug("response body", "body", string(resp.Body))
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// ListTasks fetches all audit tasks.
func (c *Client) ListTasks(ctx context.Context) ([]api.TaskSummary, error) {
	var resp []api.TaskSummary
	err := c.DoJSON(ctx, Request{
		Method: "GET",
		Path:   "/api/v1/tasks",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetTask fetches the snapshot for one task.
func (c *Client) GetTask(ctx context.Context, taskID string) (*api.TaskResponse, error) {
	var resp api.TaskResponse
	err := c.DoJSON(ctx, Request{
		Method: "GET",
		Path:   fmt.Sprintf("/api/v1/tasks/%s", url.PathEscape(taskID)),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListEvents fetches a bounded page of historical events for a task.
// The page is unordered; callers must sort by sequence.
func (c *Client) ListEvents(ctx context.Context, taskID string, limit int) ([]api.RawEvent, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	path := fmt.Sprintf("/api/v1/tasks/%s/events", url.PathEscape(taskID))
	if encoded := params.Encode(); encoded != "" {
		path = path + "?" + encoded
	}

	var resp api.EventsResponse
	if err := c.DoJSON(ctx, Request{Method: "GET", Path: path}, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// GetAgentTree fetches the flat agent record list for a task.
func (c *Client) GetAgentTree(ctx context.Context, taskID string) ([]api.AgentRecord, error) {
	var resp api.AgentTreeResponse
	err := c.DoJSON(ctx, Request{
		Method: "GET",
		Path:   fmt.Sprintf("/api/v1/tasks/%s/agents", url.PathEscape(taskID)),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Agents, nil
}

// ListFindings fetches the current findings for a task.
func (c *Client) ListFindings(ctx context.Context, taskID string) ([]api.Finding, error) {
	var resp api.FindingsResponse
	err := c.DoJSON(ctx, Request{
		Method: "GET",
		Path:   fmt.Sprintf("/api/v1/tasks/%s/findings", url.PathEscape(taskID)),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Findings, nil
}
