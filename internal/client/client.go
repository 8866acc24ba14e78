// Package client provides the API client for the DataGenesis backend.
//
// The client handles authentication and provides methods for:
//   - Health probing (never returns an error; failures normalize to unhealthy)
//   - Reading agent orchestrator status
//   - Configuring and testing the backend AI provider
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/datagenesis-ai/dgctl/internal/buildinfo"
)

const (
	// DefaultBaseURL is the default backend endpoint.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout bounds every request, including health probes.
	DefaultTimeout = 30 * time.Second
)

// Client is the DataGenesis API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client authenticated with the given bearer token.
// An empty token is allowed; the backend treats such requests as guest access.
func New(token string) *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// WithBaseURL sets a custom base URL.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthResult is the normalized outcome of a health probe.
//
// Transport failures, timeouts, and non-OK statuses all surface as
// Healthy=false with Err set; Health never returns a Go error so callers
// cannot accidentally let a probe failure escape a poll cycle.
type HealthResult struct {
	Healthy bool
	Data    map[string]any
	Err     string
}

// Health probes GET /api/health and normalizes the outcome.
//
// On a 200 response the body is parsed into Data; an unparseable body is
// treated as absence of data, not as a failed probe.
func (c *Client) Health(ctx context.Context) HealthResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", http.NoBody)
	if err != nil {
		return HealthResult{Err: fmt.Sprintf("create request: %v", err)}
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthResult{Err: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HealthResult{Err: fmt.Sprintf("health check returned status %d", resp.StatusCode)}
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		// Healthy transport, garbled body: report healthy with no detail.
		return HealthResult{Healthy: true}
	}

	return HealthResult{Healthy: true, Data: data}
}

// AgentState describes one orchestrator agent.
type AgentState struct {
	AgentID     string  `json:"agent_id,omitempty"`
	Name        string  `json:"name,omitempty"`
	Status      string  `json:"status"`
	Performance float64 `json:"performance,omitempty"`
}

// AgentsStatus is the response from GET /api/agents/status.
type AgentsStatus struct {
	OrchestratorStatus string                `json:"orchestrator_status"`
	TotalAgents        int                   `json:"total_agents"`
	Agents             map[string]AgentState `json:"agents"`
}

// AgentsStatus fetches the detailed per-agent orchestrator status.
func (c *Client) AgentsStatus(ctx context.Context) (*AgentsStatus, error) {
	var result AgentsStatus
	if err := c.getJSON(ctx, "/api/agents/status", "agents status", &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// getJSON issues a GET request and decodes a JSON response body.
func (c *Client) getJSON(ctx context.Context, path, operation string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unexpectedStatus(operation, resp.StatusCode, resp.Body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parse %s response: %w", operation, err)
	}

	return nil
}

// postJSON issues a POST request with a JSON body and decodes the response.
func (c *Client) postJSON(ctx context.Context, path, operation string, body, v any) error {
	payload := []byte(`{}`)

	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unexpectedStatus(operation, resp.StatusCode, resp.Body)
	}

	if v == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parse %s response: %w", operation, err)
	}

	return nil
}

func (c *Client) setRequestHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "dgctl/"+buildinfo.Version)
}

// unexpectedStatus creates a formatted error from an unexpected HTTP status
// code, preferring the backend's {"detail": ...} error body when present.
func unexpectedStatus(operation string, statusCode int, body io.Reader) error {
	respBody, readErr := io.ReadAll(body)
	if readErr != nil {
		return fmt.Errorf("%s failed with status %d (failed to read body: %v)", operation, statusCode, readErr)
	}

	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(respBody, &detail); err == nil && detail.Detail != "" {
		return fmt.Errorf("%s failed with status %d: %s", operation, statusCode, detail.Detail)
	}

	return fmt.Errorf("%s failed with status %d: %s", operation, statusCode, bytes.TrimSpace(respBody))
}
