package client

import (
	"context"
)

// ConfigureAIRequest is the request body for POST /api/ai/configure.
type ConfigureAIRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint,omitempty"`
}

// ConfigureAIResponse is the response from configuring the backend provider.
type ConfigureAIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Endpoint string `json:"endpoint,omitempty"`
}

// ConfigureAI pushes a provider configuration to the backend.
func (c *Client) ConfigureAI(ctx context.Context, req *ConfigureAIRequest) (*ConfigureAIResponse, error) {
	var result ConfigureAIResponse
	if err := c.postJSON(ctx, "/api/ai/configure", "configure ai", req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// TestConnectionResponse is the response from POST /api/ai/test-connection.
type TestConnectionResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// TestConnection asks the backend to exercise the currently configured
// provider with a minimal generation.
func (c *Client) TestConnection(ctx context.Context) (*TestConnectionResponse, error) {
	var result TestConnectionResponse
	if err := c.postJSON(ctx, "/api/ai/test-connection", "test connection", nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// AIStatusResponse is the response from GET /api/ai/status.
type AIStatusResponse struct {
	IsConfigured bool   `json:"is_configured"`
	Provider     string `json:"provider,omitempty"`
	Model        string `json:"model,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
}

// AIStatus reports whether the backend currently has an AI provider configured.
func (c *Client) AIStatus(ctx context.Context) (*AIStatusResponse, error) {
	var result AIStatusResponse
	if err := c.getJSON(ctx, "/api/ai/status", "ai status", &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ProviderInfo describes one supported AI provider as advertised by the backend.
type ProviderInfo struct {
	Name             string   `json:"name"`
	Models           []string `json:"models"`
	RequiresAPIKey   bool     `json:"requires_api_key"`
	RequiresEndpoint bool     `json:"requires_endpoint,omitempty"`
	DefaultEndpoint  string   `json:"default_endpoint,omitempty"`
	APIKeyFormat     string   `json:"api_key_format,omitempty"`
}

type providersResponse struct {
	Providers map[string]ProviderInfo `json:"providers"`
}

// Providers fetches the backend's supported provider and model table.
func (c *Client) Providers(ctx context.Context) (map[string]ProviderInfo, error) {
	var result providersResponse
	if err := c.getJSON(ctx, "/api/ai/providers", "list providers", &result); err != nil {
		return nil, err
	}

	return result.Providers, nil
}
