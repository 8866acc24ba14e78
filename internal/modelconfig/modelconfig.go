// Package modelconfig holds the active AI-provider configuration.
//
// The configuration is the single source of truth for which provider and
// model the backend should generate with. It lives in memory and is mirrored
// to a single JSON file under the dgctl config directory; corruption or
// absence of that file degrades to "no configuration" rather than an error.
package modelconfig

import (
	"fmt"
	"strings"
)

// Provider identifies a supported AI provider.
type Provider string

// Supported providers.
const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
)

// DefaultOllamaEndpoint is the endpoint assumed for local Ollama when the
// user does not supply one.
const DefaultOllamaEndpoint = "http://localhost:11434"

// Config is the active provider configuration.
type Config struct {
	Provider Provider `json:"provider"`
	Model    string   `json:"model"`
	APIKey   string   `json:"api_key"`
	Endpoint string   `json:"endpoint,omitempty"`
}

// ValidationError describes a rejected configuration. It is the only error
// in this package that callers are expected to surface to the end user.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid model configuration: %s: %s", e.Field, e.Reason)
}

// Normalize fills in defaults and trims whitespace. Called before Validate.
func (c *Config) Normalize() {
	c.Model = strings.TrimSpace(c.Model)
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Endpoint = strings.TrimSpace(c.Endpoint)

	if c.Provider == ProviderOllama && c.Endpoint == "" {
		c.Endpoint = DefaultOllamaEndpoint
	}

	if c.Provider != ProviderOllama {
		// Endpoint is an Ollama-only concept.
		c.Endpoint = ""
	}
}

// Validate checks the configuration against the provider catalog.
//
//   - provider and model are required
//   - the model must be known to the provider, except Ollama which accepts
//     free-form model names (the catalog lists "custom" for that case)
//   - every provider except Ollama requires a non-empty API key
func (c *Config) Validate() error {
	spec, ok := Catalog()[c.Provider]
	if !ok {
		return &ValidationError{Field: "provider", Reason: fmt.Sprintf("unsupported provider %q", c.Provider)}
	}

	if c.Model == "" {
		return &ValidationError{Field: "model", Reason: "model is required"}
	}

	if spec.RequiresAPIKey && c.APIKey == "" {
		return &ValidationError{Field: "api_key", Reason: fmt.Sprintf("provider %q requires an API key", c.Provider)}
	}

	if c.Provider != ProviderOllama && !spec.KnownModel(c.Model) {
		return &ValidationError{Field: "model", Reason: fmt.Sprintf("unknown model %q for provider %q", c.Model, c.Provider)}
	}

	return nil
}

// APIKeyConfigured reports whether the configuration carries everything the
// provider needs credential-wise. Local Ollama never needs a key.
func (c *Config) APIKeyConfigured() bool {
	return c.Provider == ProviderOllama || c.APIKey != ""
}

// Redacted returns a copy safe for logging and display.
func (c *Config) Redacted() Config {
	out := *c
	if out.APIKey != "" {
		out.APIKey = "[REDACTED]"
	}

	return out
}
