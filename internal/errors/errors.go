// Package errors provides structured CLI error types for dgctl.
//
// CLIError wraps errors with user-facing messages, hints, and exit codes
// to provide consistent, actionable error output across all commands.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes for CLI errors.
const (
	ExitSuccess   = 0  // Successful execution
	ExitGeneral   = 1  // General error
	ExitAuth      = 2  // Authentication error
	ExitNetwork   = 3  // Network/API error
	ExitConfig    = 4  // Configuration error
	ExitTimeout   = 5  // Execution timeout
	ExitExecution = 6  // Execution failure
	ExitUsage     = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// --- Common error constructors ---

// NotAuthenticated returns an error indicating missing credentials.
func NotAuthenticated() *CLIError {
	return &CLIError{
		Message: "Not authenticated",
		Hint:    "Run 'dgctl auth login' to authenticate",
		Code:    ExitAuth,
	}
}

// AuthFailed returns an error for failed authentication.
func AuthFailed(cause error) *CLIError {
	return &CLIError{
		Message: "Authentication failed",
		Hint:    "Check your API token or run 'dgctl auth login'",
		Cause:   cause,
		Code:    ExitAuth,
	}
}

// CannotPrompt returns an error when interactive prompts are unavailable.
func CannotPrompt(envVar string) *CLIError {
	return &CLIError{
		Message: "Cannot prompt in non-interactive mode",
		Hint:    fmt.Sprintf("Set %s environment variable instead", envVar),
		Code:    ExitUsage,
	}
}

// TokenEmpty returns an error when the API token is empty.
func TokenEmpty() *CLIError {
	return &CLIError{
		Message: "API token cannot be empty",
		Hint:    "Enter a valid token or set DGCTL_API_TOKEN environment variable",
		Code:    ExitAuth,
	}
}

// BackendUnreachable returns an error when the backend cannot be reached.
func BackendUnreachable(url string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Cannot reach DataGenesis backend at %s", url),
		Hint:    "Check that the backend is running, or set DGCTL_API_URL",
		Cause:   cause,
		Code:    ExitNetwork,
	}
}

// BackendUnhealthy returns an error when the backend reports unhealthy.
func BackendUnhealthy(reason string) *CLIError {
	msg := "DataGenesis backend is unhealthy"
	if reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, reason)
	}

	return &CLIError{
		Message: msg,
		Hint:    "Run 'dgctl doctor' for a full diagnosis",
		Code:    ExitNetwork,
	}
}

// InvalidProvider returns an error for an unknown AI provider.
func InvalidProvider(name string, supported []string) *CLIError {
	hint := "No providers available"
	if len(supported) > 0 {
		hint = fmt.Sprintf("Supported providers: %s", strings.Join(supported, ", "))
	}

	return &CLIError{
		Message: fmt.Sprintf("Invalid provider: %s", name),
		Hint:    hint,
		Code:    ExitUsage,
	}
}

// ModelConfigInvalid returns an error for a rejected model configuration.
func ModelConfigInvalid(cause error) *CLIError {
	return &CLIError{
		Message: "Model configuration rejected",
		Hint:    "Run 'dgctl model providers' to see valid providers and models",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// ModelNotConfigured returns an error when no model configuration exists.
func ModelNotConfigured() *CLIError {
	return &CLIError{
		Message: "No AI model configured",
		Hint:    "Run 'dgctl model set' to configure a provider",
		Code:    ExitConfig,
	}
}

// ConnectionTestFailed returns an error when the provider connection test fails.
// It detects common error patterns and provides specific hints.
func ConnectionTestFailed(detail string) *CLIError {
	msg := "Provider connection test failed"
	hint := ""

	// Detect common error patterns
	switch {
	case containsAny(detail, "rate limit", "rate_limit", "429"):
		msg = "Provider rate limit exceeded"
		hint = "Wait a moment and try again, or check your API usage limits"
	case containsAny(detail, "authentication", "unauthorized", "401", "invalid_api_key", "api key"):
		msg = "Provider authentication failed"
		hint = "Check the API key passed to 'dgctl model set'"
	case containsAny(detail, "quota", "billing", "insufficient"):
		msg = "Provider quota exhausted"
		hint = "Check your provider billing and quota limits"
	case containsAny(detail, "overloaded", "503", "service unavailable"):
		msg = "Provider is temporarily overloaded"
		hint = "Wait a moment and try again"
	case containsAny(detail, "connection", "network", "timeout"):
		msg = "Network error reaching the provider"
		hint = "Check your network connection and the provider endpoint"
	default:
		if detail != "" {
			// Truncate long error messages
			if len(detail) > 200 {
				detail = detail[:200] + "..."
			}

			hint = detail
		}
	}

	return &CLIError{
		Message: msg,
		Hint:    hint,
		Code:    ExitExecution,
	}
}

// ConfigFailed returns an error for configuration save failures.
func ConfigFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Check file permissions for your dgctl config directory or run 'dgctl doctor'",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// ChannelFailed returns an error when the event channel exhausts reconnects.
func ChannelFailed(attempts int) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Event channel failed after %d reconnect attempts", attempts),
		Hint:    "Check that the backend websocket endpoint is reachable, then reconnect",
		Code:    ExitNetwork,
	}
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}

	return false
}
