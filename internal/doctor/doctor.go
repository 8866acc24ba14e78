// Package doctor provides diagnostic checks for dgctl health.
//
// This package implements a check framework that validates:
//   - Backend connectivity and response time
//   - Backend version compatibility
//   - Authentication status and credential source
//   - AI engine configuration, both backend-side and local
package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/datagenesis-ai/dgctl/internal/auth"
	"github.com/datagenesis-ai/dgctl/internal/client"
	"github.com/datagenesis-ai/dgctl/internal/config"
	"github.com/datagenesis-ai/dgctl/internal/modelconfig"
)

// MinBackendVersion is the oldest backend release dgctl is tested against.
const MinBackendVersion = "1.0.0"

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string
	Status  Status
	Message string
	Detail  string // Optional additional detail
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// New creates a new diagnostic runner.
func New() *Runner {
	r := &Runner{}

	// Register default checks
	r.AddCheck("Backend Connectivity", checkBackendConnectivity)
	r.AddCheck("Backend Version", checkBackendVersion)
	r.AddCheck("Authentication", checkAuthentication)
	r.AddCheck("AI Engine", checkAIEngine)
	r.AddCheck("Model Config", checkModelConfig)

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

func backendClient() (*client.Client, string) {
	cfg := config.Load()
	_, token := auth.GetCredentials()

	return client.New(token).WithBaseURL(cfg.APIURL()), cfg.APIURL()
}

// checkBackendConnectivity probes the backend health endpoint.
func checkBackendConnectivity(ctx context.Context) Result {
	c, apiURL := backendClient()

	start := time.Now()
	res := c.Health(ctx)
	elapsed := time.Since(start)

	if !res.Healthy {
		return Result{
			Status:  StatusFail,
			Message: apiURL,
			Detail:  res.Err,
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%dms)", apiURL, elapsed.Milliseconds()),
	}
}

// checkBackendVersion compares the reported backend version against the
// minimum supported release.
func checkBackendVersion(ctx context.Context) Result {
	c, _ := backendClient()

	res := c.Health(ctx)
	if !res.Healthy {
		return Result{
			Status:  StatusWarn,
			Message: "Unknown (backend unreachable)",
		}
	}

	reported, _ := res.Data["version"].(string)
	if reported == "" {
		return Result{
			Status:  StatusWarn,
			Message: "Backend did not report a version",
		}
	}

	current, err := semver.NewVersion(reported)
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("Unparseable backend version %q", reported),
			Detail:  err.Error(),
		}
	}

	minimum := semver.MustParse(MinBackendVersion)
	if current.LessThan(minimum) {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("v%s (v%s or newer recommended)", reported, MinBackendVersion),
			Detail:  "Upgrade the DataGenesis backend for full compatibility",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: "v" + reported,
	}
}

// checkAuthentication reports stored credentials and their source. Missing
// credentials are a warning, not a failure: the backend accepts guest access.
func checkAuthentication(_ context.Context) Result {
	source, token := auth.GetCredentials()

	if token == "" {
		return Result{
			Status:  StatusWarn,
			Message: "No credentials (guest access)",
			Detail:  "Run 'dgctl auth login' to authenticate",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("Token configured (via %s)", source),
	}
}

// checkAIEngine reads the backend's AI configuration status.
func checkAIEngine(ctx context.Context) Result {
	c, _ := backendClient()

	status, err := c.AIStatus(ctx)
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: "Unknown (backend unreachable)",
			Detail:  err.Error(),
		}
	}

	if !status.IsConfigured {
		return Result{
			Status:  StatusWarn,
			Message: "Not configured",
			Detail:  "Run 'dgctl model set' to configure a provider",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s / %s", status.Provider, status.Model),
	}
}

// checkModelConfig validates the locally persisted provider configuration.
func checkModelConfig(_ context.Context) Result {
	store, err := modelconfig.NewFileStore(nil)
	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: "Cannot open local model configuration",
			Detail:  err.Error(),
		}
	}

	cfg, ok := store.Active()
	if !ok {
		return Result{
			Status:  StatusWarn,
			Message: "No local model configuration",
			Detail:  "Run 'dgctl model set' to configure a provider",
		}
	}

	if err := cfg.Validate(); err != nil {
		return Result{
			Status:  StatusFail,
			Message: "Stored configuration is invalid",
			Detail:  err.Error(),
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s / %s", cfg.Provider, cfg.Model),
	}
}

// RenderResults formats diagnostic results to the given output writer.
func RenderResults(results []Result, printFn, successFn, warningFn, failureFn, mutedFn func(format string, args ...any)) {
	maxNameLen := 0
	for _, r := range results {
		if len(r.Name) > maxNameLen {
			maxNameLen = len(r.Name)
		}
	}

	for _, r := range results {
		symbol := r.Status.Symbol()
		padding := maxNameLen - len(r.Name) + 4

		switch r.Status {
		case StatusPass:
			successFn("%-*s%s", len(r.Name)+padding, r.Name, r.Message)
		case StatusWarn:
			warningFn("%-*s%s", len(r.Name)+padding, r.Name, r.Message)
		case StatusFail:
			failureFn("%-*s%s", len(r.Name)+padding, r.Name, r.Message)
		default:
			printFn("%s %-*s%s\n", symbol, len(r.Name)+padding, r.Name, r.Message)
		}

		if r.Detail != "" {
			mutedFn("    %s", r.Detail)
		}
	}
}

// Symbol returns the status symbol for display.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return checkMark
	case StatusWarn:
		return warningMark
	case StatusFail:
		return xMark
	default:
		return "?"
	}
}

const (
	checkMark   = "✓" // ✓
	xMark       = "✗" // ✗
	warningMark = "⚠" // ⚠
)
