// Package status maintains the authoritative system-health view.
//
// An Aggregator polls the backend health endpoint (and, best effort, the
// detailed agents endpoint), derives a SystemStatus snapshot, and replaces
// the stored snapshot wholesale each cycle. Consumers only ever see complete
// snapshots; there is no partial mutation.
package status

import (
	"time"
)

// EngineState describes the AI engine's availability.
type EngineState string

// Engine states.
const (
	EngineOnline  EngineState = "online"
	EngineOffline EngineState = "offline"
	EngineUnknown EngineState = "unknown"
)

// Verdict is the tri-state overall health summary.
type Verdict string

// Overall verdicts.
const (
	VerdictHealthy   Verdict = "healthy"
	VerdictDegraded  Verdict = "degraded"
	VerdictUnhealthy Verdict = "unhealthy"
)

// Backend describes the result of the most recent health probe.
type Backend struct {
	Healthy        bool       `json:"healthy"`
	LastCheck      *time.Time `json:"last_check"`
	ResponseTimeMs int64      `json:"response_time_ms"`
	Error          string     `json:"error,omitempty"`
}

// AIEngine describes the generation engine's readiness.
type AIEngine struct {
	State            EngineState `json:"state"`
	ModelName        string      `json:"model_name,omitempty"`
	QuotaPreserved   bool        `json:"quota_preserved"`
	APIKeyConfigured bool        `json:"api_key_configured"`
}

// AgentDetail is the per-agent slice of the detailed agents probe.
type AgentDetail struct {
	Status      string  `json:"status"`
	Performance float64 `json:"performance,omitempty"`
}

// Agents summarizes the orchestrator's agent pool.
type Agents struct {
	Active      bool                   `json:"active"`
	Total       int                    `json:"total"`
	Operational int                    `json:"operational"`
	Details     map[string]AgentDetail `json:"details,omitempty"`
}

// Channel mirrors the local event channel's connection state.
type Channel struct {
	Connected bool   `json:"connected"`
	State     string `json:"state"`
}

// Overall is the derived verdict with a human-readable explanation.
type Overall struct {
	Verdict Verdict `json:"verdict"`
	Message string  `json:"message"`
}

// SystemStatus is one immutable health snapshot.
type SystemStatus struct {
	Backend      Backend  `json:"backend"`
	AIEngine     AIEngine `json:"ai_engine"`
	Agents       Agents   `json:"agents"`
	EventChannel Channel  `json:"event_channel"`
	Overall      Overall  `json:"overall"`
}

// Initial returns the snapshot used before any poll cycle has run.
func Initial() SystemStatus {
	st := SystemStatus{
		AIEngine:     AIEngine{State: EngineUnknown},
		EventChannel: Channel{State: "disconnected"},
	}
	st.Overall = ComputeOverall(st.Backend.Healthy, st.AIEngine.State, st.Agents.Active)
	st.Overall.Message = "Awaiting first health check"

	return st
}

// ComputeOverall derives the overall verdict from the three sub-statuses.
//
// The rule is a strict priority ordering: an unreachable backend is always
// unhealthy regardless of the other fields; a reachable backend with the
// engine online and agents active is healthy; anything in between is
// degraded. It is a pure function so the ordering is independently testable.
func ComputeOverall(backendHealthy bool, engine EngineState, agentsActive bool) Overall {
	switch {
	case !backendHealthy:
		return Overall{Verdict: VerdictUnhealthy, Message: "Backend is not reachable"}
	case engine == EngineOnline && agentsActive:
		return Overall{Verdict: VerdictHealthy, Message: "All systems operational"}
	case engine != EngineOnline && !agentsActive:
		return Overall{Verdict: VerdictDegraded, Message: "AI engine not ready and agents inactive"}
	case engine != EngineOnline:
		return Overall{Verdict: VerdictDegraded, Message: "AI engine not ready"}
	default:
		return Overall{Verdict: VerdictDegraded, Message: "Agent orchestrator inactive"}
	}
}
