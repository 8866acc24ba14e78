// Package proclog turns backend event frames into display-ready process log
// entries and retains them in a bounded buffer.
package proclog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/datagenesis-ai/dgctl/internal/stream"
)

// Level classifies a log entry for display.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Metrics carries the per-step quality scores some pipeline steps report.
type Metrics struct {
	QualityScore float64 `json:"quality_score"`
	PrivacyScore float64 `json:"privacy_score"`
	BiasScore    float64 `json:"bias_score"`
}

// Entry is one process log line.
//
// Progress is a percentage in [0,100], or -1 when the frame carried none.
type Entry struct {
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Level     Level      `json:"level"`
	Message   string     `json:"message"`
	JobID     string     `json:"job_id,omitempty"`
	Step      string     `json:"step,omitempty"`
	Progress  int        `json:"progress"`
	Agent     string     `json:"agent,omitempty"`
	Metrics   *Metrics   `json:"metrics,omitempty"`
}

// FromMessage converts an event frame into a log entry. Frames of unknown
// type, or update frames with no usable payload, report ok=false and are
// dropped by callers.
func FromMessage(msg stream.Message, now time.Time) (Entry, bool) {
	switch msg.Type {
	case "generation_update", "agent_update":
	default:
		return Entry{}, false
	}

	if msg.Data == nil {
		return Entry{}, false
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: now,
		Level:     LevelInfo,
		JobID:     stringField(msg.Data, "job_id"),
		Step:      stringField(msg.Data, "step"),
		Progress:  -1,
		Message:   stringField(msg.Data, "message"),
	}

	if ts := stringField(msg.Data, "timestamp"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Timestamp = parsed
		}
	}

	if p, ok := numberField(msg.Data, "progress"); ok {
		entry.Progress = clampProgress(p)
	}

	if entry.Message == "" {
		if entry.Step == "" {
			return Entry{}, false
		}

		entry.Message = fmt.Sprintf("Step %s in progress", entry.Step)
	}

	entry.Level = deriveLevel(entry.Step, entry.Progress)
	entry.Agent = deriveAgent(entry.Step)
	entry.Metrics = deriveMetrics(msg.Data)

	return entry, true
}

// deriveLevel marks completed and failed steps; everything else is info.
func deriveLevel(step string, progress int) Level {
	switch {
	case strings.Contains(step, "error") || strings.Contains(step, "failed"):
		return LevelError
	case step == "completed" || progress >= 100:
		return LevelSuccess
	default:
		return LevelInfo
	}
}

// deriveAgent maps a pipeline step onto the agent responsible for it.
func deriveAgent(step string) string {
	switch {
	case strings.Contains(step, "domain_analysis"):
		return "Domain Expert"
	case strings.Contains(step, "privacy_assessment"):
		return "Privacy Agent"
	case strings.Contains(step, "bias_detection"):
		return "Bias Detector"
	case strings.Contains(step, "relationship"):
		return "Relationship Agent"
	case strings.Contains(step, "quality"), strings.Contains(step, "final_assembly"):
		return "Quality Agent"
	case strings.Contains(step, "initialization"):
		return "Orchestrator"
	default:
		return ""
	}
}

// deriveMetrics pulls the agent score block out of the frame, when present.
func deriveMetrics(data map[string]any) *Metrics {
	agentData, ok := data["agent_data"].(map[string]any)
	if !ok {
		return nil
	}

	m := &Metrics{}
	found := false

	if v, ok := numberField(agentData, "quality_score"); ok {
		m.QualityScore = v
		found = true
	}

	if v, ok := numberField(agentData, "privacy_score"); ok {
		m.PrivacyScore = v
		found = true
	}

	if v, ok := numberField(agentData, "bias_score"); ok {
		m.BiasScore = v
		found = true
	}

	if !found {
		return nil
	}

	return m
}

func clampProgress(p float64) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return int(p)
	}
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)

	return v
}

func numberField(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
