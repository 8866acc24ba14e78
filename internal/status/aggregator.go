package status

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/datagenesis-ai/dgctl/internal/client"
	"github.com/datagenesis-ai/dgctl/internal/modelconfig"
	"github.com/datagenesis-ai/dgctl/internal/observability"
)

// DefaultInterval is the default polling interval.
const DefaultInterval = 30 * time.Second

// Prober is the slice of the backend client the aggregator depends on.
type Prober interface {
	Health(ctx context.Context) client.HealthResult
	AgentsStatus(ctx context.Context) (*client.AgentsStatus, error)
}

// ConfigSource exposes the active model configuration. Implemented by
// *modelconfig.Store; nil means no configuration is available.
type ConfigSource interface {
	Active() (modelconfig.Config, bool)
}

// Aggregator polls the backend and maintains the current SystemStatus.
type Aggregator struct {
	prober   Prober
	models   ConfigSource
	logger   *slog.Logger
	interval time.Duration

	// channelState, when set, reports the local event channel's state and is
	// folded into each snapshot.
	channelState func() Channel

	// onUpdate, when set, receives each new snapshot after it is published.
	onUpdate func(SystemStatus)

	// checking is the concurrency guard: at most one poll cycle runs at a
	// time, overlapping triggers are dropped rather than queued.
	checking atomic.Bool

	mu      sync.RWMutex
	current SystemStatus

	now func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithInterval sets the polling interval. Zero or negative disables periodic
// polling; only ForceCheck-triggered cycles run.
func WithInterval(d time.Duration) Option {
	return func(a *Aggregator) { a.interval = d }
}

// WithConfigSource wires the model configuration store.
func WithConfigSource(src ConfigSource) Option {
	return func(a *Aggregator) { a.models = src }
}

// WithChannelState wires the event channel state callback.
func WithChannelState(fn func() Channel) Option {
	return func(a *Aggregator) { a.channelState = fn }
}

// WithUpdateHandler registers a callback invoked after each published snapshot.
func WithUpdateHandler(fn func(SystemStatus)) Option {
	return func(a *Aggregator) { a.onUpdate = fn }
}

// WithClock injects a clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// New creates an Aggregator around the given prober.
func New(prober Prober, opts ...Option) *Aggregator {
	a := &Aggregator{
		prober:   prober,
		interval: DefaultInterval,
		logger:   slog.Default(),
		now:      time.Now,
		current:  Initial(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Current returns the latest snapshot.
func (a *Aggregator) Current() SystemStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.current
}

// Run executes one immediate cycle and then polls on the configured interval
// until ctx is cancelled. With a non-positive interval it runs the immediate
// cycle and returns, leaving only manual triggering via ForceCheck.
func (a *Aggregator) Run(ctx context.Context) {
	a.ForceCheck(ctx)

	if a.interval <= 0 {
		return
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.ForceCheck(ctx)
		}
	}
}

// ForceCheck triggers one immediate poll cycle. If a cycle is already in
// flight the call is a silent no-op.
func (a *Aggregator) ForceCheck(ctx context.Context) {
	if !a.checking.CompareAndSwap(false, true) {
		return
	}
	defer a.checking.Store(false)

	next := a.cycle(ctx)

	a.mu.Lock()
	a.current = next
	a.mu.Unlock()

	if a.onUpdate != nil {
		a.onUpdate(next)
	}
}

// cycle runs one poll and derives a complete snapshot. Any panic inside the
// cycle is converted into a synthetic unhealthy snapshot so one failed cycle
// cannot stop future cycles or leave a half-built status behind.
func (a *Aggregator) cycle(ctx context.Context) (st SystemStatus) {
	start := a.now()

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("status cycle failed", slog.Any("panic", r))
			st = a.unhealthy(start, fmt.Sprintf("status cycle failed: %v", r))
		}
	}()

	ctx, span := observability.Tracer("dgctl.status").Start(ctx, "status.cycle")
	defer span.End()

	res := a.prober.Health(ctx)
	elapsed := a.now().Sub(start)

	span.SetAttributes(
		attribute.Bool("health.ok", res.Healthy),
		attribute.Int64("health.elapsed_ms", elapsed.Milliseconds()),
	)

	if !res.Healthy {
		a.logger.Warn("backend health probe failed", slog.String("error", res.Err))
		return a.unhealthy(start, res.Err)
	}

	checked := start
	st.Backend = Backend{
		Healthy:        true,
		LastCheck:      &checked,
		ResponseTimeMs: elapsed.Milliseconds(),
	}
	st.AIEngine = a.deriveEngine(res.Data)
	st.Agents = deriveAgents(res.Data)

	// Secondary probe: richer per-agent detail, best effort. A failure here
	// keeps the primary-derived values and must not fail the cycle.
	if detail, err := a.prober.AgentsStatus(ctx); err != nil {
		a.logger.Warn("agents status probe failed, keeping primary-derived values",
			slog.String("error", err.Error()))
	} else {
		st.Agents = mergeAgentDetail(st.Agents, detail)
	}

	st.EventChannel = a.channelSnapshot()
	st.Overall = ComputeOverall(true, st.AIEngine.State, st.Agents.Active)
	span.SetAttributes(attribute.String("status.verdict", string(st.Overall.Verdict)))

	return st
}

// unhealthy builds the snapshot for a failed cycle. The event channel field
// carries over from the previous snapshot; a backend outage says nothing
// about the local channel.
func (a *Aggregator) unhealthy(start time.Time, reason string) SystemStatus {
	checked := start

	st := SystemStatus{
		Backend: Backend{
			LastCheck:      &checked,
			ResponseTimeMs: a.now().Sub(start).Milliseconds(),
			Error:          reason,
		},
		AIEngine:     AIEngine{State: EngineOffline},
		EventChannel: a.Current().EventChannel,
	}

	if cfg, ok := a.activeConfig(); ok {
		st.AIEngine.ModelName = cfg.Model
		st.AIEngine.APIKeyConfigured = cfg.APIKeyConfigured()
	}

	st.Overall = ComputeOverall(false, st.AIEngine.State, st.Agents.Active)
	if reason != "" {
		st.Overall.Message = reason
	}

	return st
}

func (a *Aggregator) activeConfig() (modelconfig.Config, bool) {
	if a.models == nil {
		return modelconfig.Config{}, false
	}

	return a.models.Active()
}

func (a *Aggregator) channelSnapshot() Channel {
	if a.channelState == nil {
		return a.Current().EventChannel
	}

	return a.channelState()
}

// deriveEngine maps the health payload's provider service entry onto an
// engine state. Missing keys map to unknown, an unexpected status literal
// maps to offline; only "online" and "ready" count as online.
func (a *Aggregator) deriveEngine(data map[string]any) AIEngine {
	engine := AIEngine{State: EngineUnknown}

	providerKey := string(modelconfig.ProviderGemini)
	if cfg, ok := a.activeConfig(); ok {
		providerKey = string(cfg.Provider)
		engine.ModelName = cfg.Model
		engine.APIKeyConfigured = cfg.APIKeyConfigured()
	}

	services, ok := mapField(data, "services")
	if !ok {
		return engine
	}

	svc, ok := mapField(services, providerKey)
	if !ok {
		return engine
	}

	switch stringField(svc, "status") {
	case "online", "ready":
		engine.State = EngineOnline
	case "":
		engine.State = EngineUnknown
	default:
		engine.State = EngineOffline
	}

	if engine.ModelName == "" {
		engine.ModelName = stringField(svc, "model")
	}

	if quota, ok := svc["quota_preserved"].(bool); ok {
		engine.QuotaPreserved = quota
	}

	return engine
}

// deriveAgents reads the coarse agents flag from the health payload. Detail
// counts come from the secondary probe when it succeeds.
func deriveAgents(data map[string]any) Agents {
	services, ok := mapField(data, "services")
	if !ok {
		return Agents{}
	}

	return Agents{Active: stringField(services, "agents") == "active"}
}

// mergeAgentDetail folds the detailed probe into the primary-derived summary.
func mergeAgentDetail(base Agents, detail *client.AgentsStatus) Agents {
	if detail == nil {
		return base
	}

	out := base
	out.Active = detail.OrchestratorStatus == "active"
	out.Total = detail.TotalAgents
	out.Details = make(map[string]AgentDetail, len(detail.Agents))

	for name, agent := range detail.Agents {
		out.Details[name] = AgentDetail{Status: agent.Status, Performance: agent.Performance}

		if agent.Status == "active" {
			out.Operational++
		}
	}

	if out.Total < out.Operational {
		out.Total = out.Operational
	}

	return out
}

func mapField(m map[string]any, key string) (map[string]any, bool) {
	if m == nil {
		return nil, false
	}

	v, ok := m[key].(map[string]any)

	return v, ok
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}

	v, _ := m[key].(string)

	return v
}
