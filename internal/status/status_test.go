package status

import "testing"

func TestComputeOverall(t *testing.T) {
	tests := []struct {
		name           string
		backendHealthy bool
		engine         EngineState
		agentsActive   bool
		wantVerdict    Verdict
		wantMessage    string
	}{
		{
			name:           "all operational",
			backendHealthy: true,
			engine:         EngineOnline,
			agentsActive:   true,
			wantVerdict:    VerdictHealthy,
			wantMessage:    "All systems operational",
		},
		{
			name:        "backend down trumps everything",
			engine:      EngineOnline,
			wantVerdict: VerdictUnhealthy,
			wantMessage: "Backend is not reachable",
		},
		{
			name:           "backend down even with agents active",
			engine:         EngineOnline,
			agentsActive:   true,
			backendHealthy: false,
			wantVerdict:    VerdictUnhealthy,
			wantMessage:    "Backend is not reachable",
		},
		{
			name:           "engine offline",
			backendHealthy: true,
			engine:         EngineOffline,
			agentsActive:   true,
			wantVerdict:    VerdictDegraded,
			wantMessage:    "AI engine not ready",
		},
		{
			name:           "engine unknown",
			backendHealthy: true,
			engine:         EngineUnknown,
			agentsActive:   true,
			wantVerdict:    VerdictDegraded,
			wantMessage:    "AI engine not ready",
		},
		{
			name:           "agents inactive",
			backendHealthy: true,
			engine:         EngineOnline,
			wantVerdict:    VerdictDegraded,
			wantMessage:    "Agent orchestrator inactive",
		},
		{
			name:           "engine offline and agents inactive",
			backendHealthy: true,
			engine:         EngineOffline,
			wantVerdict:    VerdictDegraded,
			wantMessage:    "AI engine not ready and agents inactive",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeOverall(tc.backendHealthy, tc.engine, tc.agentsActive)

			if got.Verdict != tc.wantVerdict {
				t.Errorf("verdict = %q, want %q", got.Verdict, tc.wantVerdict)
			}

			if got.Message != tc.wantMessage {
				t.Errorf("message = %q, want %q", got.Message, tc.wantMessage)
			}
		})
	}
}

func TestInitial(t *testing.T) {
	st := Initial()

	if st.Backend.Healthy {
		t.Error("initial snapshot must not report a healthy backend")
	}

	if st.AIEngine.State != EngineUnknown {
		t.Errorf("engine state = %q, want %q", st.AIEngine.State, EngineUnknown)
	}

	if st.EventChannel.State != "disconnected" {
		t.Errorf("channel state = %q, want disconnected", st.EventChannel.State)
	}

	if st.Overall.Verdict != VerdictUnhealthy {
		t.Errorf("verdict = %q, want %q", st.Overall.Verdict, VerdictUnhealthy)
	}

	if st.Overall.Message != "Awaiting first health check" {
		t.Errorf("message = %q", st.Overall.Message)
	}
}
