package main

import (
	"strings"
	"testing"

	clierrors "github.com/datagenesis-ai/dgctl/internal/errors"
	"github.com/datagenesis-ai/dgctl/internal/status"
)

func TestStatusExitError(t *testing.T) {
	tests := []struct {
		name     string
		st       status.SystemStatus
		wantCode int
		wantMsg  string
	}{
		{
			name: "healthy exits zero",
			st: status.SystemStatus{
				Backend: status.Backend{Healthy: true},
				Overall: status.Overall{Verdict: status.VerdictHealthy},
			},
		},
		{
			name: "degraded exits zero",
			st: status.SystemStatus{
				Backend: status.Backend{Healthy: true},
				Overall: status.Overall{Verdict: status.VerdictDegraded, Message: "AI engine not ready"},
			},
		},
		{
			name: "unreachable backend",
			st: status.SystemStatus{
				Backend: status.Backend{Healthy: false, Error: "connection refused"},
				Overall: status.Overall{Verdict: status.VerdictUnhealthy},
			},
			wantCode: clierrors.ExitNetwork,
			wantMsg:  "connection refused",
		},
		{
			name: "reachable but unhealthy verdict",
			st: status.SystemStatus{
				Backend: status.Backend{Healthy: true},
				Overall: status.Overall{Verdict: status.VerdictUnhealthy, Message: "AI engine not ready and agents inactive"},
			},
			wantCode: clierrors.ExitNetwork,
			wantMsg:  "AI engine not ready and agents inactive",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := statusExitError(tc.st, "http://localhost:8000")

			if tc.wantCode == 0 {
				if err != nil {
					t.Fatalf("statusExitError() = %v, want nil", err)
				}

				return
			}

			var cliErr *clierrors.CLIError
			if !clierrors.As(err, &cliErr) {
				t.Fatalf("statusExitError() = %v, want CLIError", err)
			}

			if cliErr.Code != tc.wantCode {
				t.Errorf("exit code = %d, want %d", cliErr.Code, tc.wantCode)
			}

			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tc.wantMsg)
			}
		})
	}
}
