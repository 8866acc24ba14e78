package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/datagenesis-ai/dgctl/internal/config"
	clierrors "github.com/datagenesis-ai/dgctl/internal/errors"
	"github.com/datagenesis-ai/dgctl/internal/modelconfig"
	"github.com/datagenesis-ai/dgctl/internal/output"
	"github.com/datagenesis-ai/dgctl/internal/status"
)

func newStatusCmd() *cobra.Command {
	var watchSecs int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show aggregated backend status",
		Long: `Run one health check cycle against the backend and print the
aggregated system status: backend reachability, AI engine readiness,
agent orchestrator state, and overall verdict.

With --watch N the check repeats every N seconds until interrupted.`,
		Example: `  dgctl status
  dgctl status --json
  dgctl status --watch 10`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			_, c := newAPIClient()

			opts := []status.Option{}
			if store, err := modelconfig.NewFileStore(nil); err == nil {
				// Without a readable config store the engine field just
				// loses the configured model name.
				opts = append(opts, status.WithConfigSource(store))
			}

			agg := status.New(c, opts...)

			render := func() error {
				spin := out.Spinner("Checking backend status")
				spin.Start()
				agg.ForceCheck(cmd.Context())
				spin.Stop()

				st := agg.Current()

				if out.JSON {
					return out.PrintJSON(st)
				}

				renderStatus(out, st)

				return nil
			}

			if err := render(); err != nil {
				return err
			}

			if watchSecs <= 0 {
				return statusExitError(agg.Current(), config.Load().APIURL())
			}

			ticker := time.NewTicker(time.Duration(watchSecs) * time.Second)
			defer ticker.Stop()

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
					out.Print("\n")
					if err := render(); err != nil {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().IntVar(&watchSecs, "watch", 0, "Repeat the check every N seconds")

	return cmd
}

// statusExitError maps the snapshot onto the command's exit error so scripts
// can branch on the exit code. Watch mode keeps running instead.
func statusExitError(st status.SystemStatus, apiURL string) error {
	if !st.Backend.Healthy {
		var cause error
		if st.Backend.Error != "" {
			cause = errors.New(st.Backend.Error)
		}

		return clierrors.BackendUnreachable(apiURL, cause)
	}

	if st.Overall.Verdict == status.VerdictUnhealthy {
		return clierrors.BackendUnhealthy(st.Overall.Message)
	}

	return nil
}

func renderStatus(out *output.Writer, st status.SystemStatus) {
	out.Print("System Status\n\n")

	if st.Backend.Healthy {
		out.Success("Backend reachable (%dms)", st.Backend.ResponseTimeMs)
	} else {
		out.Failure("Backend unreachable")
		if st.Backend.Error != "" {
			out.Muted("  %s", st.Backend.Error)
		}
	}

	switch st.AIEngine.State {
	case status.EngineOnline:
		label := "AI engine online"
		if st.AIEngine.ModelName != "" {
			label = fmt.Sprintf("AI engine online (%s)", st.AIEngine.ModelName)
		}
		out.Success("%s", label)
		if st.AIEngine.QuotaPreserved {
			out.Muted("  quota preservation active")
		}
	case status.EngineOffline:
		out.Warning("AI engine offline")
	default:
		out.Muted("%s AI engine state unknown", output.InfoMark)
	}

	if st.Agents.Active {
		if st.Agents.Total > 0 {
			out.Success("Agents active (%d/%d operational)", st.Agents.Operational, st.Agents.Total)
		} else {
			out.Success("Agents active")
		}
	} else {
		out.Warning("Agent orchestrator inactive")
	}

	out.Print("\n")

	switch st.Overall.Verdict {
	case status.VerdictHealthy:
		out.Success("Overall: %s", st.Overall.Message)
	case status.VerdictDegraded:
		out.Warning("Overall: %s", st.Overall.Message)
	default:
		out.Failure("Overall: %s", st.Overall.Message)
	}
}
