package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/datagenesis-ai/dgctl/internal/config"
	clierrors "github.com/datagenesis-ai/dgctl/internal/errors"
	"github.com/datagenesis-ai/dgctl/internal/modelconfig"
	"github.com/datagenesis-ai/dgctl/internal/monitor"
	"github.com/datagenesis-ai/dgctl/internal/output"
	"github.com/datagenesis-ai/dgctl/internal/proclog"
	"github.com/datagenesis-ai/dgctl/internal/status"
	"github.com/datagenesis-ai/dgctl/internal/stream"
)

func newMonitorCmd() *cobra.Command {
	var intervalSecs int

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Live terminal monitor for backend and generation activity",
		Long: `Open a full-screen terminal monitor that polls backend status and
streams realtime generation events over the event channel.

Keys: q or esc to quit, r to force a status refresh.`,
		Example: `  dgctl monitor
  dgctl monitor --interval 10`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			if !out.Terminal().IsTTY {
				return clierrors.New(clierrors.ExitUsage, "The monitor requires an interactive terminal").
					WithHint("Use 'dgctl status --json' for non-interactive status checks")
			}

			cfg := config.Load()
			_, c := newAPIClient()

			interval := time.Duration(intervalSecs) * time.Second
			if intervalSecs <= 0 {
				interval = time.Duration(cfg.PollInterval()) * time.Second
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Buffered so backend callbacks never block; drops on overflow
			// are harmless because each message type is superseded by the
			// next snapshot or re-read from the entry buffer.
			events := make(chan tea.Msg, 64)
			post := func(msg tea.Msg) {
				select {
				case events <- msg:
				default:
				}
			}

			entries := proclog.NewBuffer(proclog.DefaultCapacity)

			channel := stream.NewChannel(cfg.StreamURL(),
				stream.WithMaxAttempts(cfg.ReconnectAttempts()),
				stream.WithMessageHandler(func(msg stream.Message) {
					if e, ok := proclog.FromMessage(msg, msg.ReceivedAt); ok {
						entries.Append(e)
						post(monitor.EntryMsg{Entry: e})
					}
				}),
				stream.WithStateHandler(func(s stream.State) {
					post(monitor.ChannelMsg{State: s})
				}),
			)

			opts := []status.Option{
				status.WithInterval(interval),
				status.WithChannelState(func() status.Channel {
					s := channel.State()

					return status.Channel{
						Connected: s == stream.StateConnected,
						State:     string(s),
					}
				}),
				status.WithUpdateHandler(func(st status.SystemStatus) {
					post(monitor.StatusMsg{Status: st})
				}),
			}

			if store, err := modelconfig.NewFileStore(nil); err == nil {
				opts = append(opts, status.WithConfigSource(store))
			}

			agg := status.New(c, opts...)

			go agg.Run(ctx)

			if err := channel.Connect(ctx); err != nil {
				// Reconnect logic takes over; surface the initial failure
				// through the channel state line instead of aborting.
				post(monitor.ChannelMsg{State: channel.State()})
			}
			defer channel.Disconnect()

			refresh := func() {
				go agg.ForceCheck(ctx)
			}

			program := tea.NewProgram(monitor.New(events, entries, refresh), tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return clierrors.Wrap(clierrors.ExitGeneral, "Monitor terminated unexpectedly", err)
			}

			return channelExitError(channel.State(), cfg.ReconnectAttempts())
		},
	}

	cmd.Flags().IntVar(&intervalSecs, "interval", 0, "Status poll interval in seconds (default from config)")

	return cmd
}

// channelExitError surfaces a dead event channel through the exit code once
// the interactive session ends.
func channelExitError(s stream.State, attempts int) error {
	if s != stream.StateFailed {
		return nil
	}

	return clierrors.ChannelFailed(attempts)
}
