package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/datagenesis-ai/dgctl/internal/config"
	clierrors "github.com/datagenesis-ai/dgctl/internal/errors"
	"github.com/datagenesis-ai/dgctl/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View and modify dgctl configuration settings.`,
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		Long:  `Display all configuration settings and their current values. Shows available settings with defaults when none are set.`,
		Example: `  dgctl config list
  dgctl config list --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := config.Load()
			settings := cfg.All()

			if out.JSON {
				return out.PrintJSON(settings)
			}

			if len(settings) == 0 {
				out.Muted("No configuration set.")
				out.Println()
				out.Println("Available settings:")

				out.Print("  api.url                    Backend API URL (default: %s)\n", config.DefaultAPIURL)
				out.Print("  status.poll_interval       Status poll interval in seconds (default: %d)\n", config.DefaultPollInterval)
				out.Print("  stream.url                 Event channel URL (default: derived from api.url)\n")
				out.Print("  stream.reconnect_attempts  Reconnect attempts per outage (default: %d)\n", config.DefaultReconnectAttempts)

				return nil
			}

			keys := make([]string, 0, len(settings))
			for key := range settings {
				keys = append(keys, key)
			}

			sort.Strings(keys)

			for _, key := range keys {
				value := settings[key]
				out.Print("%s = %v\n", key, value)
			}

			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Get a configuration value",
		Long:    `Retrieve and display the current value of a single configuration key.`,
		Example: `  dgctl config get api.url`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key := args[0]
			cfg := config.Load()
			value := cfg.Get(key)

			if value == nil {
				out.Muted("%s is not set", key)
				return nil
			}

			out.Print("%s = %v\n", key, value)

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Set a configuration value",
		Long:    `Set a configuration key to the given value. The value is persisted to the config file.`,
		Example: `  dgctl config set api.url http://backend.internal:8000`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key, value := args[0], args[1]
			cfg := config.Load()

			if err := cfg.Set(key, value); err != nil {
				return clierrors.ConfigFailed("set config", err)
			}

			out.Success("Set %s = %s", key, value)

			return nil
		},
	}
}
