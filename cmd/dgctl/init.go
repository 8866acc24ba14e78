package main

import (
	"github.com/spf13/cobra"

	"github.com/datagenesis-ai/dgctl/internal/output"
	"github.com/datagenesis-ai/dgctl/internal/wizard"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Setup dgctl for first use",
		Long: `Initialize dgctl with a guided setup wizard.

The wizard will:
  1. Check backend reachability
  2. Optionally store an API token
  3. Select an AI provider and model
  4. Push the configuration to the backend and test it

If a model configuration already exists, use --force to overwrite it.`,
		Example: `  dgctl init`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			w := wizard.New(out, force)

			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing model configuration without prompting")

	return cmd
}
