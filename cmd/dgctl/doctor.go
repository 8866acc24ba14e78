package main

import (
	"github.com/spf13/cobra"

	"github.com/datagenesis-ai/dgctl/internal/doctor"
	"github.com/datagenesis-ai/dgctl/internal/output"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		Long: `Run diagnostic checks to identify configuration and connectivity issues.

Checks performed:
  - Backend connectivity and response time
  - Backend version against the minimum supported version
  - Authentication status and credential source
  - AI engine configuration
  - Stored model configuration validity`,
		Example: `  dgctl doctor`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			out.Println("dgctl Doctor")
			out.Println("============")
			out.Println()

			runner := doctor.New()
			results := runner.Run(cmd.Context())

			doctor.RenderResults(results, out.Print, out.Success, out.Warning, out.Failure, out.Muted)

			passed, failed, warnings := doctor.Summary(results)
			out.Println()
			out.Print("%d passed", passed)
			if failed > 0 {
				out.Print(", %d failed", failed)
			}
			if warnings > 0 {
				out.Print(", %d warning(s)", warnings)
			}
			out.Println()

			return nil
		},
	}
}
