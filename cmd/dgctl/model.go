package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datagenesis-ai/dgctl/internal/client"
	clierrors "github.com/datagenesis-ai/dgctl/internal/errors"
	"github.com/datagenesis-ai/dgctl/internal/modelconfig"
	"github.com/datagenesis-ai/dgctl/internal/output"
	"github.com/datagenesis-ai/dgctl/internal/prompt"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage the AI provider configuration",
		Long: `Configure which AI provider and model the backend generates with.

The configuration is validated and persisted locally, then pushed to the
backend. Use 'dgctl model test' to exercise the configured provider.`,
	}

	cmd.AddCommand(newModelSetCmd())
	cmd.AddCommand(newModelShowCmd())
	cmd.AddCommand(newModelRemoveCmd())
	cmd.AddCommand(newModelProvidersCmd())
	cmd.AddCommand(newModelTestCmd())

	return cmd
}

func newModelSetCmd() *cobra.Command {
	var (
		providerFlag string
		modelFlag    string
		apiKeyFlag   string
		endpointFlag string
		localOnly    bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Configure the active provider and model",
		Long: `Select a provider and model, validate the configuration, persist it
locally, and push it to the backend.

Flags left unset are collected interactively. The API key may also be
supplied via --api-key; it is never echoed when prompted.

A failed backend connection test does not roll back the saved
configuration; rerun 'dgctl model test' once the provider is reachable.`,
		Example: `  dgctl model set
  dgctl model set --provider gemini --model gemini-1.5-flash --api-key AIzaSy...
  dgctl model set --provider ollama --model llama3:8b`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			prompter := prompt.New(out)

			cfg, err := collectModelConfig(out, prompter, providerFlag, modelFlag, apiKeyFlag, endpointFlag)
			if err != nil {
				return err
			}

			store, err := modelconfig.NewFileStore(nil)
			if err != nil {
				return clierrors.ConfigFailed("open model config store", err)
			}

			if err := store.Set(cfg); err != nil {
				return clierrors.ModelConfigInvalid(err)
			}

			out.Success("Configuration saved: %s / %s", cfg.Provider, cfg.Model)

			if localOnly {
				return nil
			}

			_, c := newAPIClient()

			spin := out.Spinner("Pushing configuration to backend")
			spin.Start()

			resp, err := c.ConfigureAI(cmd.Context(), &client.ConfigureAIRequest{
				Provider: string(cfg.Provider),
				Model:    cfg.Model,
				APIKey:   cfg.APIKey,
				Endpoint: cfg.Endpoint,
			})
			if err != nil {
				spin.StopWithWarning(fmt.Sprintf("Backend not updated: %v", err))
				out.Info("The configuration is saved locally; push it later with 'dgctl model set'")

				return nil
			}

			spin.StopWithSuccess(resp.Message)

			return runConnectionTest(cmd, out)
		},
	}

	cmd.Flags().StringVar(&providerFlag, "provider", "", "Provider: gemini, openai, anthropic, ollama")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Model name")
	cmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "Provider API key (prompted if required and omitted)")
	cmd.Flags().StringVar(&endpointFlag, "endpoint", "", "Endpoint URL (Ollama only)")
	cmd.Flags().BoolVar(&localOnly, "local-only", false, "Persist locally without contacting the backend")

	return cmd
}

// collectModelConfig merges flags and interactive prompts into a normalized
// configuration. Flag values win; prompts fill the gaps.
func collectModelConfig(out *output.Writer, prompter *prompt.Prompter, providerFlag, modelFlag, apiKeyFlag, endpointFlag string) (modelconfig.Config, error) {
	var cfg modelconfig.Config

	if providerFlag != "" {
		cfg.Provider = modelconfig.Provider(strings.ToLower(strings.TrimSpace(providerFlag)))
		if _, ok := modelconfig.Catalog()[cfg.Provider]; !ok {
			return cfg, clierrors.InvalidProvider(providerFlag, providerNames())
		}
	} else {
		if !prompter.CanPrompt() {
			return cfg, clierrors.CannotPrompt("--provider")
		}

		selected, err := prompter.SelectProvider(out)
		if err != nil {
			return cfg, clierrors.AuthFailed(err)
		}
		cfg.Provider = selected
	}

	spec := modelconfig.Catalog()[cfg.Provider]

	if modelFlag != "" {
		cfg.Model = modelFlag
	} else {
		if !prompter.CanPrompt() {
			return cfg, clierrors.CannotPrompt("--model")
		}

		model, err := prompter.SelectModel(out, cfg.Provider)
		if err != nil {
			return cfg, clierrors.AuthFailed(err)
		}
		cfg.Model = model
	}

	cfg.APIKey = apiKeyFlag
	if cfg.APIKey == "" && spec.RequiresAPIKey {
		if !prompter.CanPrompt() {
			return cfg, clierrors.CannotPrompt("--api-key")
		}

		if spec.APIKeyFormat != "" {
			out.Muted("API key format: %s", spec.APIKeyFormat)
		}

		key, err := prompter.Password(fmt.Sprintf("%s API key", spec.Name))
		if err != nil {
			return cfg, clierrors.AuthFailed(err)
		}
		cfg.APIKey = key
	}

	cfg.Endpoint = endpointFlag

	cfg.Normalize()

	return cfg, nil
}

func runConnectionTest(cmd *cobra.Command, out *output.Writer) error {
	_, c := newAPIClient()

	spin := out.Spinner("Testing provider connection")
	spin.Start()

	resp, err := c.TestConnection(cmd.Context())
	if err != nil {
		spin.Stop()

		return clierrors.ConnectionTestFailed(err.Error())
	}

	if !strings.EqualFold(resp.Status, "success") {
		spin.Stop()

		return clierrors.ConnectionTestFailed(resp.Message)
	}

	spin.StopWithSuccess(fmt.Sprintf("Connection verified: %s / %s", resp.Provider, resp.Model))

	return nil
}

func newModelShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active model configuration",
		Long:  `Display the persisted provider configuration with the API key redacted.`,
		Example: `  dgctl model show
  dgctl model show --json`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			store, err := modelconfig.NewFileStore(nil)
			if err != nil {
				return clierrors.ConfigFailed("open model config store", err)
			}

			cfg, ok := store.Active()
			if !ok {
				return clierrors.ModelNotConfigured()
			}

			redacted := cfg.Redacted()

			if out.JSON {
				return out.PrintJSON(redacted)
			}

			out.Print("Provider: %s\n", redacted.Provider)
			out.Print("Model:    %s\n", redacted.Model)
			if redacted.Endpoint != "" {
				out.Print("Endpoint: %s\n", redacted.Endpoint)
			}
			if cfg.APIKeyConfigured() {
				out.Muted("API key configured")
			} else {
				out.Muted("No API key (local provider)")
			}

			return nil
		},
	}
}

func newModelRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the stored model configuration",
		Long: `Delete the persisted provider configuration. The backend keeps its
current provider until reconfigured.`,
		Example: `  dgctl model remove
  dgctl model remove --force`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			store, err := modelconfig.NewFileStore(nil)
			if err != nil {
				return clierrors.ConfigFailed("open model config store", err)
			}

			if _, ok := store.Active(); !ok {
				out.Info("No model configuration to remove")

				return nil
			}

			if !force {
				prompter := prompt.New(out)
				if prompter.CanPrompt() {
					confirmed, err := prompter.Confirm("Remove the stored model configuration?", false)
					if err != nil || !confirmed {
						out.Info("Cancelled")

						return nil
					}
				}
			}

			if err := store.Remove(); err != nil {
				return clierrors.ConfigFailed("remove model config", err)
			}

			out.Success("Model configuration removed")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")

	return cmd
}

func newModelProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and models",
		Long: `List the providers and models the backend accepts. Falls back to the
built-in catalog when the backend is unreachable.`,
		Example: `  dgctl model providers
  dgctl model providers --json`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			// Prefer the backend's live provider table; fall back to the
			// built-in catalog when the backend is unreachable.
			_, c := newAPIClient()
			if remote, err := c.Providers(cmd.Context()); err == nil && len(remote) > 0 {
				if out.JSON {
					return out.PrintJSON(remote)
				}

				for _, p := range modelconfig.Providers() {
					info, ok := remote[string(p)]
					if !ok {
						continue
					}
					renderProvider(out, info.Name, info.Models, info.RequiresAPIKey)
				}

				return nil
			}

			catalog := modelconfig.Catalog()

			if out.JSON {
				return out.PrintJSON(catalog)
			}

			for _, p := range modelconfig.Providers() {
				spec := catalog[p]
				renderProvider(out, spec.Name, spec.Models, spec.RequiresAPIKey)
			}

			return nil
		},
	}
}

func renderProvider(out *output.Writer, name string, models []string, requiresKey bool) {
	if requiresKey {
		out.Print("%s  [api key required]\n", name)
	} else {
		out.Print("%s  [local, no api key]\n", name)
	}

	for _, m := range models {
		out.Muted("  %s", m)
	}
}

func newModelTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the configured provider connection",
		Long: `Ask the backend to exercise the configured provider with a minimal
generation request and report the outcome.`,
		Example: `  dgctl model test`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			store, err := modelconfig.NewFileStore(nil)
			if err == nil {
				if _, ok := store.Active(); !ok {
					return clierrors.ModelNotConfigured()
				}
			}

			return runConnectionTest(cmd, out)
		},
	}
}

func providerNames() []string {
	providers := modelconfig.Providers()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = string(p)
	}

	return names
}
