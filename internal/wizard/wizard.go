// Package wizard provides the first-run setup flow for dgctl.
//
// The wizard guides users through initial setup:
//  1. Welcome message
//  2. Backend reachability check
//  3. Optional API token storage
//  4. AI provider and model selection
//  5. Push to the backend and connection test
//  6. Next steps guidance
package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/datagenesis-ai/dgctl/internal/auth"
	"github.com/datagenesis-ai/dgctl/internal/client"
	"github.com/datagenesis-ai/dgctl/internal/config"
	"github.com/datagenesis-ai/dgctl/internal/modelconfig"
	"github.com/datagenesis-ai/dgctl/internal/output"
	"github.com/datagenesis-ai/dgctl/internal/prompt"
)

// Wizard handles the initialization flow.
type Wizard struct {
	out      *output.Writer
	prompter *prompt.Prompter
	force    bool
}

// New creates a new initialization wizard.
func New(out *output.Writer, force bool) *Wizard {
	return &Wizard{
		out:      out,
		prompter: prompt.New(out),
		force:    force,
	}
}

// Run executes the initialization wizard.
func (w *Wizard) Run(ctx context.Context) error {
	// Welcome
	w.out.Println("Welcome to dgctl!")
	w.out.Println("=================")
	w.out.Println()
	w.out.Println("dgctl configures and monitors your DataGenesis backend:")
	w.out.Println("health checks, the agent orchestrator, and live generation events.")
	w.out.Println()

	// Check for non-interactive mode
	if !w.prompter.CanPrompt() {
		w.out.Failure("Cannot run init wizard in non-interactive mode")
		w.out.Println()
		w.out.Info("Either:")
		w.out.Print("  1. Run without --no-input flag\n")
		w.out.Print("  2. Set DGCTL_API_TOKEN and run 'dgctl model set' with flags\n")

		return nil
	}

	// Backend reachability
	cfg := config.Load()

	spin := w.out.Spinner(fmt.Sprintf("Checking backend at %s", cfg.APIURL()))
	spin.Start()

	_, token := auth.GetCredentials()
	c := client.New(token).WithBaseURL(cfg.APIURL())

	health := c.Health(ctx)
	if !health.Healthy {
		spin.StopWithWarning("Backend not reachable")
		w.out.Muted("%s", health.Err)
		w.out.Println()
		w.out.Info("Setup continues; configuration is stored locally and pushed later")
		w.out.Muted("Change the backend address with 'dgctl config set api.url <url>'")
	} else {
		spin.StopWithSuccess("Backend reachable")
	}

	// Step 1: API token (optional; the backend serves guests)
	w.out.Println()
	w.out.Println("Step 1: Authentication (optional)")
	w.out.Println("---------------------------------")

	if err := w.setupToken(); err != nil {
		return err
	}

	// Step 2: AI provider
	w.out.Println()
	w.out.Println("Step 2: AI Provider")
	w.out.Println("-------------------")

	store, err := modelconfig.NewFileStore(nil)
	if err != nil {
		return fmt.Errorf("open model config store: %w", err)
	}

	if existing, ok := store.Active(); ok && !w.force {
		w.out.Warning("Existing model configuration found (%s / %s)", existing.Provider, existing.Model)

		overwrite, err := w.prompter.Confirm("Overwrite existing configuration?", false)
		if err != nil {
			return err
		}
		if !overwrite {
			w.out.Println()
			w.out.Success("Keeping existing configuration")
			w.showNextSteps()

			return nil
		}
		w.out.Println()
	}

	modelCfg, err := w.selectModel()
	if err != nil {
		return err
	}

	if err := store.Set(modelCfg); err != nil {
		w.out.Failure("Configuration rejected: %s", err.Error())

		return nil
	}

	w.out.Success("Configuration saved: %s / %s", modelCfg.Provider, modelCfg.Model)

	// Push to backend and test, best effort
	w.pushAndTest(ctx, c, modelCfg)

	w.out.Println()
	w.out.Success("dgctl is ready!")
	w.showNextSteps()

	return nil
}

func (w *Wizard) setupToken() error {
	source, existing := auth.GetCredentials()
	if existing != "" {
		w.out.Success("Credentials already present (via %s)", source)

		return nil
	}

	w.out.Println("The backend serves status endpoints to guests; a token is only")
	w.out.Println("needed when your deployment enforces authentication.")
	w.out.Println()

	wantToken, err := w.prompter.Confirm("Store an API token now?", false)
	if err != nil {
		return err
	}
	if !wantToken {
		w.out.Muted("Continuing as guest; run 'dgctl auth login' later if needed")

		return nil
	}

	token, err := w.prompter.Password("API token")
	if err != nil {
		return fmt.Errorf("read token prompt: %w", err)
	}

	if strings.TrimSpace(token) == "" {
		w.out.Warning("Empty token; continuing as guest")

		return nil
	}

	if err := auth.StoreToken(token); err != nil {
		w.out.Warning("Failed to store token: %s", err.Error())

		return nil
	}

	w.out.Success("Token stored securely")

	return nil
}

func (w *Wizard) selectModel() (modelconfig.Config, error) {
	var cfg modelconfig.Config

	provider, err := w.prompter.SelectProvider(w.out)
	if err != nil {
		return cfg, fmt.Errorf("select provider: %w", err)
	}
	cfg.Provider = provider

	model, err := w.prompter.SelectModel(w.out, provider)
	if err != nil {
		return cfg, fmt.Errorf("select model: %w", err)
	}
	cfg.Model = model

	spec := modelconfig.Catalog()[provider]
	if spec.RequiresAPIKey {
		if spec.APIKeyFormat != "" {
			w.out.Muted("API key format: %s", spec.APIKeyFormat)
		}

		key, err := w.prompter.Password(fmt.Sprintf("%s API key", spec.Name))
		if err != nil {
			return cfg, fmt.Errorf("read api key prompt: %w", err)
		}
		cfg.APIKey = key
	}

	cfg.Normalize()

	return cfg, nil
}

// pushAndTest sends the configuration to the backend and runs a connection
// test. Failures are reported but never abort setup: the local configuration
// already persisted and can be pushed again later.
func (w *Wizard) pushAndTest(ctx context.Context, c *client.Client, cfg modelconfig.Config) {
	w.out.Println()
	spin := w.out.Spinner("Pushing configuration to backend")
	spin.Start()

	_, err := c.ConfigureAI(ctx, &client.ConfigureAIRequest{
		Provider: string(cfg.Provider),
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		Endpoint: cfg.Endpoint,
	})
	if err != nil {
		spin.StopWithWarning("Backend not updated")
		w.out.Muted("%s", err.Error())
		w.out.Info("Push it later by rerunning 'dgctl model set'")

		return
	}

	spin.Stop()

	spin = w.out.Spinner("Testing provider connection")
	spin.Start()

	resp, err := c.TestConnection(ctx)
	switch {
	case err != nil:
		spin.StopWithWarning("Connection test failed")
		w.out.Muted("%s", err.Error())
	case !strings.EqualFold(resp.Status, "success"):
		spin.StopWithWarning("Connection test failed")
		w.out.Muted("%s", resp.Message)
	default:
		spin.StopWithSuccess(fmt.Sprintf("Connection verified: %s / %s", resp.Provider, resp.Model))
	}
}

func (w *Wizard) showNextSteps() {
	w.out.Println()
	w.out.Println("Next steps:")
	w.out.Println("  dgctl doctor       Check your setup")
	w.out.Println("  dgctl status       One-shot system status")
	w.out.Println("  dgctl monitor      Live terminal monitor")
	w.out.Println("  dgctl --help       See all commands")
}
