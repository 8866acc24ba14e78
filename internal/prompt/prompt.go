// Package prompt provides interactive prompts for the dgctl CLI.
package prompt

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/datagenesis-ai/dgctl/internal/modelconfig"
	"github.com/datagenesis-ai/dgctl/internal/output"
)

// Prompter handles interactive prompts.
type Prompter struct {
	out    *output.Writer
	reader *bufio.Reader
}

// New creates a new Prompter.
func New(out *output.Writer) *Prompter {
	return &Prompter{
		out:    out,
		reader: bufio.NewReader(os.Stdin),
	}
}

// CanPrompt returns true if interactive prompts are available.
func (p *Prompter) CanPrompt() bool {
	// Check if stdout is a terminal
	return term.IsTerminal(int(os.Stdout.Fd())) && !p.out.NoInput
}

// Confirm prompts for a yes/no confirmation.
func (p *Prompter) Confirm(message string, defaultValue bool) (bool, error) {
	defaultStr := "y/N"
	if defaultValue {
		defaultStr = "Y/n"
	}

	p.out.Print("%s [%s]: ", message, defaultStr)

	input, err := p.reader.ReadString('\n')
	if err != nil {
		return defaultValue, fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultValue, nil
	}

	return input == "y" || input == "yes", nil
}

// Password prompts for a password (hidden input).
func (p *Prompter) Password(prompt string) (string, error) {
	p.out.Print("%s: ", prompt)

	// Read password without echo
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	p.out.Println() // Print newline after password input

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}

// Input prompts for a single line of visible text.
func (p *Prompter) Input(prompt string) (string, error) {
	p.out.Print("%s: ", prompt)

	input, err := p.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(input), nil
}

// Select prompts the user to select from a list of options.
func (p *Prompter) Select(message string, options []string) (int, error) {
	p.out.Println(message)
	for i, opt := range options {
		p.out.Print("  [%d] %s\n", i+1, opt)
	}
	p.out.Println()

	for {
		p.out.Print("Select [1-%d]: ", len(options))

		input, err := p.reader.ReadString('\n')
		if err != nil {
			return -1, fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		num, err := strconv.Atoi(input)
		if err != nil || num < 1 || num > len(options) {
			p.out.Warning("Invalid selection. Please enter a number between 1 and %d", len(options))
			continue
		}

		return num - 1, nil
	}
}

// SelectProvider prompts the user to select an AI provider from the catalog.
func (p *Prompter) SelectProvider(out *output.Writer) (modelconfig.Provider, error) {
	providers := modelconfig.Providers()
	catalog := modelconfig.Catalog()

	out.Println()
	out.Print("Available providers:\n\n")

	for i, prov := range providers {
		spec := catalog[prov]

		keyNote := "[api key required]"
		if !spec.RequiresAPIKey {
			keyNote = "[local, no api key]"
		}

		out.Print("  [%d] %-12s %s %s\n", i+1, prov, spec.Name, keyNote)
	}

	out.Println()

	for {
		out.Print("Select provider [1-%d]: ", len(providers))

		input, err := p.reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		num, err := strconv.Atoi(input)
		if err != nil || num < 1 || num > len(providers) {
			out.Warning("Invalid selection. Please enter a number between 1 and %d", len(providers))
			continue
		}

		return providers[num-1], nil
	}
}

// SelectModel prompts the user to select a model for the given provider.
func (p *Prompter) SelectModel(out *output.Writer, provider modelconfig.Provider) (string, error) {
	spec, ok := modelconfig.Catalog()[provider]
	if !ok || len(spec.Models) == 0 {
		return p.Input("Model name")
	}

	idx, err := p.Select(fmt.Sprintf("Models for %s:", spec.Name), spec.Models)
	if err != nil {
		return "", err
	}

	model := spec.Models[idx]
	if model == "custom" {
		return p.Input("Custom model name")
	}

	return model, nil
}
