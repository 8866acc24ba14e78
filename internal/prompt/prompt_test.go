package prompt

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/datagenesis-ai/dgctl/internal/modelconfig"
	"github.com/datagenesis-ai/dgctl/internal/output"
	"github.com/datagenesis-ai/dgctl/internal/terminal"
)

// testPrompter builds a Prompter that reads scripted input instead of stdin.
func testPrompter(input string) (*Prompter, *output.Writer, *bytes.Buffer) {
	var buf bytes.Buffer

	term := &terminal.Info{IsTTY: false, NoColor: true, Width: 80, Height: 24}
	out := output.NewWriter(&buf, &buf, term)

	p := &Prompter{
		out:    out,
		reader: bufio.NewReader(strings.NewReader(input)),
	}

	return p, out, &buf
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		defaultValue bool
		want         bool
	}{
		{name: "explicit yes", input: "y\n", want: true},
		{name: "explicit yes word", input: "yes\n", want: true},
		{name: "explicit no", input: "n\n", defaultValue: true, want: false},
		{name: "empty takes default false", input: "\n", want: false},
		{name: "empty takes default true", input: "\n", defaultValue: true, want: true},
		{name: "mixed case", input: "YES\n", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, _, _ := testPrompter(tc.input)

			got, err := p.Confirm("Proceed?", tc.defaultValue)
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}

			if got != tc.want {
				t.Errorf("Confirm(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestSelect_RetriesOnInvalidInput(t *testing.T) {
	p, _, buf := testPrompter("0\nabc\n2\n")

	idx, err := p.Select("Pick one:", []string{"first", "second", "third"})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if idx != 1 {
		t.Errorf("Select() = %d, want 1", idx)
	}

	if !strings.Contains(buf.String(), "Invalid selection") {
		t.Error("expected invalid-selection warning in output")
	}
}

func TestInput_TrimsWhitespace(t *testing.T) {
	p, _, _ := testPrompter("  llama3:8b  \n")

	got, err := p.Input("Model name")
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}

	if got != "llama3:8b" {
		t.Errorf("Input() = %q, want %q", got, "llama3:8b")
	}
}

func TestSelectProvider(t *testing.T) {
	p, out, buf := testPrompter("4\n")

	got, err := p.SelectProvider(out)
	if err != nil {
		t.Fatalf("SelectProvider() error = %v", err)
	}

	if got != modelconfig.ProviderOllama {
		t.Errorf("SelectProvider() = %q, want %q", got, modelconfig.ProviderOllama)
	}

	rendered := buf.String()
	if !strings.Contains(rendered, "[api key required]") {
		t.Error("expected api-key marker for hosted providers")
	}

	if !strings.Contains(rendered, "[local, no api key]") {
		t.Error("expected local marker for Ollama")
	}
}

func TestSelectModel_KnownModel(t *testing.T) {
	p, out, _ := testPrompter("2\n")

	got, err := p.SelectModel(out, modelconfig.ProviderGemini)
	if err != nil {
		t.Fatalf("SelectModel() error = %v", err)
	}

	if got != "gemini-1.5-pro" {
		t.Errorf("SelectModel() = %q, want gemini-1.5-pro", got)
	}
}

func TestSelectModel_CustomFallsThroughToInput(t *testing.T) {
	spec := modelconfig.Catalog()[modelconfig.ProviderOllama]

	customIdx := -1
	for i, m := range spec.Models {
		if m == "custom" {
			customIdx = i
			break
		}
	}

	if customIdx < 0 {
		t.Fatal("ollama catalog must list a custom entry")
	}

	// Select the "custom" entry, then type a free-form model name.
	p, out, _ := testPrompter(strconv.Itoa(customIdx+1) + "\nmy-local-model\n")

	got, err := p.SelectModel(out, modelconfig.ProviderOllama)
	if err != nil {
		t.Fatalf("SelectModel() error = %v", err)
	}

	if got != "my-local-model" {
		t.Errorf("SelectModel() = %q, want my-local-model", got)
	}
}
