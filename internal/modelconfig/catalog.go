package modelconfig

// ProviderSpec describes a provider's known models and requirements. The
// table mirrors the backend's /api/ai/providers response so offline
// validation agrees with what the backend would accept.
type ProviderSpec struct {
	Name            string
	Models          []string
	RequiresAPIKey  bool
	DefaultEndpoint string
	APIKeyFormat    string
}

// KnownModel reports whether model appears in the provider's model list.
func (s ProviderSpec) KnownModel(model string) bool {
	for _, m := range s.Models {
		if m == model {
			return true
		}
	}

	return false
}

var catalog = map[Provider]ProviderSpec{
	ProviderGemini: {
		Name: "Google Gemini",
		Models: []string{
			"gemini-1.5-flash",
			"gemini-1.5-pro",
			"gemini-2.0-flash-exp",
			"gemini-1.0-pro",
		},
		RequiresAPIKey: true,
		APIKeyFormat:   "AIzaSy...",
	},
	ProviderOpenAI: {
		Name: "OpenAI GPT",
		Models: []string{
			"gpt-4",
			"gpt-4-turbo",
			"gpt-3.5-turbo",
			"gpt-4o",
			"gpt-4o-mini",
		},
		RequiresAPIKey: true,
		APIKeyFormat:   "sk-...",
	},
	ProviderAnthropic: {
		Name: "Anthropic Claude",
		Models: []string{
			"claude-3-sonnet-20240229",
			"claude-3-haiku-20240307",
			"claude-3-opus-20240229",
			"claude-3-5-sonnet-20241022",
		},
		RequiresAPIKey: true,
		APIKeyFormat:   "sk-ant-...",
	},
	ProviderOllama: {
		Name: "Ollama (Local)",
		Models: []string{
			"llama3:8b",
			"llama3:70b",
			"llama3.2:3b",
			"llama2:7b",
			"mistral:7b",
			"codellama:7b",
			"phi3:3.8b",
			"custom",
		},
		DefaultEndpoint: DefaultOllamaEndpoint,
	},
}

// Catalog returns the provider table.
func Catalog() map[Provider]ProviderSpec {
	return catalog
}

// Providers returns the supported provider identifiers in display order.
func Providers() []Provider {
	return []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOllama}
}
