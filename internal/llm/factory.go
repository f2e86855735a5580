package llm

import (
	"fmt"
	"os"
)

// APIKeyEnvVar returns the environment variable holding credentials for
// the given provider type, or "" when none is needed.
func APIKeyEnvVar(providerType string) string {
	switch providerType {
	case "google":
		return "GOOGLE_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// NewProvider creates an LLM provider from its type name and model.
// Credentials are read from the environment.
// Supported provider types: "google", "openai", "openrouter", "anthropic", "ollama".
func NewProvider(providerType string, model string) (Provider, error) {
	if providerType == "ollama" {
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = DefaultOllamaHost
		}
		return NewOllamaProvider(host, model), nil
	}

	envVar := APIKeyEnvVar(providerType)
	if envVar == "" {
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is not set", envVar)
	}

	switch providerType {
	case "google":
		return NewGoogleProvider(apiKey, model), nil
	case "openai":
		return NewOpenAIProvider(apiKey, model), nil
	case "openrouter":
		return NewOpenRouterProvider(apiKey, model), nil
	default:
		return NewAnthropicProvider(apiKey, model), nil
	}
}
